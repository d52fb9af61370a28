// Package ingestion parses historical price data files into domain
// records for loading into a price store. Two file shapes are
// supported: underlying minute bars and option quote snapshots. Dates
// accept both ISO (2023-09-01) and the compact DDMMYYYY form used by
// legacy exports, where the leading zero of the day may be missing.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"options-spread-backtest/internal/domain"
)

// ReadUnderlyingBars parses underlying bar rows from r. Expected
// header: date,time,open,high,low,close. Header detection is by the
// first field name, so files without a header also parse.
func ReadUnderlyingBars(r io.Reader) ([]*domain.PriceSample, error) {
	rows, err := readRows(r, 6)
	if err != nil {
		return nil, err
	}

	bars := make([]*domain.PriceSample, 0, len(rows))
	for i, row := range rows {
		day, err := parseDay(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		at, err := domain.ParseTimeOfDay(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		var prices [4]float64
		for j, field := range row[2:6] {
			prices[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: price %q: %w", i+1, field, err)
			}
		}

		bars = append(bars, &domain.PriceSample{
			Day:   day,
			Time:  at,
			Open:  prices[0],
			High:  prices[1],
			Low:   prices[2],
			Close: prices[3],
		})
	}
	return bars, nil
}

// ReadOptionQuotes parses option quote rows from r. Expected header:
// date,time,strike,type,close.
func ReadOptionQuotes(r io.Reader) ([]*domain.OptionQuote, error) {
	rows, err := readRows(r, 5)
	if err != nil {
		return nil, err
	}

	quotes := make([]*domain.OptionQuote, 0, len(rows))
	for i, row := range rows {
		day, err := parseDay(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		at, err := domain.ParseTimeOfDay(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		strike, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: strike %q: %w", i+1, row[2], err)
		}

		typ, err := parseOptionType(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		price, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: price %q: %w", i+1, row[4], err)
		}

		quotes = append(quotes, &domain.OptionQuote{
			Day:    day,
			Strike: strike,
			Type:   typ,
			Time:   at,
			Close:  price,
		})
	}
	return quotes, nil
}

// readRows reads all CSV records, skips an optional header row, and
// enforces a fixed field count.
func readRows(r io.Reader, fields int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fields
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(records[0][0], "date") {
		records = records[1:]
	}
	return records, nil
}

// parseDay accepts ISO dates and compact DDMMYYYY dates.
func parseDay(field string) (domain.TradingDay, error) {
	if strings.Contains(field, "-") {
		return domain.ParseTradingDay(field)
	}
	return domain.ParseCompactTradingDay(field)
}

func parseOptionType(field string) (domain.OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(field)) {
	case "CALL", "CE":
		return domain.OptionCall, nil
	case "PUT", "PE":
		return domain.OptionPut, nil
	default:
		return "", fmt.Errorf("unknown option type %q", field)
	}
}
