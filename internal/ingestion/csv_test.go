package ingestion

import (
	"strings"
	"testing"
	"time"

	"options-spread-backtest/internal/domain"
)

func TestReadUnderlyingBars(t *testing.T) {
	input := `date,time,open,high,low,close
2023-09-01,09:15,10448.2,10452.0,10446.5,10450.0
2023-09-01,15:25,10518.0,10522.5,10517.0,10520.0
`
	bars, err := ReadUnderlyingBars(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}

	b := bars[0]
	if b.Day != domain.NewTradingDay(2023, time.September, 1) {
		t.Errorf("expected day 2023-09-01, got %s", b.Day)
	}
	if b.Time != domain.NewTimeOfDay(9, 15) {
		t.Errorf("expected time 09:15, got %s", b.Time)
	}
	if b.Open != 10448.2 || b.High != 10452.0 || b.Low != 10446.5 || b.Close != 10450.0 {
		t.Errorf("unexpected prices: %+v", b)
	}
}

func TestReadUnderlyingBars_NoHeader(t *testing.T) {
	input := "2023-09-01,09:15,1,2,3,4\n"
	bars, err := ReadUnderlyingBars(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
}

func TestReadUnderlyingBars_CompactDate(t *testing.T) {
	input := "1092023,09:15:00,1,2,3,4\n"
	bars, err := ReadUnderlyingBars(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bars[0].Day.String() != "2023-09-01" {
		t.Errorf("expected 2023-09-01, got %s", bars[0].Day)
	}
}

func TestReadUnderlyingBars_BadRow(t *testing.T) {
	cases := []string{
		"2023-09-01,09:15,abc,2,3,4\n",
		"2023-99-01,09:15,1,2,3,4\n",
		"2023-09-01,25:00,1,2,3,4\n",
		"2023-09-01,09:15,1,2,3\n",
	}
	for _, input := range cases {
		if _, err := ReadUnderlyingBars(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", strings.TrimSpace(input))
		}
	}
}

func TestReadOptionQuotes(t *testing.T) {
	input := `date,time,strike,type,close
2023-09-01,15:25,10500,CALL,9.75
2023-09-01,15:25,10600,PE,6.10
`
	quotes, err := ReadOptionQuotes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}

	if quotes[0].Type != domain.OptionCall || quotes[0].Strike != 10500 || quotes[0].Close != 9.75 {
		t.Errorf("unexpected first quote: %+v", quotes[0])
	}
	// Legacy exports use CE/PE for instrument types.
	if quotes[1].Type != domain.OptionPut {
		t.Errorf("expected PE parsed as PUT, got %s", quotes[1].Type)
	}
}

func TestReadOptionQuotes_UnknownType(t *testing.T) {
	input := "2023-09-01,15:25,10500,STRADDLE,9.75\n"
	if _, err := ReadOptionQuotes(strings.NewReader(input)); err == nil {
		t.Error("expected error for unknown option type")
	}
}
