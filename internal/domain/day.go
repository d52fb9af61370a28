package domain

import (
	"fmt"
	"sort"
	"time"
)

// TradingDay identifies one calendar session of market activity.
// It is the join key for every per-day record in the pipeline and is
// comparable, so it can be used directly as a map key.
type TradingDay struct {
	Year  int
	Month time.Month
	Day   int
}

// NewTradingDay creates a TradingDay from its calendar components.
func NewTradingDay(year int, month time.Month, day int) TradingDay {
	return TradingDay{Year: year, Month: month, Day: day}
}

// ParseTradingDay parses the canonical "2006-01-02" form.
func ParseTradingDay(s string) (TradingDay, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TradingDay{}, fmt.Errorf("parse trading day %q: %w", s, err)
	}
	return TradingDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// ParseCompactTradingDay parses the legacy DDMMYYYY ingest format.
// Seven-digit values are accepted as a dropped leading zero on the day
// component, which the historical exports carry.
func ParseCompactTradingDay(s string) (TradingDay, error) {
	if len(s) == 7 {
		s = "0" + s
	}
	t, err := time.Parse("02012006", s)
	if err != nil {
		return TradingDay{}, fmt.Errorf("parse compact trading day %q: %w", s, err)
	}
	return TradingDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String returns the canonical "2006-01-02" form.
func (d TradingDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the day at midnight UTC.
func (d TradingDay) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is chronologically before other.
func (d TradingDay) Before(other TradingDay) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// IsZero reports whether d is the zero value.
func (d TradingDay) IsZero() bool {
	return d == TradingDay{}
}

// SortTradingDays sorts days chronologically in place and returns them.
func SortTradingDays(days []TradingDay) []TradingDay {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
