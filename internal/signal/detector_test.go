package signal

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/storage/memory"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var (
	windowStart = domain.NewTimeOfDay(9, 15)
	windowEnd   = domain.NewTimeOfDay(15, 25)
)

func seedDay(t *testing.T, store *memory.PriceStore, day domain.TradingDay, open, close float64) {
	t.Helper()
	bars := []*domain.PriceSample{
		{Day: day, Time: windowStart, Open: open, High: open, Low: open, Close: open},
		{Day: day, Time: windowEnd, Open: close, High: close, Low: close, Close: close},
	}
	if err := store.InsertBars(context.Background(), bars); err != nil {
		t.Fatalf("seed bars: %v", err)
	}
}

func TestDetector_UpDay(t *testing.T) {
	store := memory.NewPriceStore()
	day := domain.NewTradingDay(2023, time.September, 1)
	seedDay(t, store, day, 100, 110)

	detector := NewDetector(store, windowStart, windowEnd, newTestLogger())
	records, err := detector.Run(context.Background(), []domain.TradingDay{day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, ok := records[day]
	if !ok {
		t.Fatal("expected a direction record")
	}
	if r.Change != 10 {
		t.Errorf("expected change 10, got %f", r.Change)
	}
	if r.PctChange != 10.00 {
		t.Errorf("expected pct change 10.00, got %f", r.PctChange)
	}
	if r.Direction != domain.DirectionUp {
		t.Errorf("expected UP, got %s", r.Direction)
	}
}

func TestDetector_DownDay(t *testing.T) {
	store := memory.NewPriceStore()
	day := domain.NewTradingDay(2023, time.September, 4)
	seedDay(t, store, day, 10540, 10480)

	detector := NewDetector(store, windowStart, windowEnd, newTestLogger())
	records, err := detector.Run(context.Background(), []domain.TradingDay{day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := records[day]
	if r == nil {
		t.Fatal("expected a direction record")
	}
	if r.Change != -60 {
		t.Errorf("expected change -60, got %f", r.Change)
	}
	// -60 / 10540 * 100 = -0.5693... rounds to -0.57
	if r.PctChange != -0.57 {
		t.Errorf("expected pct change -0.57, got %f", r.PctChange)
	}
	if r.Direction != domain.DirectionDown {
		t.Errorf("expected DOWN, got %s", r.Direction)
	}
}

func TestDetector_FlatDay(t *testing.T) {
	store := memory.NewPriceStore()
	day := domain.NewTradingDay(2023, time.September, 5)
	seedDay(t, store, day, 10480, 10480)

	detector := NewDetector(store, windowStart, windowEnd, newTestLogger())
	records, err := detector.Run(context.Background(), []domain.TradingDay{day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := records[day]
	if r == nil {
		t.Fatal("expected a direction record")
	}
	if r.Direction != domain.DirectionFlat {
		t.Errorf("expected FLAT, got %s", r.Direction)
	}
	if r.Change != 0 || r.PctChange != 0 {
		t.Errorf("expected zero change, got change=%f pct=%f", r.Change, r.PctChange)
	}
}

func TestDetector_MissingWindowEndSkipsDay(t *testing.T) {
	store := memory.NewPriceStore()
	day := domain.NewTradingDay(2023, time.September, 6)
	bars := []*domain.PriceSample{
		{Day: day, Time: windowStart, Open: 100, High: 100, Low: 100, Close: 100},
	}
	if err := store.InsertBars(context.Background(), bars); err != nil {
		t.Fatalf("seed bars: %v", err)
	}

	detector := NewDetector(store, windowStart, windowEnd, newTestLogger())
	records, err := detector.Run(context.Background(), []domain.TradingDay{day})
	if err != nil {
		t.Fatalf("missing sample must not fail the run: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestDetector_PctChangeRounding(t *testing.T) {
	store := memory.NewPriceStore()
	day := domain.NewTradingDay(2023, time.September, 7)
	seedDay(t, store, day, 300, 301)

	detector := NewDetector(store, windowStart, windowEnd, newTestLogger())
	records, err := detector.Run(context.Background(), []domain.TradingDay{day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1 / 300 * 100 = 0.3333... rounds to 0.33
	if got := records[day].PctChange; got != 0.33 {
		t.Errorf("expected pct change 0.33, got %f", got)
	}
}
