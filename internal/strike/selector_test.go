package strike

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewSelector_InvalidInterval(t *testing.T) {
	for _, interval := range []int{0, -100} {
		if _, err := NewSelector(interval, newTestLogger()); err == nil {
			t.Errorf("expected error for interval %d", interval)
		}
	}
}

func TestSelector_Strikes(t *testing.T) {
	s, err := NewSelector(100, newTestLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		price      float64
		atm, hedge int
	}{
		{10480, 10500, 10600},
		{10520, 10500, 10600},
		{10449.99, 10400, 10500},
		{10450, 10500, 10600}, // half rounds away from zero
		{10500, 10500, 10600},
	}

	for _, c := range cases {
		atm, hedge, err := s.Strikes(c.price)
		if err != nil {
			t.Errorf("price %f: unexpected error: %v", c.price, err)
			continue
		}
		if atm != c.atm || hedge != c.hedge {
			t.Errorf("price %f: expected %d/%d, got %d/%d", c.price, c.atm, c.hedge, atm, hedge)
		}
		if hedge != atm+100 {
			t.Errorf("price %f: hedge must be one grid step above atm", c.price)
		}
		if atm%100 != 0 {
			t.Errorf("price %f: atm %d not on grid", c.price, atm)
		}
	}
}

func TestSelector_Strikes_InvalidPrice(t *testing.T) {
	s, _ := NewSelector(100, newTestLogger())

	for _, price := range []float64{0, -10500, math.NaN(), math.Inf(1)} {
		if _, _, err := s.Strikes(price); err == nil {
			t.Errorf("expected error for price %v", price)
		}
	}
}

func TestSelector_Run_ExcludesFlatDays(t *testing.T) {
	s, _ := NewSelector(100, newTestLogger())

	up := domain.NewTradingDay(2023, time.September, 1)
	flat := domain.NewTradingDay(2023, time.September, 5)
	directions := map[domain.TradingDay]*domain.DirectionRecord{
		up:   {Day: up, ClosePrice: 10520, Direction: domain.DirectionUp},
		flat: {Day: flat, ClosePrice: 10480, Direction: domain.DirectionFlat},
	}

	records, err := s.Run(directions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := records[flat]; ok {
		t.Error("flat day must not produce a strike record")
	}
	r, ok := records[up]
	if !ok {
		t.Fatal("expected a strike record for the up day")
	}
	if r.ATMStrike != 10500 || r.HedgeStrike != 10600 {
		t.Errorf("expected 10500/10600, got %d/%d", r.ATMStrike, r.HedgeStrike)
	}
	if r.Direction != domain.DirectionUp {
		t.Errorf("expected direction carried through, got %s", r.Direction)
	}
}
