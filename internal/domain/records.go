package domain

// PriceSample is one minute bar of the underlying series.
// Immutable once read from the price store.
type PriceSample struct {
	Day   TradingDay
	Time  TimeOfDay
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// OptionQuote is one option close quote read from the price store.
type OptionQuote struct {
	Day    TradingDay
	Strike int
	Type   OptionType
	Time   TimeOfDay
	Close  float64
}

// DirectionRecord is the direction detector's per-day output.
type DirectionRecord struct {
	Day        TradingDay
	OpenPrice  float64 // underlying close at the window-start time
	ClosePrice float64 // underlying close at the window-end time
	Change     float64
	PctChange  float64 // rounded to 2 decimal places
	Direction  Direction
}

// StrikeRecord is the strike selector's per-day output.
type StrikeRecord struct {
	Day         TradingDay
	SpotPrice   float64 // reference price the strikes were derived from
	ATMStrike   int
	HedgeStrike int
	Direction   Direction
}

// PremiumRecord is the option pricer's per-day output. Both legs are
// bought, so TotalPremium is the full cost of the spread.
type PremiumRecord struct {
	Day          TradingDay
	ATMStrike    int
	HedgeStrike  int
	ATMPrice     float64
	HedgePrice   float64
	TotalPremium float64
	Direction    Direction
}

// ExitRecord is the trailing-exit simulator's per-day output. SpotPoints
// is signed in the strategy's favor: positive when the underlying kept
// moving in the detected direction.
type ExitRecord struct {
	Day        TradingDay
	EntryPrice float64 // next day's first exit-window close
	ExitPrice  float64
	ExitTime   TimeOfDay
	Premium    float64 // carried from the premium record
	SpotPoints float64
	Direction  Direction
}

// TradeResult is one settled trade with its running statistics.
// Drawdown is cumulative minus peak and is never positive.
type TradeResult struct {
	Day           TradingDay
	Direction     Direction
	SpotPoints    float64
	Premium       float64
	PnL           float64
	CumulativePnL float64
	Peak          float64
	Drawdown      float64
}

// Summary holds run-level statistics computed once over the full
// chronological trade sequence.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64 // percent
	AvgWin      float64
	AvgLoss     float64
	LargestWin  float64
	LargestLoss float64
	TotalPnL    float64
	MaxDrawdown float64
	AvgDrawdown float64
}

// DirectionBreakdown aggregates trade statistics for one direction.
type DirectionBreakdown struct {
	Direction       Direction
	Trades          int
	TotalPnL        float64
	MeanPnL         float64
	MinPnL          float64
	MaxPnL          float64
	MeanSpotPoints  float64
	MeanPremium     float64
	MeanExitMinutes float64 // minutes between exit-window open and exit
}
