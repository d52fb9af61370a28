package domain

// Direction classifies the underlying's net move over the signal window.
type Direction string

// Direction values.
const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = "FLAT"
)

// ClassifyDirection maps a signed price change to a Direction.
func ClassifyDirection(change float64) Direction {
	switch {
	case change > 0:
		return DirectionUp
	case change < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// OptionType distinguishes the two option instrument types.
type OptionType string

// Option instrument types.
const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// ATMType returns the instrument type bought at the money: the leg that
// profits if the detected direction continues.
func (d Direction) ATMType() OptionType {
	if d == DirectionUp {
		return OptionCall
	}
	return OptionPut
}

// HedgeType returns the opposite-type hedge leg's instrument type.
func (d Direction) HedgeType() OptionType {
	if d == DirectionUp {
		return OptionPut
	}
	return OptionCall
}
