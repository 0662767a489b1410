// Package domain contains the core domain types for the arbitrage context.
package domain

// Direction is the orientation of a route around a triangle.
type Direction string

const (
	// DirectionForward visits the remaining tokens in ascending symbol order.
	DirectionForward Direction = "FORWARD"

	// DirectionReverse visits them in descending symbol order.
	DirectionReverse Direction = "REVERSE"
)

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Opposite returns the other orientation.
func (d Direction) Opposite() Direction {
	if d == DirectionForward {
		return DirectionReverse
	}
	return DirectionForward
}
