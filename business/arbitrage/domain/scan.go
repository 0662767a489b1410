package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScanResult is one scan's ranked output.
type ScanResult struct {
	ID            string
	SnapshotAt    time.Time
	StartedAt     time.Time
	Duration      time.Duration
	Venues        []string
	Cycles        int
	MinSpread     decimal.Decimal
	Amount        decimal.Decimal
	Opportunities []Opportunity // ranked, best first
}

// Best returns the top-ranked opportunity.
func (s ScanResult) Best() (Opportunity, bool) {
	if len(s.Opportunities) == 0 {
		return Opportunity{}, false
	}
	return s.Opportunities[0], true
}
