// Package domain contains the core domain types for the fees context.
package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/internal/apperror"
)

// VenueFees holds a venue's per-leg fee rate and per-trade gas cost.
type VenueFees struct {
	Venue   string
	FeeRate decimal.Decimal // fraction of notional charged per leg
	GasCost decimal.Decimal // reference currency, per three-leg trade

	// GasUnits and NativeSymbol enable live gas pricing. Zero units keeps GasCost static.
	GasUnits     uint64
	NativeSymbol string
}

// Schedule is an immutable, validated venue fee table.
type Schedule struct {
	venues map[string]VenueFees
}

// NewSchedule validates entries: fee rate in [0, 1), gas cost >= 0, unique venues.
func NewSchedule(entries []VenueFees) (*Schedule, error) {
	s := &Schedule{venues: make(map[string]VenueFees, len(entries))}
	for _, e := range entries {
		switch {
		case e.Venue == "":
			return nil, apperror.Validation(apperror.CodeInvalidInput, "venue with empty name")
		case e.FeeRate.IsNegative() || e.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)):
			return nil, apperror.Validationf(apperror.CodeInvalidInput, "%s fee rate %s outside [0, 1)", e.Venue, e.FeeRate)
		case e.GasCost.IsNegative():
			return nil, apperror.Validationf(apperror.CodeInvalidInput, "%s gas cost %s is negative", e.Venue, e.GasCost)
		}
		if _, dup := s.venues[e.Venue]; dup {
			return nil, apperror.Validationf(apperror.CodeInvalidInput, "duplicate venue %s", e.Venue)
		}
		s.venues[e.Venue] = e
	}
	return s, nil
}

// DefaultSchedule returns the built-in Solana DEX fee table.
func DefaultSchedule() *Schedule {
	s, err := NewSchedule([]VenueFees{
		{Venue: "raydium", FeeRate: decimal.RequireFromString("0.0025"), GasCost: decimal.RequireFromString("0.04")},
		{Venue: "orca", FeeRate: decimal.RequireFromString("0.003"), GasCost: decimal.RequireFromString("0.03")},
		{Venue: "jupiter", FeeRate: decimal.RequireFromString("0.001"), GasCost: decimal.RequireFromString("0.07")},
	})
	if err != nil {
		panic("fees: invalid default schedule: " + err.Error())
	}
	return s
}

// Lookup returns a venue's fees or UNKNOWN_VENUE.
func (s *Schedule) Lookup(venue string) (VenueFees, error) {
	v, ok := s.venues[venue]
	if !ok {
		return VenueFees{}, apperror.Validationf(apperror.CodeUnknownVenue, "%q", venue)
	}
	return v, nil
}

// Venues returns venue names, sorted.
func (s *Schedule) Venues() []string {
	out := make([]string, 0, len(s.venues))
	for v := range s.venues {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// WithGasCost returns a copy with venue's gas cost replaced.
func (s *Schedule) WithGasCost(venue string, gas decimal.Decimal) (*Schedule, error) {
	v, err := s.Lookup(venue)
	if err != nil {
		return nil, err
	}
	if gas.IsNegative() {
		return nil, apperror.Validationf(apperror.CodeInvalidInput, "%s gas cost %s is negative", venue, gas)
	}

	c := &Schedule{venues: make(map[string]VenueFees, len(s.venues))}
	for k, e := range s.venues {
		c.venues[k] = e
	}
	v.GasCost = gas
	c.venues[venue] = v
	return c, nil
}
