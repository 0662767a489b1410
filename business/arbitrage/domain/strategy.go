package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/internal/apperror"
)

// RiskTier selects a strategy profile.
type RiskTier string

const (
	RiskConservative RiskTier = "conservative"
	RiskMedium       RiskTier = "medium"
	RiskAggressive   RiskTier = "aggressive"
)

// EfficiencyFactor is the share of the target spread retained after costs.
var EfficiencyFactor = decimal.RequireFromString("0.8")

// TierProfile holds a tier's fixed parameters.
type TierProfile struct {
	TargetSpread     decimal.Decimal // percent
	Venue            string
	MaxPositionShare decimal.Decimal // fraction of capital
	StopLoss         decimal.Decimal // fraction
	TradesPerDay     int64
}

var tierProfiles = map[RiskTier]TierProfile{
	RiskConservative: {
		TargetSpread:     decimal.RequireFromString("0.5"),
		Venue:            "jupiter",
		MaxPositionShare: decimal.RequireFromString("0.5"),
		StopLoss:         decimal.RequireFromString("0.2"),
		TradesPerDay:     10,
	},
	RiskMedium: {
		TargetSpread:     decimal.RequireFromString("0.3"),
		Venue:            "raydium",
		MaxPositionShare: decimal.RequireFromString("0.7"),
		StopLoss:         decimal.RequireFromString("0.15"),
		TradesPerDay:     10,
	},
	RiskAggressive: {
		TargetSpread:     decimal.RequireFromString("0.2"),
		Venue:            "orca",
		MaxPositionShare: decimal.NewFromInt(1),
		StopLoss:         decimal.RequireFromString("0.1"),
		TradesPerDay:     20,
	},
}

// RiskTiers lists the known tiers from lowest to highest risk.
func RiskTiers() []RiskTier {
	return []RiskTier{RiskConservative, RiskMedium, RiskAggressive}
}

// ParseRiskTier maps a case-insensitive name to a tier or fails with UNKNOWN_RISK_TIER.
func ParseRiskTier(s string) (RiskTier, error) {
	tier := RiskTier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierProfiles[tier]; !ok {
		return "", apperror.Validationf(apperror.CodeUnknownRiskTier, "%q (want conservative, medium or aggressive)", s)
	}
	return tier, nil
}

// Profile returns the tier's parameters.
func (t RiskTier) Profile() (TierProfile, bool) {
	p, ok := tierProfiles[t]
	return p, ok
}

// Strategy is a capital allocation recommendation for one tier.
type Strategy struct {
	Tier            RiskTier
	Capital         decimal.Decimal
	TargetSpread    decimal.Decimal // use as scan min spread
	Venue           string
	MaxPosition     decimal.Decimal // use as execution amount
	StopLoss        decimal.Decimal
	TradesPerDay    int64
	ExpectedDaily   decimal.Decimal
	ExpectedMonthly decimal.Decimal
	MonthlyROI      decimal.Decimal // percent
}
