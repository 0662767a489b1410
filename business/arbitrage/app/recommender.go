package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/business/arbitrage/domain"
	"github.com/fd1az/triarb/internal/apperror"
)

var daysPerMonth = decimal.NewFromInt(30)

// Recommend maps capital and a risk tier to scan and execution parameters
// with projected returns. Unknown tiers fail with UNKNOWN_RISK_TIER.
func Recommend(capital decimal.Decimal, tier domain.RiskTier) (domain.Strategy, error) {
	if !capital.IsPositive() {
		return domain.Strategy{}, apperror.Validationf(apperror.CodeInvalidInput, "capital must be positive, got %s", capital)
	}
	p, ok := tier.Profile()
	if !ok {
		return domain.Strategy{}, apperror.Validationf(apperror.CodeUnknownRiskTier, "%q", string(tier))
	}

	daily := capital.Mul(p.TargetSpread).Div(hundred).
		Mul(domain.EfficiencyFactor).
		Mul(decimal.NewFromInt(p.TradesPerDay))
	monthly := daily.Mul(daysPerMonth)

	return domain.Strategy{
		Tier:            tier,
		Capital:         capital,
		TargetSpread:    p.TargetSpread,
		Venue:           p.Venue,
		MaxPosition:     capital.Mul(p.MaxPositionShare),
		StopLoss:        p.StopLoss,
		TradesPerDay:    p.TradesPerDay,
		ExpectedDaily:   daily,
		ExpectedMonthly: monthly,
		MonthlyROI:      monthly.Div(capital).Mul(hundred),
	}, nil
}

// RecommendAll returns a strategy for every tier, lowest risk first.
func RecommendAll(capital decimal.Decimal) ([]domain.Strategy, error) {
	tiers := domain.RiskTiers()
	out := make([]domain.Strategy, 0, len(tiers))
	for _, t := range tiers {
		s, err := Recommend(capital, t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
