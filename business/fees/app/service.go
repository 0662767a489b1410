package app

import (
	"context"

	"github.com/fd1az/triarb/business/fees/domain"
	"github.com/fd1az/triarb/internal/logger"
)

// FeeService produces the fee schedule used for a scan, refreshing gas
// costs from the oracle when one is configured.
type FeeService struct {
	base   *domain.Schedule
	oracle GasOracle
	log    logger.LoggerInterface
}

// NewFeeService creates a FeeService. oracle may be nil.
func NewFeeService(base *domain.Schedule, oracle GasOracle, log logger.LoggerInterface) *FeeService {
	return &FeeService{base: base, oracle: oracle, log: log}
}

// Base returns the configured schedule.
func (s *FeeService) Base() *domain.Schedule {
	return s.base
}

// Schedule returns the schedule for one scan. Venues with GasUnits and a
// priced NativeSymbol get live gas costs; oracle failures keep the static value.
func (s *FeeService) Schedule(ctx context.Context, prices PriceLookup) *domain.Schedule {
	if s.oracle == nil || prices == nil {
		return s.base
	}

	var gasPrice *domain.GasPrice
	sched := s.base
	for _, name := range s.base.Venues() {
		v, _ := s.base.Lookup(name)
		if v.GasUnits == 0 || v.NativeSymbol == "" {
			continue
		}
		native, ok := prices(v.NativeSymbol)
		if !ok {
			s.log.Debug(ctx, "native token not priced, keeping static gas", "venue", name, "symbol", v.NativeSymbol)
			continue
		}

		if gasPrice == nil {
			gp, err := s.oracle.GasPrice(ctx)
			if err != nil {
				s.log.Warn(ctx, "gas oracle unavailable, keeping static gas costs", "error", err)
				return s.base
			}
			gasPrice = gp
		}

		live := gasPrice.GasCostIn(v.GasUnits, native)
		updated, err := sched.WithGasCost(name, live)
		if err != nil {
			s.log.Warn(ctx, "live gas cost rejected", "venue", name, "error", err)
			continue
		}
		sched = updated
		s.log.Debug(ctx, "live gas cost", "venue", name, "gas_cost", live.String(), "gwei", gasPrice.Gwei())
	}
	return sched
}
