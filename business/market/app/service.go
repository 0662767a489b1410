package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

// ServiceConfig bounds snapshot retrieval.
type ServiceConfig struct {
	FetchTimeout   time.Duration
	MaxSnapshotAge time.Duration
}

// FetchOptions selects venues and staleness handling for one fetch.
type FetchOptions struct {
	Venues     []string
	AllowStale bool
}

// MarketService fetches time-bounded, freshness-checked snapshots.
type MarketService struct {
	provider SnapshotProvider
	cfg      ServiceConfig
	log      logger.LoggerInterface
	now      func() time.Time

	mu   sync.RWMutex
	last *domain.Snapshot
}

// NewMarketService creates a new MarketService.
func NewMarketService(provider SnapshotProvider, cfg ServiceConfig, log logger.LoggerInterface) *MarketService {
	return &MarketService{
		provider: provider,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Snapshot fetches a snapshot. Provider failures and timeouts surface as
// DATA_UNAVAILABLE; snapshots older than MaxSnapshotAge as STALE_SNAPSHOT
// unless AllowStale is set.
func (s *MarketService) Snapshot(ctx context.Context, opts FetchOptions) (*domain.Snapshot, error) {
	fetchCtx := ctx
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	snap, err := s.provider.Snapshot(fetchCtx, opts.Venues)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			err = apperror.New(apperror.CodeDataUnavailable,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("%s timed out after %s", s.provider.Name(), s.cfg.FetchTimeout)))
		} else if !apperror.HasCode(err, apperror.CodeDataUnavailable) {
			err = apperror.New(apperror.CodeDataUnavailable,
				apperror.WithCause(err),
				apperror.WithContext(s.provider.Name()))
		}
		s.log.Warn(ctx, "snapshot fetch failed", "provider", s.provider.Name(), "error", err)
		return nil, err
	}

	age := snap.Age(s.now())
	if s.cfg.MaxSnapshotAge > 0 && age > s.cfg.MaxSnapshotAge {
		if !opts.AllowStale {
			return nil, apperror.Validationf(apperror.CodeStaleSnapshot,
				"%s snapshot is %s old, limit %s", s.provider.Name(), age.Round(time.Second), s.cfg.MaxSnapshotAge)
		}
		s.log.Warn(ctx, "using stale snapshot", "provider", s.provider.Name(), "age", age.String())
	}

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	s.log.Debug(ctx, "snapshot fetched",
		"provider", s.provider.Name(),
		"venues", snap.Venues(),
		"pools", snap.PoolCount(),
		"age", age.String(),
	)

	return snap, nil
}

// Last returns the most recently fetched snapshot, or nil.
func (s *MarketService) Last() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// HealthCheck reports whether the last snapshot is present and fresh.
func (s *MarketService) HealthCheck(_ context.Context) (bool, string) {
	last := s.Last()
	if last == nil {
		return false, "no snapshot fetched yet"
	}
	age := last.Age(s.now())
	if s.cfg.MaxSnapshotAge > 0 && age > s.cfg.MaxSnapshotAge {
		return false, fmt.Sprintf("last snapshot is %s old", age.Round(time.Second))
	}
	return true, fmt.Sprintf("%d pools from %s, %s old", last.PoolCount(), s.provider.Name(), age.Round(time.Second))
}
