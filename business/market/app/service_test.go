package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/logger"
)

type fakeProvider struct {
	snap   *domain.Snapshot
	err    error
	block  bool
	venues []string
	callsN int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Snapshot(ctx context.Context, venues []string) (*domain.Snapshot, error) {
	f.callsN++
	f.venues = venues
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.snap, f.err
}

func snapshotAt(t *testing.T, ts time.Time) *domain.Snapshot {
	t.Helper()
	snap, err := domain.NewSnapshot(ts,
		[]domain.Token{{Symbol: "SOL", Price: decimal.NewFromInt(85)}, {Symbol: "USDC", Price: decimal.NewFromInt(1)}},
		[]domain.Pool{{ID: "p1", Venue: "orca", Base: "SOL", Quote: "USDC"}},
	)
	require.NoError(t, err)
	return snap
}

func newService(p SnapshotProvider, cfg ServiceConfig, now time.Time) *MarketService {
	s := NewMarketService(p, cfg, logger.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestMarketService_Snapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := ServiceConfig{FetchTimeout: time.Second, MaxSnapshotAge: 15 * time.Minute}

	t.Run("fresh", func(t *testing.T) {
		p := &fakeProvider{snap: snapshotAt(t, now.Add(-time.Minute))}
		s := newService(p, cfg, now)

		snap, err := s.Snapshot(context.Background(), FetchOptions{Venues: []string{"orca"}})
		require.NoError(t, err)
		assert.Same(t, p.snap, snap)
		assert.Equal(t, []string{"orca"}, p.venues)
		assert.Same(t, snap, s.Last())

		ok, _ := s.HealthCheck(context.Background())
		assert.True(t, ok)
	})

	t.Run("stale_refused", func(t *testing.T) {
		p := &fakeProvider{snap: snapshotAt(t, now.Add(-time.Hour))}
		s := newService(p, cfg, now)

		_, err := s.Snapshot(context.Background(), FetchOptions{})
		assert.Equal(t, apperror.CodeStaleSnapshot, apperror.GetCode(err))
		assert.Nil(t, s.Last())

		ok, msg := s.HealthCheck(context.Background())
		assert.False(t, ok)
		assert.Contains(t, msg, "no snapshot")
	})

	t.Run("stale_allowed", func(t *testing.T) {
		p := &fakeProvider{snap: snapshotAt(t, now.Add(-time.Hour))}
		s := newService(p, cfg, now)

		snap, err := s.Snapshot(context.Background(), FetchOptions{AllowStale: true})
		require.NoError(t, err)
		assert.NotNil(t, snap)

		ok, _ := s.HealthCheck(context.Background())
		assert.False(t, ok, "health must flag a stale last snapshot")
	})

	t.Run("provider_error_is_data_unavailable", func(t *testing.T) {
		cause := errors.New("connection refused")
		s := newService(&fakeProvider{err: cause}, cfg, now)

		_, err := s.Snapshot(context.Background(), FetchOptions{})
		assert.Equal(t, apperror.CodeDataUnavailable, apperror.GetCode(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("timeout_is_data_unavailable", func(t *testing.T) {
		s := newService(&fakeProvider{block: true}, ServiceConfig{FetchTimeout: 20 * time.Millisecond}, now)

		start := time.Now()
		_, err := s.Snapshot(context.Background(), FetchOptions{})
		assert.Equal(t, apperror.CodeDataUnavailable, apperror.GetCode(err))
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}
