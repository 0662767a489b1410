// Package static loads market snapshots from a YAML file.
package static

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
)

// File is the on-disk snapshot layout. Numbers are kept as strings so
// they parse into decimals without float rounding.
type File struct {
	Timestamp time.Time         `yaml:"timestamp"`
	Tokens    map[string]string `yaml:"tokens"`
	Pools     []PoolEntry       `yaml:"pools"`
}

// PoolEntry is one pool in the snapshot file.
type PoolEntry struct {
	ID        string `yaml:"id"`
	Venue     string `yaml:"venue"`
	Base      string `yaml:"base"`
	Quote     string `yaml:"quote"`
	Rate      string `yaml:"rate,omitempty"`
	Liquidity string `yaml:"liquidity,omitempty"`
	Volume24h string `yaml:"volume_24h,omitempty"`
	APY       string `yaml:"apy,omitempty"`
}

// Provider reads a snapshot file on every call, so edits are picked up
// by the next scan.
type Provider struct {
	path string
	now  func() time.Time
}

// NewProvider creates a file-backed provider.
func NewProvider(path string) *Provider {
	return &Provider{path: path, now: time.Now}
}

// Name implements app.SnapshotProvider.
func (p *Provider) Name() string {
	return "static:" + p.path
}

// Snapshot implements app.SnapshotProvider.
func (p *Provider) Snapshot(ctx context.Context, venues []string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, apperror.New(apperror.CodeDataUnavailable,
			apperror.WithCause(err),
			apperror.WithContext(p.path))
	}

	snap, err := Parse(raw, p.now())
	if err != nil {
		return nil, err
	}
	return snap.Restrict(venues), nil
}

// Parse decodes a YAML snapshot. A missing timestamp defaults to loadedAt.
func Parse(raw []byte, loadedAt time.Time) (*domain.Snapshot, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, apperror.New(apperror.CodeInvalidSnapshot,
			apperror.WithCause(err),
			apperror.WithContext("yaml decode"))
	}

	ts := f.Timestamp
	if ts.IsZero() {
		ts = loadedAt
	}

	tokens := make([]domain.Token, 0, len(f.Tokens))
	for sym, price := range f.Tokens {
		v, err := parseDecimal(price, "tokens."+sym)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, domain.Token{Symbol: sym, Price: v})
	}

	pools := make([]domain.Pool, 0, len(f.Pools))
	for i, e := range f.Pools {
		pool := domain.Pool{ID: e.ID, Venue: e.Venue, Base: e.Base, Quote: e.Quote}
		fields := []struct {
			raw string
			dst *decimal.Decimal
			key string
		}{
			{e.Rate, &pool.Rate, "rate"},
			{e.Liquidity, &pool.Liquidity, "liquidity"},
			{e.Volume24h, &pool.Volume24h, "volume_24h"},
			{e.APY, &pool.APY, "apy"},
		}
		for _, fld := range fields {
			v, err := parseDecimal(fld.raw, fmt.Sprintf("pools[%d].%s", i, fld.key))
			if err != nil {
				return nil, err
			}
			*fld.dst = v
		}
		pools = append(pools, pool)
	}

	return domain.NewSnapshot(ts, tokens, pools)
}

func parseDecimal(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithCause(err),
			apperror.WithContext(field))
	}
	return v, nil
}
