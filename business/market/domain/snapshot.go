// Package domain contains the core domain types for the market context.
package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/triarb/internal/apperror"
)

// Token is a tradable asset priced in the reference currency.
type Token struct {
	Symbol string
	Price  decimal.Decimal
}

// Pool is a two-token liquidity pool on one venue.
type Pool struct {
	ID    string
	Venue string
	Base  string
	Quote string
	// Rate is quote units per base unit. Zero means derive from token prices.
	Rate      decimal.Decimal
	Liquidity decimal.Decimal
	Volume24h decimal.Decimal
	APY       decimal.Decimal
}

// Pair returns the pool symbol (e.g., "SOL-USDC").
func (p Pool) Pair() string {
	return p.Base + "-" + p.Quote
}

// Has reports whether the pool trades symbol.
func (p Pool) Has(symbol string) bool {
	return p.Base == symbol || p.Quote == symbol
}

// Other returns the counter token of symbol in this pool.
func (p Pool) Other(symbol string) (string, bool) {
	switch symbol {
	case p.Base:
		return p.Quote, true
	case p.Quote:
		return p.Base, true
	default:
		return "", false
	}
}

type poolKey struct {
	venue, base, quote string
}

// Snapshot is an immutable view of tokens and pools at a point in time.
// Refreshing market data means building a new Snapshot.
type Snapshot struct {
	timestamp time.Time
	tokens    map[string]Token
	pools     map[string]Pool
	byVenue   map[string][]string
}

// NewSnapshot validates and copies its inputs.
func NewSnapshot(ts time.Time, tokens []Token, pools []Pool) (*Snapshot, error) {
	s := &Snapshot{
		timestamp: ts,
		tokens:    make(map[string]Token, len(tokens)),
		pools:     make(map[string]Pool, len(pools)),
		byVenue:   make(map[string][]string),
	}

	for _, t := range tokens {
		if t.Symbol == "" {
			return nil, apperror.Validation(apperror.CodeInvalidSnapshot, "token with empty symbol")
		}
		if !t.Price.IsPositive() {
			return nil, apperror.Validationf(apperror.CodeInvalidSnapshot, "token %s has non-positive price %s", t.Symbol, t.Price)
		}
		if _, dup := s.tokens[t.Symbol]; dup {
			return nil, apperror.Validationf(apperror.CodeInvalidSnapshot, "duplicate token %s", t.Symbol)
		}
		s.tokens[t.Symbol] = t
	}

	seen := make(map[poolKey]string, len(pools))
	for _, p := range pools {
		if err := s.validatePool(p); err != nil {
			return nil, err
		}
		if _, dup := s.pools[p.ID]; dup {
			return nil, apperror.Validationf(apperror.CodeDuplicatePool, "pool id %s", p.ID)
		}
		key := poolKey{p.Venue, p.Base, p.Quote}
		if other, dup := seen[key]; dup {
			return nil, apperror.Validationf(apperror.CodeDuplicatePool, "%s %s already listed as %s", p.Venue, p.Pair(), other)
		}
		seen[key] = p.ID
		s.pools[p.ID] = p
		s.byVenue[p.Venue] = append(s.byVenue[p.Venue], p.ID)
	}

	for _, ids := range s.byVenue {
		sort.Strings(ids)
	}

	return s, nil
}

func (s *Snapshot) validatePool(p Pool) error {
	switch {
	case p.ID == "":
		return apperror.Validation(apperror.CodeInvalidSnapshot, "pool with empty id")
	case p.Venue == "":
		return apperror.Validationf(apperror.CodeInvalidSnapshot, "pool %s has no venue", p.ID)
	case p.Base == p.Quote:
		return apperror.Validationf(apperror.CodeInvalidSnapshot, "pool %s trades %s against itself", p.ID, p.Base)
	case p.Rate.IsNegative():
		return apperror.Validationf(apperror.CodeInvalidSnapshot, "pool %s has negative rate", p.ID)
	case p.Liquidity.IsNegative() || p.Volume24h.IsNegative():
		return apperror.Validationf(apperror.CodeInvalidSnapshot, "pool %s has negative liquidity or volume", p.ID)
	}
	for _, sym := range []string{p.Base, p.Quote} {
		if _, ok := s.tokens[sym]; !ok {
			return apperror.Validationf(apperror.CodeUnknownToken, "pool %s references %s", p.ID, sym)
		}
	}
	return nil
}

// Timestamp returns when the snapshot was taken.
func (s *Snapshot) Timestamp() time.Time {
	return s.timestamp
}

// Age returns how old the snapshot is at now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.timestamp)
}

// Token looks up a token by symbol.
func (s *Snapshot) Token(symbol string) (Token, bool) {
	t, ok := s.tokens[symbol]
	return t, ok
}

// Tokens returns all tokens sorted by symbol.
func (s *Snapshot) Tokens() []Token {
	out := make([]Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Pool looks up a pool by id.
func (s *Snapshot) Pool(id string) (Pool, bool) {
	p, ok := s.pools[id]
	return p, ok
}

// Pools returns a venue's pools in pool-id order.
func (s *Snapshot) Pools(venue string) []Pool {
	ids := s.byVenue[venue]
	out := make([]Pool, len(ids))
	for i, id := range ids {
		out[i] = s.pools[id]
	}
	return out
}

// Venues returns the venues present in the snapshot, sorted.
func (s *Snapshot) Venues() []string {
	out := make([]string, 0, len(s.byVenue))
	for v := range s.byVenue {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// PoolCount returns the number of pools across all venues.
func (s *Snapshot) PoolCount() int {
	return len(s.pools)
}

// Restrict returns a snapshot holding only the given venues' pools.
// Unknown venues are ignored. An empty list keeps everything.
func (s *Snapshot) Restrict(venues []string) *Snapshot {
	if len(venues) == 0 {
		return s
	}
	keep := make(map[string]bool, len(venues))
	for _, v := range venues {
		keep[v] = true
	}

	r := &Snapshot{
		timestamp: s.timestamp,
		tokens:    s.tokens,
		pools:     make(map[string]Pool),
		byVenue:   make(map[string][]string),
	}
	for venue, ids := range s.byVenue {
		if !keep[venue] {
			continue
		}
		r.byVenue[venue] = ids
		for _, id := range ids {
			r.pools[id] = s.pools[id]
		}
	}
	return r
}

// Rate returns how many units of the counter token one unit of from buys in p.
func (s *Snapshot) Rate(p Pool, from string) (decimal.Decimal, error) {
	rate := p.Rate
	if rate.IsZero() {
		base, okB := s.tokens[p.Base]
		quote, okQ := s.tokens[p.Quote]
		if !okB || !okQ {
			return decimal.Zero, apperror.Validationf(apperror.CodeUnknownToken, "pool %s", p.ID)
		}
		rate = base.Price.Div(quote.Price)
	}

	switch from {
	case p.Base:
		return rate, nil
	case p.Quote:
		return decimal.NewFromInt(1).Div(rate), nil
	default:
		return decimal.Zero, apperror.Validationf(apperror.CodeInvalidCycle, "pool %s does not trade %s", p.ID, from)
	}
}
