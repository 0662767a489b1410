// Package httpfeed fetches market snapshots from a JSON HTTP endpoint.
package httpfeed

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/triarb/business/market/domain"
	"github.com/fd1az/triarb/internal/apperror"
	"github.com/fd1az/triarb/internal/circuitbreaker"
	"github.com/fd1az/triarb/internal/httpclient"
	"github.com/fd1az/triarb/internal/logger"
	"github.com/fd1az/triarb/internal/ratelimit"
)

const tracerName = "github.com/fd1az/triarb/business/market/infra/httpfeed"

// ProviderConfig configures the feed provider.
type ProviderConfig struct {
	URL            string
	Timeout        time.Duration
	RequestsPerSec float64
	Headers        map[string]string
}

// Provider implements app.SnapshotProvider over HTTP.
type Provider struct {
	cfg     ProviderConfig
	client  *httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[*snapshotMessage]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewProvider creates a new feed provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	client, err := httpclient.New(
		httpclient.WithProviderName("snapshot-feed"),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(cfg.Headers),
	)
	if err != nil {
		return nil, err
	}

	cbCfg := circuitbreaker.DefaultConfig("snapshot-feed")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Provider{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerSec, 1),
		cb:      circuitbreaker.New[*snapshotMessage](cbCfg),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Name implements app.SnapshotProvider.
func (p *Provider) Name() string {
	return "http:" + p.cfg.URL
}

// Snapshot implements app.SnapshotProvider.
func (p *Provider) Snapshot(ctx context.Context, venues []string) (*domain.Snapshot, error) {
	ctx, span := p.tracer.Start(ctx, "feed.snapshot",
		trace.WithAttributes(attribute.StringSlice("venues", venues)),
	)
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	target, err := p.requestURL(venues)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err), apperror.WithContext(p.cfg.URL))
	}

	msg, err := p.cb.Execute(func() (*snapshotMessage, error) {
		var m snapshotMessage
		if err := p.client.GetJSON(ctx, target, &m); err != nil {
			return nil, err
		}
		return &m, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		if circuitbreaker.IsOpen(err) {
			p.logger.Warn(ctx, "snapshot feed circuit open", "state", p.cb.State())
		}
		return nil, apperror.New(apperror.CodeDataUnavailable, apperror.WithCause(err), apperror.WithContext(p.Name()))
	}

	snap, err := toSnapshot(msg)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("pools", snap.PoolCount()))
	span.SetStatus(codes.Ok, "fetched")
	return snap.Restrict(venues), nil
}

func (p *Provider) requestURL(venues []string) (string, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return "", err
	}
	if len(venues) > 0 {
		q := u.Query()
		q.Set("venues", strings.Join(venues, ","))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func toSnapshot(m *snapshotMessage) (*domain.Snapshot, error) {
	tokens := make([]domain.Token, len(m.Tokens))
	for i, t := range m.Tokens {
		tokens[i] = domain.Token{Symbol: t.Symbol, Price: t.Price}
	}

	pools := make([]domain.Pool, len(m.Pools))
	for i, p := range m.Pools {
		pools[i] = domain.Pool{
			ID:        p.ID,
			Venue:     p.Venue,
			Base:      p.Base,
			Quote:     p.Quote,
			Rate:      p.Rate,
			Liquidity: p.Liquidity,
			Volume24h: p.Volume24h,
			APY:       p.APY,
		}
	}

	if m.Timestamp.IsZero() {
		return nil, apperror.Validation(apperror.CodeInvalidSnapshot, "feed snapshot has no timestamp")
	}
	return domain.NewSnapshot(m.Timestamp, tokens, pools)
}
