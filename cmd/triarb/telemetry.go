package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fd1az/triarb/internal/apm"
	"github.com/fd1az/triarb/internal/config"
	"github.com/fd1az/triarb/internal/logger"
	"github.com/fd1az/triarb/internal/metrics"
)

type telemetry struct {
	enabled  bool
	port     int
	registry *prometheus.Registry
	tracer   apm.TraceProvider
	meter    metrics.MetricProvider
}

// setupTelemetry installs the global tracer and meter providers when
// telemetry is enabled. Engine and scanner instruments go through them.
func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*telemetry, error) {
	t := &telemetry{enabled: cfg.Telemetry.Enabled, port: cfg.Telemetry.PrometheusPort}
	if !t.enabled {
		return t, nil
	}

	t.tracer = apm.NewTraceProvider(ctx, log, apm.ExporterConfig{
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
	})

	t.registry = prometheus.NewRegistry()
	meter, err := metrics.NewMetricProvider(
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithRegistry(t.registry),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	t.meter = meter

	log.Info(ctx, "telemetry initialized",
		"trace_provider", cfg.Telemetry.TraceProvider,
		"prometheus_port", t.port,
	)
	return t, nil
}

func (t *telemetry) shutdown(log logger.LoggerInterface) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			log.Warn(ctx, "meter provider shutdown failed", "error", err)
		}
	}
	if t.tracer != nil {
		if err := t.tracer.Stop(); err != nil {
			log.Warn(ctx, "trace provider shutdown failed", "error", err)
		}
	}
}
