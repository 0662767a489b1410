package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Provider names a metric reader backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "customOtelCollector"
)

// Config collects the options passed to NewMetricProvider.
type Config struct {
	ServiceName string
	Provider    []ProviderCfg
	Registry    *prometheus.Registry
}

// ProviderCfg configures one reader.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// NewOtelCollectorConfig builds an OTLP gRPC reader config.
func NewOtelCollectorConfig(url string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  headers,
		Insecure: insecure,
	}
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

// WithRegistry exports Prometheus metrics into reg instead of the default registerer.
func WithRegistry(reg *prometheus.Registry) OptionFn {
	return func(config Config) Config {
		config.Registry = reg
		return config
	}
}
