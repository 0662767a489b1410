// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Snapshot sources.
const (
	SourceStatic = "static"
	SourceHTTP   = "http"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig              `mapstructure:"app"`
	Market    MarketConfig           `mapstructure:"market"`
	Venues    map[string]VenueConfig `mapstructure:"venues"`
	Scan      ScanConfig             `mapstructure:"scan"`
	Execution ExecutionConfig        `mapstructure:"execution"`
	Strategy  StrategyConfig         `mapstructure:"strategy"`
	Ethereum  EthereumConfig         `mapstructure:"ethereum"`
	Storage   StorageConfig          `mapstructure:"storage"`
	Telemetry TelemetryConfig        `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
}

// MarketConfig selects and bounds the snapshot provider.
type MarketConfig struct {
	Source         string        `mapstructure:"source"`
	SnapshotPath   string        `mapstructure:"snapshot_path"`
	FeedURL        string        `mapstructure:"feed_url"`
	Venues         []string      `mapstructure:"venues"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	MaxSnapshotAge time.Duration `mapstructure:"max_snapshot_age"`
	Federated      bool          `mapstructure:"federated"`
	Anchors        []string      `mapstructure:"anchors"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
}

// VenueConfig holds per-venue trading costs.
type VenueConfig struct {
	FeeRate      float64 `mapstructure:"fee_rate"`
	GasCost      float64 `mapstructure:"gas_cost"`
	GasUnits     uint64  `mapstructure:"gas_units"`
	NativeSymbol string  `mapstructure:"native_symbol"`
}

// ScanConfig holds opportunity scan parameters.
type ScanConfig struct {
	MinSpread float64       `mapstructure:"min_spread"`
	Amount    float64       `mapstructure:"amount"`
	Interval  time.Duration `mapstructure:"interval"`
}

// MinSpreadDecimal returns min spread as decimal.Decimal.
func (c *ScanConfig) MinSpreadDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinSpread)
}

// AmountDecimal returns the default trade size as decimal.Decimal.
func (c *ScanConfig) AmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Amount)
}

// ExecutionConfig holds execution engine settings.
type ExecutionConfig struct {
	DryRun           bool    `mapstructure:"dry_run"`
	MaxSlippagePct   float64 `mapstructure:"max_slippage_pct"`
	SlippageBoundPct float64 `mapstructure:"slippage_bound_pct"`
	Seed             uint64  `mapstructure:"seed"`
}

// StrategyConfig holds the default capital and risk tier. Apply makes the
// daemon scan with the tier's target spread, venue and position size.
type StrategyConfig struct {
	Capital  float64 `mapstructure:"capital"`
	RiskTier string  `mapstructure:"risk_tier"`
	Apply    bool    `mapstructure:"apply"`
}

// EthereumConfig holds the optional gas oracle node.
type EthereumConfig struct {
	RPCURL   string        `mapstructure:"rpc_url"`
	Enabled  bool          `mapstructure:"enabled"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// StorageConfig holds the journal location. Empty path disables journaling.
type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TRIARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "TRIARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "TRIARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "TRIARB_LOG_LEVEL", "LOG_LEVEL")

	// Market
	v.BindEnv("market.source", "TRIARB_MARKET_SOURCE")
	v.BindEnv("market.snapshot_path", "TRIARB_SNAPSHOT_PATH")
	v.BindEnv("market.feed_url", "TRIARB_FEED_URL")

	// Ethereum
	v.BindEnv("ethereum.rpc_url", "TRIARB_ETH_RPC_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.enabled", "TRIARB_ETH_ENABLED")

	// Storage
	v.BindEnv("storage.sqlite_path", "TRIARB_SQLITE_PATH")

	// Telemetry
	v.BindEnv("telemetry.enabled", "TRIARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "TRIARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "TRIARB_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "TRIARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "TRIARB_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "triarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)

	// Market defaults
	v.SetDefault("market.source", SourceStatic)
	v.SetDefault("market.snapshot_path", "snapshot.yaml")
	v.SetDefault("market.venues", []string{"raydium", "orca", "jupiter"})
	v.SetDefault("market.fetch_timeout", "10s")
	v.SetDefault("market.max_snapshot_age", "30m")
	v.SetDefault("market.federated", false)
	v.SetDefault("market.anchors", []string{"USDC", "USDT", "SOL"})
	v.SetDefault("market.requests_per_sec", 5)

	// Venue fee defaults
	v.SetDefault("venues", map[string]any{
		"raydium": map[string]any{"fee_rate": 0.0025, "gas_cost": 0.04},
		"orca":    map[string]any{"fee_rate": 0.003, "gas_cost": 0.03},
		"jupiter": map[string]any{"fee_rate": 0.001, "gas_cost": 0.07},
	})

	// Scan defaults
	v.SetDefault("scan.min_spread", 0.3)
	v.SetDefault("scan.amount", 1000)
	v.SetDefault("scan.interval", "15m")

	// Execution defaults
	v.SetDefault("execution.dry_run", true)
	v.SetDefault("execution.max_slippage_pct", 0.5)
	v.SetDefault("execution.slippage_bound_pct", 0.1)

	// Strategy defaults
	v.SetDefault("strategy.capital", 1000)
	v.SetDefault("strategy.risk_tier", "medium")
	v.SetDefault("strategy.apply", false)

	// Ethereum defaults
	v.SetDefault("ethereum.enabled", false)
	v.SetDefault("ethereum.cache_ttl", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "triarb")
	v.SetDefault("telemetry.trace_provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Market.Source {
	case SourceStatic:
		if c.Market.SnapshotPath == "" {
			return fmt.Errorf("market.snapshot_path is required for source %q", SourceStatic)
		}
	case SourceHTTP:
		if c.Market.FeedURL == "" {
			return fmt.Errorf("market.feed_url is required for source %q", SourceHTTP)
		}
	default:
		return fmt.Errorf("unknown market.source: %q", c.Market.Source)
	}

	if len(c.Venues) == 0 {
		return fmt.Errorf("venues cannot be empty")
	}
	for name, vc := range c.Venues {
		if vc.FeeRate < 0 || vc.FeeRate >= 1 {
			return fmt.Errorf("venues.%s.fee_rate must be in [0, 1): %v", name, vc.FeeRate)
		}
		if vc.GasCost < 0 {
			return fmt.Errorf("venues.%s.gas_cost cannot be negative: %v", name, vc.GasCost)
		}
	}
	for _, name := range c.Market.Venues {
		if _, ok := c.Venues[name]; !ok {
			return fmt.Errorf("market.venues references unconfigured venue %q", name)
		}
	}

	if c.Scan.Amount <= 0 {
		return fmt.Errorf("scan.amount must be positive: %v", c.Scan.Amount)
	}
	if c.Scan.MinSpread < 0 {
		return fmt.Errorf("scan.min_spread cannot be negative: %v", c.Scan.MinSpread)
	}
	if c.Execution.MaxSlippagePct < 0 || c.Execution.SlippageBoundPct < 0 {
		return fmt.Errorf("execution slippage settings cannot be negative")
	}
	if c.Ethereum.Enabled && c.Ethereum.RPCURL == "" {
		return fmt.Errorf("ethereum.rpc_url is required when ethereum.enabled is set")
	}
	return nil
}

// VenueNames returns the configured venue names, sorted.
func (c *Config) VenueNames() []string {
	names := make([]string, 0, len(c.Venues))
	for name := range c.Venues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
