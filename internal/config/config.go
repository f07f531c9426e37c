package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"liquidity-radar/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Web       WebConfig       `mapstructure:"web"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig governs sampling cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// VenueConfig identifies one monitored venue and its sample feed.
type VenueConfig struct {
	Symbol    string `mapstructure:"symbol"`
	SampleURL string `mapstructure:"sample_url"`
}

// ThresholdsConfig tunes the anomaly rule table.
type ThresholdsConfig struct {
	DepthDropRatio     float64 `mapstructure:"depth_drop_ratio"`
	DepthCriticalRatio float64 `mapstructure:"depth_critical_ratio"`
	SpreadRatio        float64 `mapstructure:"spread_ratio"`
	ImpactRatio        float64 `mapstructure:"impact_ratio"`
	VolumeSpikeRatio   float64 `mapstructure:"volume_spike_ratio"`
	LiquidityGapPct    float64 `mapstructure:"liquidity_gap_pct"`
	ConfirmCycles      int     `mapstructure:"confirm_cycles"`
}

// MonitorConfig describes what the radar samples and how it judges it.
type MonitorConfig struct {
	TokenSymbol        string                 `mapstructure:"token_symbol"`
	Venues             map[string]VenueConfig `mapstructure:"venues"`
	DepthBandPct       float64                `mapstructure:"depth_band_pct"`
	NotionalSmall      float64                `mapstructure:"notional_small"`
	NotionalLarge      float64                `mapstructure:"notional_large"`
	BaselineDays       int                    `mapstructure:"baseline_days"`
	BaselineMinSamples int                    `mapstructure:"baseline_min_samples"`
	BaselineMaxSamples int                    `mapstructure:"baseline_max_samples"`
	VenueTimeout       time.Duration          `mapstructure:"venue_timeout"`
	DedupeWindow       time.Duration          `mapstructure:"dedupe_window"`
	UserAgent          string                 `mapstructure:"user_agent"`
	Thresholds         ThresholdsConfig       `mapstructure:"thresholds"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// WebConfig sets the read-side API server.
type WebConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LIQRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "liquidity-radar")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "5m")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x4d4f4e52))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("monitor.token_symbol", "MON")
	v.SetDefault("monitor.depth_band_pct", 1.0)
	v.SetDefault("monitor.notional_small", 10000.0)
	v.SetDefault("monitor.notional_large", 100000.0)
	v.SetDefault("monitor.baseline_days", 14)
	v.SetDefault("monitor.baseline_min_samples", 3)
	v.SetDefault("monitor.baseline_max_samples", 200)
	v.SetDefault("monitor.venue_timeout", "60s")
	v.SetDefault("monitor.dedupe_window", "1h")
	v.SetDefault("monitor.user_agent", "liquidity-radar/1.0")

	v.SetDefault("monitor.thresholds.depth_drop_ratio", 0.7)
	v.SetDefault("monitor.thresholds.depth_critical_ratio", 0.4)
	v.SetDefault("monitor.thresholds.spread_ratio", 2.0)
	v.SetDefault("monitor.thresholds.impact_ratio", 2.0)
	v.SetDefault("monitor.thresholds.volume_spike_ratio", 2.0)
	v.SetDefault("monitor.thresholds.liquidity_gap_pct", 20.0)
	v.SetDefault("monitor.thresholds.confirm_cycles", 3)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("web.listen", ":8080")
	v.SetDefault("web.read_timeout", "10s")
	v.SetDefault("web.write_timeout", "10s")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Monitor.NotionalSmall <= 0 || c.Monitor.NotionalLarge <= 0 {
		return fmt.Errorf("monitor notionals must be greater than zero")
	}
	if c.Monitor.NotionalLarge < c.Monitor.NotionalSmall {
		return fmt.Errorf("monitor.notional_large must not be below monitor.notional_small")
	}
	if c.Monitor.DepthBandPct <= 0 {
		return fmt.Errorf("monitor.depth_band_pct must be greater than zero")
	}
	if c.Monitor.BaselineDays < 1 {
		return fmt.Errorf("monitor.baseline_days must be at least 1")
	}
	if c.Monitor.BaselineMinSamples < 1 {
		return fmt.Errorf("monitor.baseline_min_samples must be at least 1")
	}
	if c.Monitor.VenueTimeout <= 0 {
		return fmt.Errorf("monitor.venue_timeout must be greater than zero")
	}
	if c.Monitor.DedupeWindow <= 0 {
		return fmt.Errorf("monitor.dedupe_window must be greater than zero")
	}
	for name, venue := range c.Monitor.Venues {
		if venue.Symbol == "" {
			return fmt.Errorf("venue %q: symbol is required", name)
		}
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
