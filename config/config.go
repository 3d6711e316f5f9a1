// Package config loads client configuration via Viper and assembles a
// ready-to-use lyricwiki client from it.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gofandom/lyricwiki"
)

// Config captures all client configuration knobs loaded via Viper.
type Config struct {
	Wiki     WikiConfig     `mapstructure:"wiki"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// WikiConfig names the wiki to scrape.
type WikiConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// HTTPConfig governs the plain HTTP fetcher.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	DelayMs        int `mapstructure:"delay_ms"`
}

// HeadlessConfig configures browser-rendered fetching for pages whose
// markup only exists after scripts run.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LYRICWIKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wiki.base_url", "https://lyrics.fandom.com")
	v.SetDefault("wiki.user_agent", lyricwiki.DefaultUserAgent)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.delay_ms", 0)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Wiki.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("wiki.base_url must be an http(s) URL")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.DelayMs < 0 {
		return fmt.Errorf("http.delay_ms must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	return nil
}

// Timeout converts the HTTP timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Delay converts the request spacing config into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.HTTP.DelayMs) * time.Millisecond
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// NewLogger builds a zap.Logger configured for development or
// production.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// New assembles a client from the configuration: a logger, the fetcher
// the config asks for, and metrics when enabled. The returned cleanup
// releases fetcher resources and is a no-op unless headless fetching
// is on.
func New(cfg Config) (*lyricwiki.Client, *zap.Logger, func(), error) {
	logger, err := NewLogger(cfg.Logging.Development)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []lyricwiki.Option{
		lyricwiki.WithBaseURL(cfg.Wiki.BaseURL),
		lyricwiki.WithLogger(logger),
	}
	cleanup := func() {}

	if cfg.Headless.Enabled {
		hf, err := lyricwiki.NewHeadlessFetcher(lyricwiki.HeadlessFetcherConfig{
			UserAgent:   cfg.Wiki.UserAgent,
			NavTimeout:  cfg.NavTimeout(),
			MaxParallel: cfg.Headless.MaxParallel,
		}, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("headless fetcher: %w", err)
		}
		opts = append(opts, lyricwiki.WithFetcher(hf))
		cleanup = hf.Close
	} else {
		opts = append(opts,
			lyricwiki.WithUserAgent(cfg.Wiki.UserAgent),
			lyricwiki.WithTimeout(cfg.Timeout()),
			lyricwiki.WithDelay(cfg.Delay()),
		)
	}

	if cfg.Metrics.Enabled {
		opts = append(opts, lyricwiki.WithMetrics(prometheus.DefaultRegisterer))
	}

	return lyricwiki.New(opts...), logger, cleanup, nil
}
