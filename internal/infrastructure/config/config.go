package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Detector DetectorConfig `mapstructure:"detector"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env          string        `mapstructure:"env"`
	LogLevel     string        `mapstructure:"log_level"`
	HTTPPort     int           `mapstructure:"http_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// NATSConfig represents NATS request/reply configuration
type NATSConfig struct {
	URL               string        `mapstructure:"url"`
	SubjectPrefix     string        `mapstructure:"subject_prefix"`
	QueueGroup        string        `mapstructure:"queue_group"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	Enabled           bool          `mapstructure:"enabled"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// DetectorConfig represents the detection thresholds and rule extensions
type DetectorConfig struct {
	TokenDecimals                 int32        `mapstructure:"token_decimals"`
	ConcentrationThresholdPercent int64        `mapstructure:"concentration_threshold_percent"`
	BalanceDropThreshold          string       `mapstructure:"balance_drop_threshold"` // token units
	MintThreshold                 string       `mapstructure:"mint_threshold"`         // token units
	FeeThresholdBps               int64        `mapstructure:"fee_threshold_bps"`
	ExtraRules                    []RuleConfig `mapstructure:"extra_rules"`
}

// RuleConfig describes an additional signature rule loaded from configuration
type RuleConfig struct {
	Name        string            `mapstructure:"name"` // canonical signature
	Type        string            `mapstructure:"type"`
	Severity    string            `mapstructure:"severity"`
	Description string            `mapstructure:"description"`
	Check       *ParamCheckConfig `mapstructure:"check"`
}

// ParamCheckConfig describes a parameter predicate of a configured rule
type ParamCheckConfig struct {
	Arg        string `mapstructure:"arg"`
	Index      int    `mapstructure:"index"`
	Op         string `mapstructure:"op"`
	Threshold  string `mapstructure:"threshold"`
	TokenUnits bool   `mapstructure:"token_units"` // scale threshold by token decimals
}

// DefaultDetectorConfig returns the built-in detection thresholds
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		TokenDecimals:                 18,
		ConcentrationThresholdPercent: 50,
		BalanceDropThreshold:          "80",
		MintThreshold:                 "1000000",
		FeeThresholdBps:               1000,
	}
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	return LoadFrom(".", "./config", "/etc/rugpull-detector")
}

// LoadFrom loads configuration searching config.yaml in the given directories
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	// Environment variables
	v.AutomaticEnv()

	// Map environment variables to nested config keys
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.http_port", 8080)
	v.SetDefault("app.read_timeout", "10s")
	v.SetDefault("app.write_timeout", "10s")
	v.SetDefault("app.max_body_bytes", 10<<20)

	// NATS defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "rugpull")
	v.SetDefault("nats.queue_group", "rugpull-detector")
	v.SetDefault("nats.connect_timeout", "10s")
	v.SetDefault("nats.reconnect_attempts", 5)
	v.SetDefault("nats.reconnect_delay", "2s")
	v.SetDefault("nats.enabled", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Detector defaults
	d := DefaultDetectorConfig()
	v.SetDefault("detector.token_decimals", d.TokenDecimals)
	v.SetDefault("detector.concentration_threshold_percent", d.ConcentrationThresholdPercent)
	v.SetDefault("detector.balance_drop_threshold", d.BalanceDropThreshold)
	v.SetDefault("detector.mint_threshold", d.MintThreshold)
	v.SetDefault("detector.fee_threshold_bps", d.FeeThresholdBps)

	// Bind env for NATS URL
	v.BindEnv("nats.url", "NATS_URL")
}
