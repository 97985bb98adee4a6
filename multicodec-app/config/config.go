package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/compose-network/multicodec/server/api"
	"github.com/compose-network/multicodec/x/codec"
)

// EnvPrefix prefixes every environment override, e.g. MULTICODEC_LOG_LEVEL.
const EnvPrefix = "MULTICODEC"

// Config holds the complete application configuration
type Config struct {
	API     api.Config    `mapstructure:"api"     yaml:"api"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log"     yaml:"log"`
	Codec   CodecConfig   `mapstructure:"codec"   yaml:"codec"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"     yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	Path       string `mapstructure:"path"        yaml:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// CodecConfig selects the codec used when a command is not told which
// one to frame with.
type CodecConfig struct {
	Default string `mapstructure:"default" yaml:"default"`
}

// DefaultCodec resolves Codec.Default against the registry.
func (c CodecConfig) DefaultCodec() (codec.Codec, error) {
	cd, ok := codec.ParseName(c.Default)
	if !ok {
		return 0, fmt.Errorf("%w: %q", codec.ErrUnknownCodec, c.Default)
	}
	return cd, nil
}

// Load loads configuration from file and environment. An empty
// configPath skips the file and uses defaults plus environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := api.DefaultConfig()
	v.SetDefault("api.listen_addr", d.ListenAddr)
	v.SetDefault("api.read_header_timeout", d.ReadHeaderTimeout)
	v.SetDefault("api.read_timeout", d.ReadTimeout)
	v.SetDefault("api.write_timeout", d.WriteTimeout)
	v.SetDefault("api.idle_timeout", d.IdleTimeout)
	v.SetDefault("api.shutdown_timeout", d.ShutdownTimeout)
	v.SetDefault("api.max_header_bytes", d.MaxHeaderBytes)
	v.SetDefault("api.max_body_bytes", d.MaxBodyBytes)
	v.SetDefault("api.enable_cors", d.EnableCORS)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9090")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("codec.default", codec.JSON.Name())
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if c.API.ShutdownTimeout < 0 {
		return errors.New("api: shutdown_timeout must not be negative")
	}

	if c.Metrics.Enabled {
		if c.Metrics.ListenAddr == "" {
			return errors.New("metrics: listen_addr is required when metrics are enabled")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics: path %q must start with /", c.Metrics.Path)
		}
		if c.Metrics.ListenAddr == c.API.ListenAddr {
			return errors.New("metrics: listen_addr must differ from api.listen_addr")
		}
	}

	if _, err := c.Codec.DefaultCodec(); err != nil {
		return fmt.Errorf("codec: %w", err)
	}

	return nil
}

// Dump renders the configuration as YAML.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}

// durationOrDefault keeps zero durations from disabling timeouts.
func durationOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Normalize fills zero timeouts with defaults after flag overrides.
func (c *Config) Normalize() {
	d := api.DefaultConfig()
	c.API.ReadHeaderTimeout = durationOrDefault(c.API.ReadHeaderTimeout, d.ReadHeaderTimeout)
	c.API.ShutdownTimeout = durationOrDefault(c.API.ShutdownTimeout, d.ShutdownTimeout)
}
