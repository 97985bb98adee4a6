package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/compose-network/multicodec/x/codec"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.API.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.API.ReadHeaderTimeout)
	assert.Equal(t, int64(8<<20), cfg.API.MaxBodyBytes)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.ListenAddr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Log.Level)

	c, err := cfg.Codec.DefaultCodec()
	require.NoError(t, err)
	assert.Equal(t, codec.JSON, c)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  listen_addr: "127.0.0.1:7000"
  read_timeout: 3s
  max_body_bytes: 1024
  enable_cors: true
metrics:
  enabled: false
log:
  level: debug
  pretty: true
codec:
  default: JSON
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.API.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, int64(1024), cfg.API.MaxBodyBytes)
	assert.True(t, cfg.API.EnableCORS)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MULTICODEC_LOG_LEVEL", "warn")
	t.Setenv("MULTICODEC_API_LISTEN_ADDR", ":6000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":6000", cfg.API.ListenAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidCodec(t *testing.T) {
	path := writeConfig(t, "codec:\n  default: cbor\n")

	_, err := Load(path)
	require.ErrorIs(t, err, codec.ErrUnknownCodec)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := map[string]func(c *Config){
		"empty api addr":     func(c *Config) { c.API.ListenAddr = "" },
		"zero body limit":    func(c *Config) { c.API.MaxBodyBytes = 0 },
		"metrics no addr":    func(c *Config) { c.Metrics.ListenAddr = "" },
		"metrics bad path":   func(c *Config) { c.Metrics.Path = "metrics" },
		"metrics same addr":  func(c *Config) { c.Metrics.ListenAddr = c.API.ListenAddr },
		"negative shutdown":  func(c *Config) { c.API.ShutdownTimeout = -time.Second },
		"unknown codec name": func(c *Config) { c.Codec.Default = "xml" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := *base
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDump_RoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg.API.ListenAddr, back.API.ListenAddr)
	assert.Equal(t, cfg.Metrics, back.Metrics)
	assert.Equal(t, cfg.Codec, back.Codec)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()
	assert.Equal(t, 5*time.Second, cfg.API.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, cfg.API.ShutdownTimeout)
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.API.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.API.ShutdownTimeout)
	assert.Equal(t, "json", cfg.Codec.Default)
}
