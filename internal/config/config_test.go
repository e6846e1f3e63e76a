package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf2text/internal/domain"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "result.txt", cfg.Conversion.Output)
	assert.Equal(t, 1, cfg.Conversion.Workers)
	assert.Equal(t, "eng", cfg.Conversion.Language)
	assert.Equal(t, string(domain.OrderCompletion), cfg.Conversion.Order)
}

func TestLoad_YAMLFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdf2text.yaml")
	yamlDoc := `
conversion:
  language: rus
  workers: 4
  order: page
  dpi: 200
cache:
  driver: memory
  ttl: 1h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	t.Setenv("PDF2TEXT_WORKERS", "6")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rus", cfg.Conversion.Language)
	assert.Equal(t, 6, cfg.Conversion.Workers, "environment overrides the file")
	assert.Equal(t, "page", cfg.Conversion.Order)
	assert.Equal(t, 200, cfg.Conversion.DPI)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.Vision.APIKey)
	assert.Equal(t, "result.txt", cfg.Conversion.Output, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("conversion: [unclosed"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	t.Setenv("PDF2TEXT_WORKERS", "many")
	_, err = Load("")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "zero workers are clamped later", mutate: func(c *Config) { c.Conversion.Workers = 0 }},
		{name: "negative workers are clamped later", mutate: func(c *Config) { c.Conversion.Workers = -3 }},
		{name: "bad order", mutate: func(c *Config) { c.Conversion.Order = "random" }, wantErr: true},
		{name: "empty output", mutate: func(c *Config) { c.Conversion.Output = " " }, wantErr: true},
		{name: "dpi too low", mutate: func(c *Config) { c.Conversion.DPI = 10 }, wantErr: true},
		{name: "unknown engine", mutate: func(c *Config) { c.Conversion.Engine = "abbyy" }, wantErr: true},
		{name: "vision without key", mutate: func(c *Config) { c.Conversion.Engine = EngineVision }, wantErr: true},
		{name: "vision with key", mutate: func(c *Config) {
			c.Conversion.Engine = EngineVision
			c.Vision.APIKey = "sk"
		}},
		{name: "pdfcpu counter", mutate: func(c *Config) { c.Conversion.Counter = CounterPDFCPU }},
		{name: "unknown counter", mutate: func(c *Config) { c.Conversion.Counter = "poppler" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Cache.Driver = CacheRedis
			c.Cache.Redis.Addr = ""
		}, wantErr: true},
		{name: "unknown cache", mutate: func(c *Config) { c.Cache.Driver = "memcached" }, wantErr: true},
		{name: "upload not gcs", mutate: func(c *Config) { c.Upload.URI = "s3://bucket/key" }, wantErr: true},
		{name: "upload gcs", mutate: func(c *Config) { c.Upload.URI = "gs://bucket/result.txt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}
