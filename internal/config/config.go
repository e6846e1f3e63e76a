// Package config provides configuration loading for pdf2text.
// Values are layered: defaults, then an optional YAML file, then .env and
// process environment, then command-line flags applied by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spherical/pdf2text/internal/domain"
)

const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"

	CounterFitz   = "fitz"
	CounterPDFCPU = "pdfcpu"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"

	// DefaultOutput is written in the current working directory.
	DefaultOutput = "result.txt"
)

// Config holds all configuration for a conversion run.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Tesseract  TesseractConfig  `yaml:"tesseract"`
	Vision     VisionConfig     `yaml:"vision"`
	Cache      CacheConfig      `yaml:"cache"`
	Upload     UploadConfig     `yaml:"upload"`
	Log        LogConfig        `yaml:"log"`
}

// ConversionConfig holds the orchestrator settings.
type ConversionConfig struct {
	Input    string `yaml:"-"`
	Language string `yaml:"language"`
	Workers  int    `yaml:"workers"`
	Order    string `yaml:"order"`
	Output   string `yaml:"output"`
	DPI      int    `yaml:"dpi"`
	Engine   string `yaml:"engine"`
	Counter  string `yaml:"counter"`
}

// TesseractConfig holds gosseract settings.
type TesseractConfig struct {
	PageSegMode int `yaml:"page_seg_mode"` // 0 keeps the Tesseract default
}

// VisionConfig holds the vision LLM recognizer settings.
type VisionConfig struct {
	APIKey  string        `yaml:"-"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig holds page cache settings.
type CacheConfig struct {
	Driver string        `yaml:"driver"`
	TTL    time.Duration `yaml:"ttl"`
	Redis  RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// UploadConfig holds the optional cloud copy of the result.
type UploadConfig struct {
	URI          string `yaml:"uri"`           // gs://bucket/object
	SkipExisting bool   `yaml:"skip_existing"` // keep an object that already exists
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Conversion: ConversionConfig{
			Language: domain.DefaultLanguage,
			Workers:  1,
			Order:    string(domain.OrderCompletion),
			Output:   DefaultOutput,
			DPI:      300,
			Engine:   EngineTesseract,
			Counter:  CounterFitz,
		},
		Vision: VisionConfig{
			Timeout: 2 * time.Minute,
		},
		Cache: CacheConfig{
			Driver: CacheNone,
			TTL:    7 * 24 * time.Hour,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "pdf2text:",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from an optional YAML file and the environment.
// A missing .env file is not an error; a missing YAML file is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError(fmt.Sprintf("read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError(fmt.Sprintf("parse config file %s", path), err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PDF2TEXT_LANGUAGE"); v != "" {
		cfg.Conversion.Language = v
	}
	if v := os.Getenv("PDF2TEXT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError("PDF2TEXT_WORKERS must be an integer", err)
		}
		cfg.Conversion.Workers = n
	}
	if v := os.Getenv("PDF2TEXT_ORDER"); v != "" {
		cfg.Conversion.Order = v
	}
	if v := os.Getenv("PDF2TEXT_ENGINE"); v != "" {
		cfg.Conversion.Engine = v
	}
	if v := os.Getenv("PDF2TEXT_CACHE"); v != "" {
		cfg.Cache.Driver = v
	}
	if v := os.Getenv("PDF2TEXT_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("PDF2TEXT_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("PDF2TEXT_UPLOAD"); v != "" {
		cfg.Upload.URI = v
	}
	if v := os.Getenv("PDF2TEXT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Vision.Model = v
	}
	return nil
}

// Validate checks the configuration for errors. Worker counts are not
// validated; the orchestrator clamps them.
func (c *Config) Validate() error {
	if _, err := domain.ParseOrder(c.Conversion.Order); err != nil {
		return domain.ConfigError("invalid order", err)
	}

	if strings.TrimSpace(c.Conversion.Output) == "" {
		return domain.ConfigError("output path is required", nil)
	}

	if c.Conversion.DPI < 72 || c.Conversion.DPI > 1200 {
		return domain.ConfigError(fmt.Sprintf("dpi must be between 72 and 1200, got %d", c.Conversion.DPI), nil)
	}

	switch c.Conversion.Engine {
	case EngineTesseract:
	case EngineVision:
		if c.Vision.APIKey == "" {
			return domain.ConfigError("OPENROUTER_API_KEY is required for the vision engine", nil)
		}
	default:
		return domain.ConfigError(fmt.Sprintf("unknown engine %q", c.Conversion.Engine), nil)
	}

	switch c.Conversion.Counter {
	case CounterFitz, CounterPDFCPU:
	default:
		return domain.ConfigError(fmt.Sprintf("unknown page counter %q", c.Conversion.Counter), nil)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return domain.ConfigError("cache.redis.addr is required for the redis cache", nil)
		}
	default:
		return domain.ConfigError(fmt.Sprintf("unknown cache driver %q", c.Cache.Driver), nil)
	}

	if c.Upload.URI != "" && !strings.HasPrefix(c.Upload.URI, "gs://") {
		return domain.ConfigError(fmt.Sprintf("upload uri must start with gs://, got %q", c.Upload.URI), nil)
	}

	return nil
}
