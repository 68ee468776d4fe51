package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // e.g. ":8080"
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	RootDir string `yaml:"root_dir"` // uploads land under <root_dir>/<user_id>/
}

// OCRConfig points at the external text-extraction binaries.
type OCRConfig struct {
	Pdftotext string        `yaml:"pdftotext"` // binary name or absolute path
	Tesseract string        `yaml:"tesseract"`
	Timeout   time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	OpenAIKey   string  `yaml:"openai_key"`
	GeminiKey   string  `yaml:"gemini_key"`
	GeminiURL   string  `yaml:"gemini_url"`
	GatewayKey  string  `yaml:"gateway_key"` // OpenAI-compatible gateway
	GatewayURL  string  `yaml:"gateway_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxInputLen int     `yaml:"max_input_len"` // characters kept before truncation
}

type WorkerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"` // default 2s
	Workers      int           `yaml:"workers"`       // pool size, default 1
	StaleAfter   time.Duration `yaml:"stale_after"`   // 0 disables the stale-job sweep
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type NotifyConfig struct {
	TelegramToken string           `yaml:"telegram_token"` // empty → noop notifier
	ChatIDs       map[string]int64 `yaml:"chat_ids"`       // user id → telegram chat
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	OCR      OCRConfig      `yaml:"ocr"`
	AI       AIConfig       `yaml:"ai"`
	Worker   WorkerConfig   `yaml:"worker"`
	Auth     AuthConfig     `yaml:"auth"`
	Notify   NotifyConfig   `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path and fills in defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Storage.RootDir == "" {
		cfg.Storage.RootDir = "uploads"
	}
	if cfg.OCR.Pdftotext == "" {
		cfg.OCR.Pdftotext = "pdftotext"
	}
	if cfg.OCR.Tesseract == "" {
		cfg.OCR.Tesseract = "tesseract"
	}
	if cfg.OCR.Timeout <= 0 {
		cfg.OCR.Timeout = 60 * time.Second
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.MaxInputLen <= 0 {
		cfg.AI.MaxInputLen = 12000
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = 2 * time.Second
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 1
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 30 * 24 * time.Hour
	}

	// env fallbacks for secrets so a committed config.yaml stays clean
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.AI.OpenAIKey == "" {
		cfg.AI.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url (or DATABASE_URL) is required")
	}
	if c.AI.OpenAIKey == "" && c.AI.GeminiKey == "" && c.AI.GatewayKey == "" {
		return fmt.Errorf("no extraction provider configured: set ai.openai_key, ai.gemini_key or ai.gateway_key")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	return nil
}
