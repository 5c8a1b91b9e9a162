package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

// Duration accepts Go duration strings ("30m") or integer seconds in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs int64
	if err := value.Decode(&secs); err != nil {
		return err
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Port      int      `yaml:"port"`
	APISecret string   `yaml:"api_secret"` // HMAC secret for prepare-endpoint tokens
	TokenTTL  Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type RedisConfig struct {
	URL        string   `yaml:"url"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	SessionTTL Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty disables the audit log
}

type MangoConfig struct {
	ClientID string `yaml:"client_id"`
	APIKey   string `yaml:"api_key"`
	Sandbox  bool   `yaml:"sandbox"`
}

type CallbackConfig struct {
	// ReturnURL is the absolute URL of the card registration return endpoint
	// as the provider will reach it, e.g.
	// https://pay.example.com/api/v1/card-registrations/return
	ReturnURL string `yaml:"return_url"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Mango    MangoConfig    `yaml:"mango"`
	Callback CallbackConfig `yaml:"callback"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.TokenTTL <= 0 {
		cfg.Server.TokenTTL = Duration(30 * time.Minute)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.SessionTTL <= 0 {
		cfg.Redis.SessionTTL = Duration(30 * time.Minute)
	}
	if cfg.Redis.URL == "" {
		return nil, fmt.Errorf("redis.url is required")
	}

	if cfg.Mango.ClientID == "" || cfg.Mango.APIKey == "" {
		return nil, fmt.Errorf("mango.client_id and mango.api_key are required")
	}
	if cfg.Server.APISecret == "" {
		return nil, fmt.Errorf("server.api_secret is required")
	}
	ret, err := url.Parse(cfg.Callback.ReturnURL)
	if err != nil || !ret.IsAbs() {
		return nil, fmt.Errorf("callback.return_url must be an absolute URL")
	}

	return &cfg, nil
}
