package config

import (
	"errors"
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

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BankConfig wires one bank: its packet variants, credential material and
// endpoints. Exactly one of Secret (hmac-sha256) or the key files (rsa-sha1)
// is set, matching Algorithm.
type BankConfig struct {
	ID              string `yaml:"id"`
	Algorithm       string `yaml:"algorithm"`        // rsa-sha1 | hmac-sha256
	RequestVariant  string `yaml:"request_variant"`  // outbound packet variant name
	ResponseVariant string `yaml:"response_variant"` // inbound packet variant name
	Secret          string `yaml:"secret"`
	PrivateKeyFile  string `yaml:"private_key_file"`
	PublicKeyFile   string `yaml:"public_key_file"`
	SenderID        string `yaml:"sender_id"` // VK_SND_ID
	GatewayURL      string `yaml:"gateway_url"`
	ReturnURL       string `yaml:"return_url"`
	CancelURL       string `yaml:"cancel_url"`
}

type BanklinkConfig struct {
	SkewWindow time.Duration `yaml:"skew_window"` // freshness clock-skew window
	NonceTTL   time.Duration `yaml:"nonce_ttl"`
	Banks      []BankConfig  `yaml:"banks"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Banklink BanklinkConfig `yaml:"banklink"`

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
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8086
	}
	if cfg.Banklink.SkewWindow <= 0 {
		cfg.Banklink.SkewWindow = 5 * time.Minute
	}
	if cfg.Banklink.NonceTTL <= 0 {
		cfg.Banklink.NonceTTL = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if len(cfg.Banklink.Banks) == 0 {
		return nil, errors.New("banklink.banks must list at least one bank")
	}
	for _, b := range cfg.Banklink.Banks {
		if b.ID == "" {
			return nil, errors.New("banklink.banks[].id is required")
		}
		switch b.Algorithm {
		case "hmac-sha256":
			if b.Secret == "" {
				return nil, fmt.Errorf("bank %s: secret is required for hmac-sha256", b.ID)
			}
		case "rsa-sha1":
			if b.PrivateKeyFile == "" && b.PublicKeyFile == "" {
				return nil, fmt.Errorf("bank %s: a key file is required for rsa-sha1", b.ID)
			}
		default:
			return nil, fmt.Errorf("bank %s: unknown algorithm %q", b.ID, b.Algorithm)
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
