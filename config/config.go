// Package config loads the cfl configuration file and its environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Currency is an ISO code or "auto".
	Currency    string          `yaml:"currency"`
	Locale      string          `yaml:"locale"`
	PageSize    int             `yaml:"page_size"`
	SessionFile string          `yaml:"session_file"`
	CoinGecko   CoinGeckoConfig `yaml:"coingecko"`
	Store       StoreConfig     `yaml:"store"`
	Avatars     AvatarConfig    `yaml:"avatars"`
	Logging     LoggingConfig   `yaml:"logging"`
}

type CoinGeckoConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	CacheDir          string        `yaml:"cache_dir"`
	Timeout           time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AvatarConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PublicBaseURL   string `yaml:"public_base_url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Dir is the directory holding cfl files: the config, the session and the
// default database.
func Dir() string {
	if d := os.Getenv("COINFOLIO_HOME"); d != "" {
		return d
	}
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "coinfolio")
	}
	return ".coinfolio"
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir := Dir()
	return &Config{
		Currency:    "auto",
		PageSize:    50,
		SessionFile: filepath.Join(dir, "session.json"),
		CoinGecko: CoinGeckoConfig{
			BaseURL:           "https://api.coingecko.com/api/v3",
			RequestsPerMinute: 30,
			CacheTTL:          time.Minute,
			Timeout:           10 * time.Second,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(dir, "coinfolio.db"),
		},
		Avatars: AvatarConfig{Region: "us-east-1"},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
			MaxAge: 7,
		},
	}
}

// Load reads the configuration at path on top of the defaults, then applies
// the environment. A missing file is not an error. A .env file in the working
// directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func setFromEnv(dst *string, keys ...string) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
			return
		}
	}
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Currency, "COINFOLIO_CURRENCY")
	setFromEnv(&c.Locale, "COINFOLIO_LOCALE")
	if c.Locale == "" {
		setFromEnv(&c.Locale, "LC_ALL", "LANG")
	}
	setFromEnv(&c.SessionFile, "COINFOLIO_SESSION_FILE")
	setFromEnv(&c.CoinGecko.BaseURL, "COINFOLIO_COINGECKO_URL")
	setFromEnv(&c.CoinGecko.APIKey, "COINGECKO_API_KEY")
	setFromEnv(&c.Store.Driver, "COINFOLIO_STORE_DRIVER")
	setFromEnv(&c.Store.DSN, "COINFOLIO_STORE_DSN")
	setFromEnv(&c.Logging.Level, "COINFOLIO_LOG_LEVEL")

	if c.Avatars.Enabled {
		setFromEnv(&c.Avatars.AccessKeyID, "AWS_ACCESS_KEY_ID")
		setFromEnv(&c.Avatars.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
		setFromEnv(&c.Avatars.Region, "AWS_REGION")
		setFromEnv(&c.Avatars.Bucket, "COINFOLIO_AVATAR_BUCKET")
	}
	c.Avatars.Bucket = strings.TrimSpace(c.Avatars.Bucket)
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be greater than 0")
	}
	if c.Currency == "" {
		return fmt.Errorf("currency is required, use \"auto\" to follow the locale")
	}
	if c.CoinGecko.BaseURL == "" {
		return fmt.Errorf("coingecko.base_url is required")
	}
	if c.CoinGecko.RequestsPerMinute < 0 {
		return fmt.Errorf("coingecko.requests_per_minute must not be negative")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver %q is not one of sqlite, postgres", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required")
	}
	if c.Avatars.Enabled {
		if c.Avatars.Bucket == "" {
			return fmt.Errorf("avatars.bucket is required when avatars are enabled")
		}
		if !isValidS3Bucket(c.Avatars.Bucket) {
			return fmt.Errorf("avatars.bucket '%s' is invalid", c.Avatars.Bucket)
		}
		if c.Avatars.Region == "" {
			return fmt.Errorf("avatars.region is required when avatars are enabled")
		}
	}
	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
