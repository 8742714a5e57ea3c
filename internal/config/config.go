// Package config loads storefront settings from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

type Config struct {
	CatalogBaseURL   string        `yaml:"catalog_base_url"`
	CatalogTimeout   time.Duration `yaml:"catalog_timeout"`
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	StoreBackend     string        `yaml:"store_backend"`
	SQLitePath       string        `yaml:"sqlite_path"`
	RedisAddr        string        `yaml:"redis_addr"`
	StoreTable       string        `yaml:"store_table"`
	OrdersQueueURL   string        `yaml:"orders_queue_url"`
	MetricsNamespace string        `yaml:"metrics_namespace"`
	PaymentKey       string        `yaml:"payment_key"`
	ZeroAmountPolicy string        `yaml:"zero_amount_policy"`
	RunLocal         bool          `yaml:"run_local"`
	ListenAddr       string        `yaml:"listen_addr"`
	AWSRegion        string        `yaml:"aws_region"`
}

// Default returns the settings used when neither file nor environment set a value.
func Default() Config {
	return Config{
		CatalogBaseURL:   "https://dummyjson.com/products",
		CatalogTimeout:   2000 * time.Millisecond,
		SearchDebounce:   350 * time.Millisecond,
		StoreBackend:     BackendMemory,
		SQLitePath:       "storefront.db",
		RedisAddr:        "localhost:6379",
		StoreTable:       "storefront",
		PaymentKey:       "rzp_test_storefront",
		ZeroAmountPolicy: "warn",
		ListenAddr:       ":8080",
		AWSRegion:        "us-east-1",
	}
}

// Load reads path when it is non-empty, then applies environment overrides.
// A missing file is an error; an empty path means defaults plus environment.
func Load(path string) (Config, error) {
	return LoadFrom(Default(), path)
}

// LoadFrom is Load with caller-supplied defaults.
func LoadFrom(cfg Config, path string) (Config, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.CatalogBaseURL = getEnv("CATALOG_BASE_URL", cfg.CatalogBaseURL)
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.StoreBackend))
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.StoreTable = getEnv("STORE_TABLE", cfg.StoreTable)
	cfg.OrdersQueueURL = getEnv("ORDERS_QUEUE_URL", cfg.OrdersQueueURL)
	cfg.MetricsNamespace = getEnv("METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.PaymentKey = getEnv("PAYMENT_KEY", cfg.PaymentKey)
	cfg.ZeroAmountPolicy = getEnv("ZERO_AMOUNT_POLICY", cfg.ZeroAmountPolicy)
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	if v := os.Getenv("RUN_LOCAL"); v != "" {
		cfg.RunLocal = v == "true"
	}

	var err error
	if cfg.CatalogTimeout, err = getDuration("CATALOG_TIMEOUT", cfg.CatalogTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SearchDebounce, err = getDuration("SEARCH_DEBOUNCE", cfg.SearchDebounce); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.CatalogBaseURL == "" {
		return errors.New("catalog base url is required")
	}
	if c.CatalogTimeout <= 0 || c.SearchDebounce <= 0 {
		return errors.New("catalog timeout and search debounce must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("2s") or bare milliseconds ("2000").
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
