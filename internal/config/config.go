package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration. Values come from defaults, then an
// optional YAML file named by CONFIG_FILE, then the environment.
type Config struct {
	HTTPPort           string   `yaml:"http_port"`
	DatabaseURL        string   `yaml:"database_url"`
	DBPoolSize         int      `yaml:"db_pool_size"`
	RedisURL           string   `yaml:"redis_url"`
	RedisPoolSize      int      `yaml:"redis_pool_size"`
	CacheTTL           int      `yaml:"cache_ttl_sec"` // seconds
	KafkaBrokers       []string `yaml:"kafka_brokers"`
	KafkaTopic         string   `yaml:"kafka_topic"`
	KafkaPartitions    int      `yaml:"kafka_partitions"`
	JWTSecret          string   `yaml:"jwt_secret"`
	SessionTTLHours    int      `yaml:"session_ttl_hours"`
	CORSOrigins        []string `yaml:"cors_origins"`
	Timezone           string   `yaml:"timezone"`
	BillOwnershipCheck bool     `yaml:"bill_ownership_check"`
	SecureCookies      bool     `yaml:"secure_cookies"`
	LogLevel           string   `yaml:"log_level"`
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once). A broken CONFIG_FILE is
// reported on stderr and ignored so the environment still applies.
func Get() *Config {
	cfgOnce.Do(func() {
		c, err := Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		cfg = c
	})
	return cfg
}

// Load builds a fresh Config. It always returns a usable Config; the error
// reports a CONFIG_FILE that could not be read or parsed.
func Load() (*Config, error) {
	c := defaults()
	var fileErr error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileErr = c.overlayFile(path)
	}
	c.overlayEnv()
	return c, fileErr
}

func defaults() *Config {
	return &Config{
		HTTPPort:        "8080",
		DBPoolSize:      20,
		RedisPoolSize:   50,
		CacheTTL:        300,
		KafkaTopic:      "record-changes",
		KafkaPartitions: 4,
		SessionTTLHours: 168,
		Timezone:        "Local",
		LogLevel:        "info",
	}
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBPoolSize = getIntEnv("DB_POOL_SIZE", c.DBPoolSize)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RedisPoolSize = getIntEnv("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.CacheTTL = getIntEnv("CACHE_TTL_SEC", c.CacheTTL)
	c.KafkaBrokers = getSliceEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.KafkaPartitions = getIntEnv("KAFKA_PARTITIONS", c.KafkaPartitions)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SessionTTLHours = getIntEnv("SESSION_TTL_HOURS", c.SessionTTLHours)
	c.CORSOrigins = getSliceEnv("CORS_ORIGINS", c.CORSOrigins)
	c.Timezone = getEnv("APP_TIMEZONE", c.Timezone)
	c.BillOwnershipCheck = getBoolEnv("BILL_OWNERSHIP_CHECK", c.BillOwnershipCheck)
	c.SecureCookies = getBoolEnv("SECURE_COOKIES", c.SecureCookies)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Location resolves Timezone; an unknown zone falls back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SessionTTL is the lifetime of issued session tokens.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// CacheTTLDuration is the list cache expiry.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getSliceEnv(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
