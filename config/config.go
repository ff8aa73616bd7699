package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const maxRedisDB = 15

// Config is read from the environment. Every field has a default that points
// at a local single-node server.
type Config struct {
	Redis RedisConfig
	Cache CacheConfig
	Mongo MongoConfig
}

// RedisConfig selects the server and database a Cache dials.
type RedisConfig struct {
	Addr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// CacheConfig maps onto callcache.Options.
type CacheConfig struct {
	NoFlush bool   `envconfig:"CACHE_NO_FLUSH" default:"false"`
	Prefix  string `envconfig:"CACHE_PREFIX" default:""`
}

// MongoConfig locates the school and request-log collections.
type MongoConfig struct {
	URI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"MONGO_DATABASE" default:"my_db"`
	Collection     string        `envconfig:"MONGO_COLLECTION" default:"school"`
	LogsDatabase   string        `envconfig:"MONGO_LOGS_DATABASE" default:"logs"`
	LogsCollection string        `envconfig:"MONGO_LOGS_COLLECTION" default:"nginx"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

// FromEnv reads the environment without validating, for callers that apply
// their own overrides before calling Validate.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	return c.Mongo.Validate()
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Addr) == "" {
		return fmt.Errorf("config: REDIS_ADDR must not be empty")
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return fmt.Errorf("config: REDIS_DB must be between 0 and %d, got %d", maxRedisDB, r.DB)
	}
	if r.DialTimeout < 0 {
		return fmt.Errorf("config: REDIS_DIAL_TIMEOUT must not be negative")
	}
	return nil
}

func (m MongoConfig) Validate() error {
	if strings.TrimSpace(m.URI) == "" {
		return fmt.Errorf("config: MONGO_URI must not be empty")
	}
	if m.Database == "" || m.Collection == "" {
		return fmt.Errorf("config: MONGO_DATABASE and MONGO_COLLECTION must not be empty")
	}
	return nil
}
