package redis

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ClientConfig holds connection settings for a standalone or cluster client.
// Setting more than one address builds a cluster-aware UniversalClient.
type ClientConfig struct {
	Addrs        []string      `json:"addrs"`
	Username     string        `json:"username"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	MaxRetries   int           `json:"max_retries"` // client-level retries; the cache itself never retries
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	PoolSize     int           `json:"pool_size"`
}

// DefaultClientConfig returns settings for a local single-node Redis.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addrs:        []string{"localhost:6379"},
		DB:           0,
		MaxRetries:   0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	}
}

// Validate checks the configuration before a client is built.
func (c ClientConfig) Validate() error {
	if len(c.Addrs) == 0 {
		return fmt.Errorf("redis address cannot be empty")
	}
	for i, a := range c.Addrs {
		if a == "" {
			return fmt.Errorf("redis address %d is empty", i)
		}
	}
	if c.DB < 0 || c.DB > 15 {
		return fmt.Errorf("redis database must be between 0 and 15, got %d", c.DB)
	}
	if len(c.Addrs) > 1 && c.DB != 0 {
		return fmt.Errorf("redis cluster does not support database %d", c.DB)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got %d", c.MaxRetries)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive, got %v", c.DialTimeout)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.ReadTimeout)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", c.WriteTimeout)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	}
	return nil
}

// NewClient validates cfg and builds a go-redis UniversalClient.
// go-redis treats MaxRetries=0 as its own default; -1 disables retries entirely,
// so zero here is mapped to -1.
func NewClient(cfg ClientConfig) (goredis.UniversalClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}
	return goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   retries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	}), nil
}
