package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Alwanly/forkauthority-polls/pkg/pubsub"
	"github.com/Alwanly/forkauthority-polls/pkg/retry"
)

type ServerConfig struct {
	ServerAddr    string
	DatabasePath  string
	SyncInterval  time.Duration
	AdminUsername string
	AdminPassword string
	// Heartbeat is the interval between keep-alive comments on event streams
	Heartbeat time.Duration
	// Redis is nil when REDIS_HOST is unset; changes then only reach other
	// processes through the sync interval
	Redis      *pubsub.RedisConfig
	StoreRetry retry.Config
}

type WatcherConfig struct {
	PollID       string
	DatabasePath string
	SyncInterval time.Duration
	Redis        *pubsub.RedisConfig
	// Redis connection retry configuration
	ConnectMaxRetries        int
	ConnectInitialBackoff    time.Duration
	ConnectMaxBackoff        time.Duration
	ConnectBackoffMultiplier float64
}

// ConnectRetry returns the backoff used while connecting to Redis.
func (c *WatcherConfig) ConnectRetry() retry.Config {
	return retry.Config{
		MaxRetries:     c.ConnectMaxRetries,
		InitialBackoff: c.ConnectInitialBackoff,
		MaxBackoff:     c.ConnectMaxBackoff,
		Multiplier:     c.ConnectBackoffMultiplier,
		Jitter:         true,
	}
}

// LoadServerConfig reads server config from environment or returns defaults
func LoadServerConfig() (*ServerConfig, error) {
	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		ServerAddr:    envOrDefault("SERVER_ADDR", ":8080"),
		DatabasePath:  envOrDefault("DATABASE_PATH", "./data/polls.db"),
		SyncInterval:  envSeconds("SYNC_INTERVAL", 5*time.Second),
		AdminUsername: envOrDefault("ADMIN_USER", "admin"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "password"),
		Heartbeat:     envSeconds("STREAM_HEARTBEAT", 15*time.Second),
		Redis:         redisCfg,
		StoreRetry: retry.Config{
			MaxRetries:     envInt("STORE_MAX_RETRIES", 5),
			InitialBackoff: envMillis("STORE_INITIAL_BACKOFF_MS", 10*time.Millisecond),
			MaxBackoff:     envMillis("STORE_MAX_BACKOFF_MS", 200*time.Millisecond),
			Multiplier:     2.0,
			Jitter:         true,
		},
	}, nil
}

// LoadWatcherConfig reads watcher config from environment or returns defaults
func LoadWatcherConfig() (*WatcherConfig, error) {
	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}

	multiplier := 2.0
	if v := os.Getenv("REDIS_CONNECT_BACKOFF_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			multiplier = f
		}
	}

	return &WatcherConfig{
		PollID:                   os.Getenv("POLL_ID"),
		DatabasePath:             envOrDefault("DATABASE_PATH", "./data/polls.db"),
		SyncInterval:             envSeconds("SYNC_INTERVAL", 5*time.Second),
		Redis:                    redisCfg,
		ConnectMaxRetries:        envInt("REDIS_CONNECT_MAX_RETRIES", 5),
		ConnectInitialBackoff:    envSeconds("REDIS_CONNECT_INITIAL_BACKOFF", 1*time.Second),
		ConnectMaxBackoff:        envSeconds("REDIS_CONNECT_MAX_BACKOFF", 30*time.Second),
		ConnectBackoffMultiplier: multiplier,
	}, nil
}

func loadRedisConfig() (*pubsub.RedisConfig, error) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil, nil
	}
	port := 6379
	if v := os.Getenv("REDIS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		port = p
	}
	return &pubsub.RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Millisecond
		}
	}
	return def
}
