package config

import (
	"time"
)

const (
	LockDriverLocal = "local"
	LockDriverRedis = "redis"
)

type SwapConfig struct {
	LockDriver          string        `yaml:"lock_driver"`
	LockTTL             time.Duration `yaml:"lock_ttl"`
	LockWait            time.Duration `yaml:"lock_wait"`
	AggregateCacheTTL   time.Duration `yaml:"aggregate_cache_ttl"`
	MaxMessageLength    int           `yaml:"max_message_length"`
	MaxRatingCommentLen int           `yaml:"max_rating_comment_length"`
}

func loadSwapConfig() *SwapConfig {
	return &SwapConfig{
		LockDriver:          getEnv("LOCK_DRIVER", LockDriverLocal),
		LockTTL:             getEnvAsDuration("LOCK_TTL", 10*time.Second),
		LockWait:            getEnvAsDuration("LOCK_WAIT", 5*time.Second),
		AggregateCacheTTL:   getEnvAsDuration("AGGREGATE_CACHE_TTL", 15*time.Minute),
		MaxMessageLength:    getEnvAsInt("SWAP_MAX_MESSAGE_LENGTH", 500),
		MaxRatingCommentLen: getEnvAsInt("SWAP_MAX_COMMENT_LENGTH", 500),
	}
}
