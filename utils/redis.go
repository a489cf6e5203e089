package utils

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisCtx    = context.Background()
)

var ErrRedisDisabled = errors.New("redis is not configured")

// InitRedis connects to Redis using REDIS_ADDR / REDIS_PASSWORD / REDIS_DB.
// Returns nil without connecting when REDIS_ADDR is unset: password reset
// tokens are simply unavailable in that case.
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(redisCtx, 5*time.Second)
	defer cancel()
	return redisClient.Ping(ctx).Err()
}

// SetToken stores a value with a TTL
func SetToken(key, value string, ttl time.Duration) error {
	if redisClient == nil {
		return ErrRedisDisabled
	}
	return redisClient.Set(redisCtx, key, value, ttl).Err()
}

// GetToken fetches a value; missing or expired keys return an error
func GetToken(key string) (string, error) {
	if redisClient == nil {
		return "", ErrRedisDisabled
	}
	return redisClient.Get(redisCtx, key).Result()
}

// DeleteToken removes a key
func DeleteToken(key string) error {
	if redisClient == nil {
		return ErrRedisDisabled
	}
	return redisClient.Del(redisCtx, key).Err()
}
