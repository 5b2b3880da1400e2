package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/campusconnect-api/pkg/config"
)

const keyPrefix = "campusconnect"

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Key builds a tenant-scoped cache key: campusconnect:<school>:<part>:<part>...
// Empty parts are skipped.
func Key(schoolID string, parts ...string) string {
	segments := []string{keyPrefix, schoolID}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}

// Pattern returns the glob matching every key under the given prefix parts.
func Pattern(schoolID string, parts ...string) string {
	return Key(schoolID, parts...) + ":*"
}
