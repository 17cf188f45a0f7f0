package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/clusterscope/evidence-core/internal/monitoring"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

// valkeyCache implements DedupCache against a single Valkey/Redis node.
// SET NX PX gives the atomic check-and-insert that keeps the dedup guarantee
// valid across multiple service replicas sharing one node.
type valkeyCache struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

func NewValkeyCache(addr string, db int, password string, defaultTTL time.Duration, log logger.Logger) (DedupCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &valkeyCache{
		client: client,
		logger: log,
		ttl:    defaultTTL,
	}, nil
}

func (v *valkeyCache) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = v.ttl
	}
	created, err := v.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		monitoring.RecordCacheOperation("check_and_set", "error")
		return false, err
	}
	if created {
		monitoring.RecordCacheOperation("check_and_set", "created")
	} else {
		monitoring.RecordCacheOperation("check_and_set", "exists")
	}
	return created, nil
}

func (v *valkeyCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := v.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		monitoring.RecordCacheOperation("get", "miss")
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		monitoring.RecordCacheOperation("get", "error")
		return nil, err
	}
	monitoring.RecordCacheOperation("get", "hit")
	return b, nil
}

func (v *valkeyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = v.ttl
	}
	if err := v.client.Set(ctx, key, value, ttl).Err(); err != nil {
		monitoring.RecordCacheOperation("set", "error")
		return err
	}
	monitoring.RecordCacheOperation("set", "success")
	return nil
}

func (v *valkeyCache) Delete(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, key).Err(); err != nil {
		monitoring.RecordCacheOperation("delete", "error")
		return err
	}
	monitoring.RecordCacheOperation("delete", "success")
	return nil
}

func (v *valkeyCache) HealthCheck(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}
