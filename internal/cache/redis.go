package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "sweets"
	generationKey = keyPrefix + ":generation"
)

// Redis хранит результаты в redis. Ключи содержат номер поколения,
// InvalidateAll увеличивает его, старые ключи дотухают по TTL.
// Set с устаревшим поколением пишет в ключ, который уже никто не читает.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*Redis)(nil)

type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// ConnectRedis открывает клиент и проверяет соединение.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Generation(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func entryKey(generation int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, generation, key)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := r.Generation(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache generation: %w", err)
	}
	data, err := r.client.Get(ctx, entryKey(gen, key)).Bytes()
	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func (r *Redis) Set(ctx context.Context, generation int64, key string, value []byte) error {
	return r.client.Set(ctx, entryKey(generation, key), value, r.ttl).Err()
}

func (r *Redis) InvalidateAll(ctx context.Context) error {
	return r.client.Incr(ctx, generationKey).Err()
}
