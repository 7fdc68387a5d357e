// Пакет cache предоставляет кэш ответов удалённого API поверх Redis
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss возвращается, когда ключа нет в кэше
var ErrCacheMiss = errors.New("cache miss")

// scanBatch: сколько ключей запрашивается за один SCAN
const scanBatch = 100

// RedisClient хранит ответы под ключами с общим префиксом (namespace),
// чтобы инвалидировать целые группы ключей, например все страницы списка
type RedisClient struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient создаёт кэш с заданными опциями подключения и префиксом ключей
func NewRedisClient(opts *redis.Options, namespace string) *RedisClient {
	return &RedisClient{client: redis.NewClient(opts), namespace: namespace}
}

func (r *RedisClient) key(k string) string {
	if r.namespace == "" {
		return k
	}
	return r.namespace + ":" + k
}

// Set сохраняет value под ключом key на время ttl
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

// Get возвращает значение или ErrCacheMiss, если ключа нет
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Invalidate удаляет один ключ
func (r *RedisClient) Invalidate(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// InvalidatePrefix удаляет все ключи, начинающиеся с prefix.
// Ключи перебираются через SCAN, KEYS не используется.
func (r *RedisClient) InvalidatePrefix(ctx context.Context, prefix string) error {
	match := r.key(prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close закрывает соединение с Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}
