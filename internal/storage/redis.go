package storage

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps blobs as plain string values under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client not configured")
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) redisKey(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return s.prefix + cleaned, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := s.redisKey(key)
	if err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	k, err := s.redisKey(key)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, k, data, 0).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	k, err := s.redisKey(key)
	if err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, k).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	k, err := s.redisKey(key)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, k).Err()
}

var _ Store = (*RedisStore)(nil)
