package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sessions:"

type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func key(subject string) string { return keyPrefix + subject }

func (s *RedisStore) Add(ctx context.Context, subject, token string, ttl time.Duration) error {
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key(subject), token)
		pipe.Expire(ctx, key(subject), ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Remove(ctx context.Context, subject, token string) (bool, error) {
	n, err := s.Client.SRem(ctx, key(subject), token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Contains(ctx context.Context, subject, token string) (bool, error) {
	return s.Client.SIsMember(ctx, key(subject), token).Result()
}

func (s *RedisStore) Count(ctx context.Context, subject string) (int64, error) {
	return s.Client.SCard(ctx, key(subject)).Result()
}

func (s *RedisStore) Clear(ctx context.Context, subject string) error {
	return s.Client.Del(ctx, key(subject)).Err()
}
