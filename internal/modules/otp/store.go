package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoCode is returned when no live code exists for a subject.
var ErrNoCode = errors.New("no active code")

// CodeStore keeps hashed codes, attempt counters and verification marks.
// Every entry expires on its own.
type CodeStore interface {
	// SaveCode stores a code hash and resets the attempt counter.
	SaveCode(ctx context.Context, subject, hash string, ttl time.Duration) error
	GetCode(ctx context.Context, subject string) (string, error)
	IncrAttempts(ctx context.Context, subject string, ttl time.Duration) (int64, error)
	DeleteCode(ctx context.Context, subject string) error
	MarkVerified(ctx context.Context, subject string, ttl time.Duration) error
	IsVerified(ctx context.Context, subject string) (bool, error)
}

// RedisStore implements CodeStore on Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis code store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codeKey(subject string) string     { return "otp:code:" + subject }
func attemptsKey(subject string) string { return "otp:attempts:" + subject }
func verifiedKey(subject string) string { return "otp:verified:" + subject }

func (s *RedisStore) SaveCode(ctx context.Context, subject, hash string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, codeKey(subject), hash, ttl)
		pipe.Del(ctx, attemptsKey(subject))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save code for %s: %w", subject, err)
	}
	return nil
}

func (s *RedisStore) GetCode(ctx context.Context, subject string) (string, error) {
	hash, err := s.client.Get(ctx, codeKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCode
	}
	if err != nil {
		return "", fmt.Errorf("failed to get code for %s: %w", subject, err)
	}
	return hash, nil
}

func (s *RedisStore) IncrAttempts(ctx context.Context, subject string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(subject))
		pipe.Expire(ctx, attemptsKey(subject), ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count attempt for %s: %w", subject, err)
	}
	return incr.Val(), nil
}

func (s *RedisStore) DeleteCode(ctx context.Context, subject string) error {
	if err := s.client.Del(ctx, codeKey(subject), attemptsKey(subject)).Err(); err != nil {
		return fmt.Errorf("failed to delete code for %s: %w", subject, err)
	}
	return nil
}

func (s *RedisStore) MarkVerified(ctx context.Context, subject string, ttl time.Duration) error {
	if err := s.client.Set(ctx, verifiedKey(subject), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark %s verified: %w", subject, err)
	}
	return nil
}

func (s *RedisStore) IsVerified(ctx context.Context, subject string) (bool, error) {
	n, err := s.client.Exists(ctx, verifiedKey(subject)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check verification for %s: %w", subject, err)
	}
	return n > 0, nil
}
