package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the pair under a single Redis key. Several processes on one
// host can share a login by pointing at the same prefix and profile.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	profile string
	ttl     time.Duration
}

// NewRedisStore creates a [RedisStore]. prefix namespaces keys; profile selects
// which stored login to use; ttl bounds key lifetime (0 keeps the key until
// cleared).
//
//	Performance: Load is 1 GET, Save is 1 SET, Clear is 1 DEL.
func NewRedisStore(client redis.UniversalClient, prefix, profile string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "gb"
	}
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		redis:   client,
		prefix:  prefix,
		profile: profile,
		ttl:     ttl,
	}
}

func (s *RedisStore) key() string {
	return s.prefix + ":tok:" + s.profile
}

// Load implements [TokenStore].
func (s *RedisStore) Load(ctx context.Context) (TokenPair, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return TokenPair{}, ErrNoTokens
		}
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pair, err := Decode(data)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrCorruptTokens, err)
	}

	// Older blobs are rewritten in the current schema so the next reader skips the
	// migration path.
	if len(data) > 0 && data[0] != CurrentSchemaVersion {
		if upgraded, encErr := Encode(pair); encErr == nil {
			_ = s.redis.Set(ctx, s.key(), upgraded, redis.KeepTTL).Err()
		}
	}

	return *pair, nil
}

// Save implements [TokenStore].
func (s *RedisStore) Save(ctx context.Context, pair TokenPair) error {
	if pair.Empty() {
		return errors.New("empty access token")
	}
	data, err := Encode(&pair)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear implements [TokenStore].
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
