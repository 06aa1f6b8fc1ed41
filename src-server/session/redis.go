package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"checkin/src-server/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "checkin:session:"

// RedisStore lets the key TTL enforce the inactivity window; every Get
// pushes the expiry back out.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	Now func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, Now: time.Now}
}

func (s *RedisStore) Create(ctx context.Context, userID int64) (*model.Session, error) {
	now := s.Now().UTC().Unix()
	sessionModel := &model.Session{
		Secret:     uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	key := redisKeyPrefix + sessionModel.Secret
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", sessionModel.UserID,
			"created_at", sessionModel.CreatedAt,
			"last_seen_at", sessionModel.LastSeenAt,
		)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("(*RedisStore).Create: %w", err)
	}
	return sessionModel, nil
}

func (s *RedisStore) Get(ctx context.Context, secret string) (*model.Session, error) {
	key := redisKeyPrefix + secret

	// refresh first so the hash can't expire between the reads below
	alive, err := s.client.Expire(ctx, key, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("(*RedisStore).Get: %w", err)
	}
	if !alive {
		return nil, ErrNotFound
	}

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("(*RedisStore).Get: %w", err)
	}
	sessionModel := &model.Session{Secret: secret}
	if sessionModel.UserID, err = strconv.ParseInt(fields["user_id"], 10, 64); err != nil {
		return nil, fmt.Errorf("(*RedisStore).Get: bad user_id: %w", err)
	}
	if sessionModel.CreatedAt, err = strconv.ParseInt(fields["created_at"], 10, 64); err != nil {
		return nil, fmt.Errorf("(*RedisStore).Get: bad created_at: %w", err)
	}

	sessionModel.LastSeenAt = s.Now().UTC().Unix()
	if err := s.client.HSet(ctx, key, "last_seen_at", sessionModel.LastSeenAt).Err(); err != nil {
		return nil, fmt.Errorf("(*RedisStore).Get: %w", err)
	}
	return sessionModel, nil
}

func (s *RedisStore) Delete(ctx context.Context, secret string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+secret).Err(); err != nil {
		return fmt.Errorf("(*RedisStore).Delete: %w", err)
	}
	return nil
}
