package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"checkin/src-server/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ Store = (*BunStore)(nil)

type BunStore struct {
	db  bun.IDB
	ttl time.Duration

	Now func() time.Time
}

func NewBunStore(db bun.IDB, ttl time.Duration) *BunStore {
	return &BunStore{db: db, ttl: ttl, Now: time.Now}
}

func (s *BunStore) Create(ctx context.Context, userID int64) (*model.Session, error) {
	now := s.Now().UTC().Unix()

	// idle sessions are swept whenever someone logs in
	if _, err := s.db.NewDelete().
		Model((*model.Session)(nil)).
		Where("last_seen_at < ?", now-int64(s.ttl.Seconds())).
		Exec(ctx); err != nil {
		slog.Warn("can't sweep expired sessions", "error", err)
	}

	sessionModel := &model.Session{
		Secret:     uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if _, err := s.db.NewInsert().
		Model(sessionModel).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("(*BunStore).Create: %w", err)
	}
	return sessionModel, nil
}

func (s *BunStore) Get(ctx context.Context, secret string) (*model.Session, error) {
	sessionModel := new(model.Session)
	if err := s.db.NewSelect().
		Model(sessionModel).
		Where("secret = ?", secret).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("(*BunStore).Get: %w", err)
	}

	now := s.Now()
	if sessionModel.Expired(now, s.ttl) {
		if err := s.Delete(ctx, secret); err != nil {
			slog.Warn("can't delete expired session", "error", err)
		}
		return nil, ErrExpired
	}

	sessionModel.LastSeenAt = now.UTC().Unix()
	if _, err := s.db.NewUpdate().
		Model((*model.Session)(nil)).
		Set("last_seen_at = ?", sessionModel.LastSeenAt).
		Where("secret = ?", secret).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("(*BunStore).Get: %w", err)
	}
	return sessionModel, nil
}

func (s *BunStore) Delete(ctx context.Context, secret string) error {
	if _, err := s.db.NewDelete().
		Model((*model.Session)(nil)).
		Where("secret = ?", secret).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*BunStore).Delete: %w", err)
	}
	return nil
}
