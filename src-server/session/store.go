// Package session keeps the authenticated identity behind the session-secret
// cookie. A session lives until it has been idle for longer than its TTL.
package session

import (
	"context"
	"errors"

	"checkin/src-server/model"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Store is backed either by the relational store or by Redis.
type Store interface {
	// Create opens a session for userID and returns it with a fresh secret.
	Create(ctx context.Context, userID int64) (*model.Session, error)
	// Get resolves secret and slides its inactivity window.
	Get(ctx context.Context, secret string) (*model.Session, error)
	// Delete removes the session; deleting an unknown secret is not an error.
	Delete(ctx context.Context, secret string) error
}
