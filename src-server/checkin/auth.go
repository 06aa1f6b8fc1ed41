package checkin

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"checkin/src-server/model"
)

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Authenticate compares the password as stored; credentials are not hashed.
func (e *Engine) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	creds := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := e.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("(*Engine).Authenticate: %w: %w", ErrValidation, err)
	}

	user := new(model.User)
	if err := e.db.NewSelect().
		Model(user).
		Where("u.email = ?", creds.Email).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("(*Engine).Authenticate: %w", storeError("select user", err))
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(creds.Password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (e *Engine) UserByID(ctx context.Context, id int64) (*model.User, error) {
	user := new(model.User)
	if err := e.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("(*Engine).UserByID: %w", storeError("select user", err))
	}
	return user, nil
}
