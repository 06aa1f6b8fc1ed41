package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Email    string `bun:"email,notnull,unique"` // required
	Password string `bun:"password,notnull"`     // required, stored as given
	IsAdmin  bool   `bun:"is_admin,notnull"`
}

func (u *User) Upsert(ctx context.Context, db bun.IDB) error {
	if u.Email == "" {
		return fmt.Errorf("(*User).Upsert: email is empty")
	}
	if u.Password == "" {
		return fmt.Errorf("(*User).Upsert: password is empty")
	}

	if _, err := db.
		NewInsert().
		Model(u).
		On("CONFLICT (email) DO UPDATE").
		Set("password = EXCLUDED.password").
		Set("is_admin = EXCLUDED.is_admin").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*User).Upsert: %w", err)
	}

	return nil
}
