package model

import (
	"time"

	"github.com/uptrace/bun"
)

type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	Secret     string `bun:"secret,pk"`            // required
	UserID     int64  `bun:"user_id,notnull"`      // required
	CreatedAt  int64  `bun:"created_at,notnull"`   // required
	LastSeenAt int64  `bun:"last_seen_at,notnull"` // required

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// Expired reports whether the session has been idle for longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return time.Unix(s.LastSeenAt, 0).UTC().Add(ttl).Before(now.UTC())
}
