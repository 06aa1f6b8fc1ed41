package checkin

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"checkin/src-server/model"

	"github.com/lib/pq"
	"github.com/uptrace/bun"
)

func findByCode(ctx context.Context, db bun.IDB, code string) (*model.Attendee, error) {
	attendee := new(model.Attendee)
	if err := db.NewSelect().
		Model(attendee).
		Relation("Status").
		Where("a.code = ?", code).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, storeError("findByCode", err)
	}
	return attendee, nil
}

func findByID(ctx context.Context, db bun.IDB, id int64) (*model.Attendee, error) {
	attendee := new(model.Attendee)
	if err := db.NewSelect().
		Model(attendee).
		Relation("Status").
		Where("a.id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendeeNotFound
		}
		return nil, storeError("findByID", err)
	}
	return attendee, nil
}

func codeExists(db bun.IDB) ExistsFunc {
	return func(ctx context.Context, code string) (bool, error) {
		return db.NewSelect().
			Model((*model.Attendee)(nil)).
			Where("code = ?", code).
			Exists(ctx)
	}
}

// escapeLike makes s match literally inside a LIKE pattern with '!' as the
// escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
