package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

type StatusID int64

const (
	StatusNotPassed StatusID = 1
	StatusPassed    StatusID = 2
)

// Fixed reference data, seeded by CreateSchema and never mutated afterwards.
type Status struct {
	bun.BaseModel `bun:"table:statuses,alias:s"`

	ID    StatusID `bun:"id,pk"`                // required
	Key   string   `bun:"key,notnull,unique"`   // required
	Label string   `bun:"label,notnull,unique"` // required
}

// Statuses lists every variant in transition order.
func Statuses() []Status {
	return []Status{
		{ID: StatusNotPassed, Key: "not_passed", Label: "Not passed"},
		{ID: StatusPassed, Key: "passed", Label: "Passed"},
	}
}

// ParseStatus resolves a key, label or variant name ("not_passed", "Not passed",
// "NotPassed") to its status. Matching ignores case, spaces, '_' and '-'.
func ParseStatus(name string) (Status, bool) {
	want := foldStatusName(name)
	if want == "" {
		return Status{}, false
	}
	for _, s := range Statuses() {
		if foldStatusName(s.Key) == want || foldStatusName(s.Label) == want {
			return s, true
		}
	}
	return Status{}, false
}

func foldStatusName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// SeedStatuses inserts the reference rows, leaving existing ones untouched.
func SeedStatuses(ctx context.Context, db bun.IDB) error {
	statuses := Statuses()
	if _, err := db.NewInsert().
		Model(&statuses).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("SeedStatuses: %w", err)
	}
	return nil
}
