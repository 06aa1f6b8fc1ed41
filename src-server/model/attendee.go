package model

import (
	"context"

	"github.com/uptrace/bun"
	"golang.org/x/text/cases"
)

var _ bun.BeforeAppendModelHook = (*Attendee)(nil)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees,alias:a"`

	ID        int64    `bun:"id,pk,autoincrement"`
	FirstName string   `bun:"first_name,notnull"`  // required
	LastName  string   `bun:"last_name,notnull"`   // required
	Code      string   `bun:"code,notnull,unique"` // required, immutable once assigned
	StatusID  StatusID `bun:"status_id,notnull"`   // required
	CreatedAt int64    `bun:"created_at,notnull"`

	// case-folded copies of the names, matched by search on every backend
	FirstNameFolded string `bun:"first_name_folded,notnull"`
	LastNameFolded  string `bun:"last_name_folded,notnull"`

	Status *Status `bun:"rel:belongs-to,join:status_id=id"`
}

func (a *Attendee) FullName() string {
	return a.FirstName + " " + a.LastName
}

// StatusLabel falls back to the reference data when the relation was not loaded.
func (a *Attendee) StatusLabel() string {
	if a.Status != nil {
		return a.Status.Label
	}
	for _, s := range Statuses() {
		if s.ID == a.StatusID {
			return s.Label
		}
	}
	return ""
}

// FoldName is the Unicode case folding applied to stored names and to search
// queries alike.
func FoldName(s string) string {
	return cases.Fold().String(s)
}

// BeforeAppendModel keeps the folded names in step with the names on insert.
func (a *Attendee) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		a.FirstNameFolded = FoldName(a.FirstName)
		a.LastNameFolded = FoldName(a.LastName)
	}
	return nil
}
