package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkin/src-server/model"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
)

// Engine owns the attendee status machine: NotPassed -> Passed through the
// guarded check-in, plus the unconditional admin override.
type Engine struct {
	db       *bun.DB
	codes    *CodeGenerator
	validate *validator.Validate

	// Now stamps new rows; overridable in tests.
	Now func() time.Time
}

type registerInput struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
}

func NewEngine(db *bun.DB, codes *CodeGenerator, validate *validator.Validate) *Engine {
	if codes == nil {
		codes = NewCodeGenerator()
	}
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Engine{
		db:       db,
		codes:    codes,
		validate: validate,
		Now:      time.Now,
	}
}

func (e *Engine) Lookup(ctx context.Context, code string) (*AttendeeView, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("(*Engine).Lookup: code is required: %w", ErrValidation)
	}

	attendee, err := findByCode(ctx, e.db, code)
	if err != nil {
		return nil, fmt.Errorf("(*Engine).Lookup: %w", err)
	}
	view := newAttendeeView(attendee)
	return &view, nil
}

// MarkPassed moves the attendee behind code from NotPassed to Passed. The
// current-state guard is part of the UPDATE itself, so of several concurrent
// calls exactly one reports Changed.
func (e *Engine) MarkPassed(ctx context.Context, code string) (*Transition, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("(*Engine).MarkPassed: code is required: %w", ErrValidation)
	}

	var transition Transition
	if err := e.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*model.Attendee)(nil)).
			Set("status_id = ?", model.StatusPassed).
			Where("code = ?", code).
			Where("status_id = ?", model.StatusNotPassed).
			Exec(ctx)
		if err != nil {
			return storeError("update status", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return storeError("rows affected", err)
		}

		attendee, err := findByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		transition = Transition{
			Attendee: newAttendeeView(attendee),
			Changed:  affected == 1,
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("(*Engine).MarkPassed: %w", err)
	}

	return &transition, nil
}

// Search matches query as a case-insensitive substring of first or last name.
// A blank query yields no rows rather than the full list.
func (e *Engine) Search(ctx context.Context, query string) ([]AttendeeRecord, error) {
	records := make([]AttendeeRecord, 0)
	query = strings.TrimSpace(query)
	if query == "" {
		return records, nil
	}

	pattern := "%" + escapeLike(model.FoldName(query)) + "%"
	attendees := make([]model.Attendee, 0)
	if err := e.db.NewSelect().
		Model(&attendees).
		Relation("Status").
		Where("a.first_name_folded LIKE ? ESCAPE '!' OR a.last_name_folded LIKE ? ESCAPE '!'", pattern, pattern).
		OrderExpr("a.first_name ASC, a.last_name ASC, a.id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*Engine).Search: %w", storeError("select attendees", err))
	}

	for i := range attendees {
		records = append(records, newAttendeeRecord(&attendees[i]))
	}
	return records, nil
}

// SetStatus overwrites the attendee's status regardless of its current value.
func (e *Engine) SetStatus(ctx context.Context, attendeeID int64, statusName string) (*AttendeeRecord, error) {
	if strings.TrimSpace(statusName) == "" {
		return nil, fmt.Errorf("(*Engine).SetStatus: status is required: %w", ErrValidation)
	}

	var record AttendeeRecord
	if err := e.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := findByID(ctx, tx, attendeeID); err != nil {
			return err
		}

		parsed, ok := model.ParseStatus(statusName)
		if !ok {
			return fmt.Errorf("%q: %w", statusName, ErrStatusNotFound)
		}
		status := new(model.Status)
		if err := tx.NewSelect().
			Model(status).
			Where("s.id = ?", parsed.ID).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%q: %w", statusName, ErrStatusNotFound)
			}
			return storeError("select status", err)
		}

		if _, err := tx.NewUpdate().
			Model((*model.Attendee)(nil)).
			Set("status_id = ?", status.ID).
			Where("id = ?", attendeeID).
			Exec(ctx); err != nil {
			return storeError("update status", err)
		}

		attendee, err := findByID(ctx, tx, attendeeID)
		if err != nil {
			return err
		}
		record = newAttendeeRecord(attendee)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("(*Engine).SetStatus: %w", err)
	}

	return &record, nil
}

// Register inserts a new NotPassed attendee with a freshly generated code.
func (e *Engine) Register(ctx context.Context, firstName, lastName string) (*AttendeeRecord, error) {
	input := registerInput{
		FirstName: CleanupName(firstName),
		LastName:  CleanupName(lastName),
	}
	if err := e.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("(*Engine).Register: %w: %w", ErrValidation, err)
	}

	attendee := &model.Attendee{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		StatusID:  model.StatusNotPassed,
		CreatedAt: e.Now().UTC().Unix(),
	}
	if err := e.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		code, err := e.codes.Generate(ctx, codeExists(tx))
		if err != nil {
			return storeError("generate code", err)
		}
		attendee.Code = code

		if _, err := tx.NewInsert().
			Model(attendee).
			Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert attendee: %w: %w", ErrIntegrity, err)
			}
			return storeError("insert attendee", err)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("(*Engine).Register: %w", err)
	}

	record := newAttendeeRecord(attendee)
	return &record, nil
}
