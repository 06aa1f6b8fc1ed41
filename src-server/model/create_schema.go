package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

func CreateSchema(ctx context.Context, db *bun.DB) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*Status)(nil),
			(*User)(nil),
			(*Attendee)(nil),
			(*Session)(nil),
		} {
			if _, err := tx.
				NewCreateTable().
				Model(model).
				IfNotExists().
				WithForeignKeys().
				Exec(ctx); err != nil {
				return err
			}
		}
		return SeedStatuses(ctx, tx)
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}
