package metric

import (
	"context"
	"time"

	"checkin/src-server/model"

	"github.com/uptrace/bun"
)

var _ bun.QueryHook = (*QueryHook)(nil)

// QueryHook records every bun query into the query duration histogram.
type QueryHook struct{}

func NewQueryHook() *QueryHook {
	return &QueryHook{}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	databaseQueryDuration.
		WithLabelValues(event.Operation()).
		Observe(time.Since(event.StartTime).Seconds())
}

func database(ctx context.Context, db bun.IDB) (time.Duration, error) {
	start := time.Now()
	if _, err := db.NewSelect().
		Model((*model.Status)(nil)).
		Where("s.id = ?", 0).
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
