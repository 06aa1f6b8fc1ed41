package metric

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

func databaseEmptyRead(db bun.IDB, tickerInterval time.Duration, gracefulShutdownCh <-chan struct{}) {
	databaseEmptyRead := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "checkin_database_empty_read_microsec",
		Help: "The latency of an empty database read in microseconds",
	})
	if err := prometheus.Register(databaseEmptyRead); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			slog.Error("can't register checkin_database_empty_read_microsec metric", "error", err)
			return
		}
		// a previous Init already owns the name; keep feeding that one
		databaseEmptyRead = are.ExistingCollector.(prometheus.Gauge)
	}
	slog.Debug("checkin_database_empty_read_microsec metric registered")
	databaseEmptyRead.Set(0)

	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				switch prometheus.Unregister(databaseEmptyRead) {
				case true:
					slog.Debug("checkin_database_empty_read_microsec metric unregistered")
				case false:
					slog.Warn("checkin_database_empty_read_microsec metric not registered")
				}
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), tickerInterval)
				latency, err := database(ctx, db)
				cancel()
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// Init starts the periodic collectors. They stop and unregister once
// gracefulShutdownCh is closed.
func Init(db bun.IDB, interval time.Duration, gracefulShutdownCh <-chan struct{}) {
	databaseEmptyRead(db, interval, gracefulShutdownCh)
}
