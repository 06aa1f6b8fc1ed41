package utils

import (
	"database/sql"
	"fmt"
	"strings"

	"checkin/src-server/metric"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// sqliteDSN turns foreign keys on for every connection the pool opens. The
// first parameter is read by modernc.org/sqlite, the second by mattn/go-sqlite3.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_foreign_keys=1"
}

// OpenDatabase opens PostgreSQL for postgres:// URLs and a SQLite file otherwise.
func OpenDatabase(url string) (*sql.DB, *bun.DB, error) {
	if isPostgresURL(url) {
		rawDB, err := sql.Open("postgres", url)
		if err != nil {
			return nil, nil, fmt.Errorf("OpenDatabase: %w", err)
		}
		if err := rawDB.Ping(); err != nil {
			rawDB.Close()
			return nil, nil, fmt.Errorf("OpenDatabase: %w", err)
		}
		rawDB.SetMaxIdleConns(8)
		return rawDB, newBunDB(rawDB, pgdialect.New()), nil
	}

	rawDB, err := sql.Open(sqliteshim.ShimName, sqliteDSN(url))
	if err != nil {
		return nil, nil, fmt.Errorf("OpenDatabase: %w", err)
	}
	// one writer at a time
	rawDB.SetMaxOpenConns(1)
	var foreignKeys int
	if err := rawDB.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("OpenDatabase: %w", err)
	}
	if foreignKeys != 1 {
		rawDB.Close()
		return nil, nil, fmt.Errorf("OpenDatabase: foreign keys are off for %q", url)
	}
	return rawDB, newBunDB(rawDB, sqlitedialect.New()), nil
}

func newBunDB(rawDB *sql.DB, dialect schema.Dialect) *bun.DB {
	bunDB := bun.NewDB(rawDB, dialect)
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	bunDB.AddQueryHook(metric.NewQueryHook())
	return bunDB
}
