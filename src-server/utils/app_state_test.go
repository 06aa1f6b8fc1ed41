package utils_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"checkin/src-server/checkin"
	"checkin/src-server/model"
	"checkin/src-server/session"
	"checkin/src-server/utils"

	"github.com/alicebob/miniredis/v2"
)

func TestNewAppState(t *testing.T) {
	ctx := context.Background()

	t.Run("database sessions and bootstrap admin", func(t *testing.T) {
		unsetConfig(t)
		t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "test.db"))
		t.Setenv("ADMIN_EMAIL", "admin@example.com")
		t.Setenv("ADMIN_PASSWORD", "secret")

		as, err := utils.NewAppState()
		if err != nil {
			t.Fatal(err)
		}

		if _, ok := as.Sessions.(*session.BunStore); !ok {
			t.Errorf("expected the database session store, got %T", as.Sessions)
		}
		if as.Redis != nil {
			t.Error("redis client opened without REDIS_URL")
		}

		if err := model.CreateSchema(ctx, as.BunDB); err != nil {
			t.Fatal(err)
		}
		if err := as.BootstrapAdmin(ctx); err != nil {
			t.Fatal(err)
		}
		user, err := as.Engine.Authenticate(ctx, "admin@example.com", "secret")
		if err != nil {
			t.Fatal(err)
		}
		if !user.IsAdmin {
			t.Error("bootstrap account is not an admin")
		}

		shutdown := as.CreateGracefulShutdownChan()
		as.GracefulShutdown()
		select {
		case <-shutdown:
		default:
			t.Error("shutdown channel still open")
		}
	})

	t.Run("redis sessions", func(t *testing.T) {
		mr := miniredis.RunT(t)
		unsetConfig(t)
		t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "test.db"))
		t.Setenv("REDIS_URL", "redis://"+mr.Addr())

		as, err := utils.NewAppState()
		if err != nil {
			t.Fatal(err)
		}
		defer as.GracefulShutdown()
		if _, ok := as.Sessions.(*session.RedisStore); !ok {
			t.Errorf("expected the redis session store, got %T", as.Sessions)
		}
	})

	t.Run("unreachable redis", func(t *testing.T) {
		unsetConfig(t)
		t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "test.db"))
		t.Setenv("REDIS_URL", "redis://127.0.0.1:1")
		if _, err := utils.NewAppState(); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("engine is wired", func(t *testing.T) {
		unsetConfig(t)
		t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "test.db"))
		as, err := utils.NewAppState()
		if err != nil {
			t.Fatal(err)
		}
		defer as.GracefulShutdown()
		if err := model.CreateSchema(ctx, as.BunDB); err != nil {
			t.Fatal(err)
		}
		if _, err := as.Engine.Lookup(ctx, "ABCD1234"); !errors.Is(err, checkin.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}
