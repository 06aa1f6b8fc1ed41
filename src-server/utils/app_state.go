package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"checkin/src-server/checkin"
	"checkin/src-server/model"
	"checkin/src-server/session"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	// nil unless REDIS_URL is set
	Redis *redis.Client

	Engine   *checkin.Engine
	Sessions session.Store
	Validate *validator.Validate

	// receives SIGINT/SIGTERM, or a synthetic signal when the HTTP server dies
	AppCloseSignalChan chan os.Signal

	gracefulShutdownMu    sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState() (*AppState, error) {
	cfg, err := NewConfig()
	if err != nil {
		return nil, err
	}
	return NewAppStateWithConfig(cfg)
}

func NewAppStateWithConfig(cfg *Config) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		AppCloseSignalChan: make(chan os.Signal, 1),
		Validate:           validator.New(validator.WithRequiredStructEnabled()),
	}

	// database
	var err error
	as.RawDB, as.BunDB, err = OpenDatabase(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	as.Engine = checkin.NewEngine(as.BunDB, checkin.NewCodeGenerator(), as.Validate)

	// sessions
	switch cfg.GetRedisURL() {
	case "":
		as.Sessions = session.NewBunStore(as.BunDB, cfg.GetSessionTTL())
		slog.Debug("sessions stored in the database")
	default:
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			as.BunDB.Close()
			return nil, fmt.Errorf("NewAppState: can't parse REDIS_URL: %w", err)
		}
		as.Redis = redis.NewClient(opt)
		if err := as.Redis.Ping(context.Background()).Err(); err != nil {
			as.Redis.Close()
			as.BunDB.Close()
			return nil, fmt.Errorf("NewAppState: can't reach redis: %w", err)
		}
		as.Sessions = session.NewRedisStore(as.Redis, cfg.GetSessionTTL())
		slog.Debug("sessions stored in redis")
	}

	return as, nil
}

// BootstrapAdmin upserts the ADMIN_EMAIL account when configured.
func (as *AppState) BootstrapAdmin(ctx context.Context) error {
	if as.Config.GetAdminEmail() == "" {
		return nil
	}
	admin := &model.User{
		Email:    as.Config.GetAdminEmail(),
		Password: as.Config.GetAdminPassword(),
		IsAdmin:  true,
	}
	if err := admin.Upsert(ctx, as.BunDB); err != nil {
		return fmt.Errorf("(*AppState).BootstrapAdmin: %w", err)
	}
	slog.Info("admin account ready", "email", admin.Email)
	return nil
}

// CreateGracefulShutdownChan hands out a channel that is closed by
// GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownMu.Unlock()

	if as.Redis != nil {
		if err := as.Redis.Close(); err != nil {
			slog.Warn("can't close redis client", "error", err)
		}
	}
	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}
