// Package cli holds the state shared by every streakline command and the
// helpers they use to parse arguments and render output.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/streakline/internal/backup"
	"github.com/julianstephens/streakline/internal/cache"
	"github.com/julianstephens/streakline/internal/config"
	"github.com/julianstephens/streakline/internal/habits"
	"github.com/julianstephens/streakline/internal/keyring"
	"github.com/julianstephens/streakline/internal/lock"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/metrics"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/storage/postgres"
	"github.com/julianstephens/streakline/internal/storage/sqlite"
)

// KeyringDatabase as the configured database means "read the connection
// string from the OS keyring".
const KeyringDatabase = "keyring"

type Context struct {
	Config     config.Config
	ConfigPath string
	UserID     string
	Store      storage.Provider
	Service    *habits.Service
	Metrics    *metrics.Metrics
	Out        io.Writer
	// Ctx is cancelled on interrupt. Nil means context.Background.
	Ctx context.Context

	closers []func() error
}

// OpenStore picks the storage backend for database. Connection strings in
// the config file must not embed a password; one read from the keyring may.
func OpenStore(database string) (storage.Provider, error) {
	if database == KeyringDatabase {
		connStr, err := keyring.Get(keyring.DatabaseKey)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no database connection string in keyring, use 'streakline keyring set' to store one")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if storage.IsPostgresDSN(database) {
		if valid, err := postgres.ValidateConnString(database); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL connection strings with embedded credentials are not allowed; " +
					"store it with 'streakline keyring set', use STREAKLINE_DB, or rely on .pgpass")
			}
			return nil, err
		}
		return postgres.New(database), nil
	}

	return sqlite.NewStore(config.ExpandHome(database)), nil
}

// Setup builds the habit service around store: the per-habit locker (Redis
// when redis_url is set), the streak cache and the metrics registry.
func Setup(ctx context.Context, cfg config.Config, store storage.Provider) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := &Context{
		Config:  cfg,
		UserID:  cfg.ResolveUser(),
		Store:   store,
		Metrics: metrics.New(),
		Out:     os.Stdout,
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.RedisURL != "" {
		rl, err := lock.NewRedisLocker(ctx, cfg.RedisURL, cfg.LockTTL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rl.Close)
		locker = rl
	}

	streaks, err := cache.NewStreakCache(cfg.CacheSize, c.Metrics)
	if err != nil {
		return nil, err
	}

	c.Service = habits.New(store, habits.Options{
		Locker:          locker,
		Cache:           streaks,
		Metrics:         c.Metrics,
		Location:        loc,
		MutationRetries: cfg.MutationRetries,
		TxTimeout:       cfg.TxTimeout,
	})
	return c, nil
}

// Close pushes metrics (if a Pushgateway is configured) and releases the
// store and lock connections.
func (c *Context) Close() error {
	if c.Config.MetricsPushURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Metrics.Push(pushCtx, c.Config.MetricsPushURL, "streakline"); err != nil {
			logger.Warn("Metrics push failed", "error", err)
		}
		cancel()
	}

	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// Backups returns the snapshot manager for a SQLite store.
func (c *Context) Backups() (*backup.Manager, error) {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite databases, use pg_dump for PostgreSQL")
	}
	return backup.NewManager(s.GetConfigPath()), nil
}

func (c *Context) RunContext() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}
