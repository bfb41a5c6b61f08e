package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/gantry/internal/app"
	"github.com/rpggio/gantry/internal/cache"
	"github.com/rpggio/gantry/internal/config"
	"github.com/rpggio/gantry/internal/domain/capacity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/store"
)

// openDB opens and migrates the configured database.
func openDB(ctx context.Context, cfg config.Config, logger *slog.Logger) (*store.DB, error) {
	dialect, err := store.ParseDialect(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	if dialect == store.DialectSQLite {
		if err := ensureDir(cfg.DB.Path); err != nil {
			return nil, fmt.Errorf("failed to prepare database path: %w", err)
		}
	}

	db, err := store.Open(dialect, cfg.DB.DataSource())
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openApp opens the database and the optional chart cache and wires the
// services. The returned function closes both.
func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.App, func(), error) {
	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := app.Options{
		Chart:  capacity.Options{Weeks: cfg.Chart.Weeks, Allocation: cfg.Chart.TaskAllocation},
		Logger: logger,
	}
	closeFn := func() { db.Close() }

	if cfg.Cache.Enabled() {
		rdb, err := cache.Connect(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			// Charts still work without the cache, only slower.
			logger.Warn("chart cache disabled", "error", err)
		} else {
			opts.Cache = cache.NewChartCache(rdb, cfg.Cache.TTL.Duration())
			closeFn = func() {
				rdb.Close()
				db.Close()
			}
			logger.Info("chart cache enabled", "addr", cfg.Cache.Addr)
		}
	}

	return app.New(db, opts), closeFn, nil
}

// resolvePerson finds a person by email (when who contains "@") or ID.
func resolvePerson(ctx context.Context, people *person.Service, who string) (*person.Person, error) {
	who = strings.TrimSpace(who)
	if who == "" {
		return nil, errors.New("no person given: pass --as or set GANTRY_AUTH_DEV_PERSON_ID")
	}
	if strings.Contains(who, "@") {
		return people.GetByEmail(ctx, who)
	}
	return people.Get(ctx, who)
}
