// Package app wires configuration, storage, the course definition and the
// progress service into one handle for the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/progresstrack/internal/config"
	"github.com/abhisek/progresstrack/internal/course"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/progress"
	"github.com/abhisek/progresstrack/internal/stats"
	"github.com/abhisek/progresstrack/internal/store"
	"github.com/abhisek/progresstrack/internal/store/redisprop"
)

// App holds the opened dependencies. Close releases them.
type App struct {
	Config     config.Config
	Log        *logging.Logger
	Store      *store.Store
	Properties store.PropertyRepo
	Course     *course.Course
	Progress   *progress.Service

	closers []func() error
}

// Open builds an App from cfg. The course is loaded and validated up front
// so that bad definitions fail before anything is recorded.
func Open(ctx context.Context, cfg config.Config, log *logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c, err := course.LoadFile(cfg.CoursePath)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Store:   st,
		Course:  c,
		closers: []func() error{st.Close},
	}

	switch cfg.PropertyBackend {
	case config.BackendRedis:
		repo, err := redisprop.Dial(ctx, redisprop.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect property store: %w", err)
		}
		a.Properties = repo
		a.closers = append(a.closers, repo.Close)
	default:
		a.Properties = st.PropertyRepo()
	}

	tracker := progress.NewTracker(c, log)
	a.Progress = progress.NewService(tracker, progress.NewAdapter(a.Properties, log), log)

	log.Debug("app opened", "db", dbPath, "course", cfg.CoursePath, "backend", cfg.PropertyBackend)
	return a, nil
}

// Sources returns the repositories analytics read from.
func (a *App) Sources() stats.Sources {
	return stats.Sources{
		Properties: a.Properties,
		Students:   a.Store.StudentRepo(),
		Events:     a.Store.EventRepo(),
	}
}

// StatsOptions returns the analytics options from the config.
func (a *App) StatsOptions() stats.Options {
	return stats.Options{PageSize: a.Config.PageSize}
}

// Close releases every opened resource in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
