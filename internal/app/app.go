// Package app wires repositories and domain services over one database.
package app

import (
	"log/slog"

	"github.com/rpggio/gantry/internal/cache"
	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/capacity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/mcp"
	"github.com/rpggio/gantry/internal/store"
	"github.com/rpggio/gantry/internal/transport"
)

// Options configures New.
type Options struct {
	Chart capacity.Options
	// Cache is optional. When set it is invalidated after every mutation.
	Cache  *cache.ChartCache
	Logger *slog.Logger
}

// App holds the domain services.
type App struct {
	DB       *store.DB
	Keys     *store.APIKeyRepository
	Activity *activity.Service
	People   *person.Service
	Projects *project.Service
	Tasks    *task.Service
	Charts   *capacity.Service
}

// New builds every service over db.
func New(db *store.DB, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	activitySvc := activity.NewService(store.NewActivityRepository(db), logger)
	personSvc := person.NewService(store.NewPersonRepository(db), activitySvc, logger)
	projectSvc := project.NewService(store.NewProjectRepository(db), personSvc, activitySvc, logger)
	taskSvc := task.NewService(store.NewTaskRepository(db), projectSvc, activitySvc, logger)

	var chartCache capacity.Cache
	if opts.Cache != nil {
		chartCache = opts.Cache
		activitySvc.Subscribe(opts.Cache.Listener(logger))
	}
	chartSvc := capacity.NewService(projectSvc, taskSvc, opts.Chart, chartCache, logger)

	return &App{
		DB:       db,
		Keys:     store.NewAPIKeyRepository(db),
		Activity: activitySvc,
		People:   personSvc,
		Projects: projectSvc,
		Tasks:    taskSvc,
		Charts:   chartSvc,
	}
}

// HTTPServices returns the services the REST API needs.
func (a *App) HTTPServices() transport.Services {
	return transport.Services{
		People:   a.People,
		Keys:     a.Keys,
		Projects: a.Projects,
		Tasks:    a.Tasks,
		Charts:   a.Charts,
		Activity: a.Activity,
	}
}

// MCPServices returns the services the MCP tools need.
func (a *App) MCPServices() mcp.Services {
	return mcp.Services{
		Projects: a.Projects,
		Tasks:    a.Tasks,
		Charts:   a.Charts,
		Activity: a.Activity,
	}
}
