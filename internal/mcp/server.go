package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/capacity"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, actorID string, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context, actorID string) ([]project.Summary, error)
	ListMembers(ctx context.Context, actorID, projectID string) ([]project.Member, error)
	AddMember(ctx context.Context, actorID, projectID, email string) (*project.AddMemberResult, error)
	RemoveMember(ctx context.Context, actorID, projectID, personID string) error
	AddMemberToOwnedProjects(ctx context.Context, actorID, email string) (*project.AddMemberResult, error)
	RemoveMemberFromOwnedProjects(ctx context.Context, actorID, personID string) (int, error)
}

// TaskService defines task operations needed by MCP.
type TaskService interface {
	Create(ctx context.Context, actorID string, req task.CreateRequest) (*task.Task, error)
	ListByProject(ctx context.Context, actorID, projectID string) ([]task.Task, error)
	ListByAssignee(ctx context.Context, actorID, personID string) ([]task.Task, error)
	UpdateProgress(ctx context.Context, actorID string, req task.ProgressRequest) (*task.Task, error)
}

// ChartService defines chart reads needed by MCP.
type ChartService interface {
	ProjectTimeline(ctx context.Context, actorID string, ref timeline.Date, weeks int) (*capacity.ProjectTimeline, error)
	ProjectChart(ctx context.Context, actorID, projectID string, ref timeline.Date, weeks int) (*capacity.ProjectChart, error)
	TeamCapacity(ctx context.Context, actorID string, ref timeline.Date, weeks int) (*capacity.TeamCapacity, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, actorID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Tasks    TaskService
	Charts   ChartService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services    Services
	Resolver    ActorResolver
	AuthEnabled bool
	// DefaultActor is the person every call acts as when auth is off.
	DefaultActor  string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "gantry",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Middleware added later wraps earlier middleware, so auth runs before
	// traffic logging and the log lines carry the actor.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))
	// Stdio is local and single-user, so it always acts as the default person.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultActor))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}

	registerTools(server, NewHandler(cfg.Services), logger)

	return server
}
