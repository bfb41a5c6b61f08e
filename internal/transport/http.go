package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/capacity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
)

// PersonService defines people operations needed by the REST API.
type PersonService interface {
	Register(ctx context.Context, req person.RegisterRequest) (*person.Person, error)
	Get(ctx context.Context, id string) (*person.Person, error)
	SearchTeammates(ctx context.Context, actorID, query string, limit int) ([]person.Person, error)
}

// KeyIssuer creates API keys.
type KeyIssuer interface {
	Create(ctx context.Context, personID, description string) (string, error)
}

// ProjectService defines project operations needed by the REST API.
type ProjectService interface {
	Create(ctx context.Context, actorID string, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, actorID, id string) (*project.Project, error)
	List(ctx context.Context, actorID string) ([]project.Summary, error)
	Update(ctx context.Context, actorID string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, actorID, id string) error
	ListMembers(ctx context.Context, actorID, projectID string) ([]project.Member, error)
	AddMember(ctx context.Context, actorID, projectID, email string) (*project.AddMemberResult, error)
	RemoveMember(ctx context.Context, actorID, projectID, personID string) error
	AddMemberToOwnedProjects(ctx context.Context, actorID, email string) (*project.AddMemberResult, error)
	RemoveMemberFromOwnedProjects(ctx context.Context, actorID, personID string) (int, error)
}

// TaskService defines task operations needed by the REST API.
type TaskService interface {
	Create(ctx context.Context, actorID string, req task.CreateRequest) (*task.Task, error)
	Get(ctx context.Context, actorID, id string) (*task.Task, error)
	ListByProject(ctx context.Context, actorID, projectID string) ([]task.Task, error)
	ListByAssignee(ctx context.Context, actorID, personID string) ([]task.Task, error)
	Update(ctx context.Context, actorID string, req task.UpdateRequest) (*task.Task, error)
	UpdateProgress(ctx context.Context, actorID string, req task.ProgressRequest) (*task.Task, error)
	Delete(ctx context.Context, actorID, id string) error
}

// ChartService defines chart reads needed by the REST API.
type ChartService interface {
	ProjectTimeline(ctx context.Context, actorID string, ref timeline.Date, weeks int) (*capacity.ProjectTimeline, error)
	ProjectChart(ctx context.Context, actorID, projectID string, ref timeline.Date, weeks int) (*capacity.ProjectChart, error)
	TeamCapacity(ctx context.Context, actorID string, ref timeline.Date, weeks int) (*capacity.TeamCapacity, error)
}

// ActivityService defines activity reads needed by the REST API.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, actorID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by the REST API.
type Services struct {
	People   PersonService
	Keys     KeyIssuer
	Projects ProjectService
	Tasks    TaskService
	Charts   ChartService
	Activity ActivityService
}

// Config configures the HTTP server.
type Config struct {
	Services Services
	Resolver ActorResolver
	// AuthEnabled false makes every request act as DefaultActor.
	AuthEnabled  bool
	DefaultActor string
	// MCP, when set, is mounted at /mcp behind the same authentication.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server serves the REST API.
type Server struct {
	svc    Services
	logger *slog.Logger
	echo   *echo.Echo
}

// NewServer creates the echo router with middleware and routes.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{svc: cfg.Services, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", s.handleHealth)

	var auth echo.MiddlewareFunc
	var mcpAuth func(http.Handler) http.Handler
	if cfg.AuthEnabled {
		auth = echoAuth(cfg.Resolver)
		mcpAuth = AuthMiddleware(cfg.Resolver)
	} else {
		auth = echoStaticActor(cfg.DefaultActor)
		mcpAuth = StaticActor(cfg.DefaultActor)
	}

	if cfg.MCP != nil {
		mcp := echo.WrapHandler(mcpAuth(cfg.MCP))
		e.Any("/mcp", mcp)
		e.Any("/mcp/*", mcp)
	}

	api := e.Group("/api/v1")
	api.POST("/register", s.handleRegister)

	protected := api.Group("")
	protected.Use(auth)

	protected.GET("/me", s.handleMe)
	protected.GET("/me/tasks", s.handleMyTasks)
	protected.GET("/people", s.handleSearchPeople)

	protected.GET("/projects", s.handleListProjects)
	protected.POST("/projects", s.handleCreateProject)
	protected.GET("/projects/:id", s.handleGetProject)
	protected.PATCH("/projects/:id", s.handleUpdateProject)
	protected.DELETE("/projects/:id", s.handleDeleteProject)

	protected.GET("/projects/:id/members", s.handleListMembers)
	protected.POST("/projects/:id/members", s.handleAddMember)
	protected.DELETE("/projects/:id/members/:personID", s.handleRemoveMember)
	protected.POST("/team/members", s.handleAddTeamMember)
	protected.DELETE("/team/members/:personID", s.handleRemoveTeamMember)

	protected.GET("/projects/:id/tasks", s.handleListTasks)
	protected.POST("/projects/:id/tasks", s.handleCreateTask)
	protected.GET("/tasks/:id", s.handleGetTask)
	protected.PATCH("/tasks/:id", s.handleUpdateTask)
	protected.DELETE("/tasks/:id", s.handleDeleteTask)
	protected.POST("/tasks/:id/progress", s.handleUpdateProgress)

	protected.GET("/charts/projects", s.handleProjectTimeline)
	protected.GET("/charts/projects/:id", s.handleProjectChart)
	protected.GET("/charts/team", s.handleTeamCapacity)

	protected.GET("/activity", s.handleActivity)

	s.echo = e
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	s.echo.Server.ReadTimeout = readTimeout
	s.echo.Server.WriteTimeout = writeTimeout
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			level := slog.LevelInfo
			if res.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(req.Context(), level, "http request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", res.Status,
				"size", res.Size,
				"duration", time.Since(start).String(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// fail writes err with the status its kind maps to.
func (s *Server) fail(c echo.Context, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	}
	return c.JSON(status, publicError(status, err))
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg})
}
