package mcp

import (
	"context"
	"strings"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
)

// Handler implements the MCP tools on top of the domain services. Each
// method takes the acting person's ID and the decoded tool arguments.
type Handler struct {
	projects ProjectService
	tasks    TaskService
	charts   ChartService
	activity ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{
		projects: svc.Projects,
		tasks:    svc.Tasks,
		charts:   svc.Charts,
		activity: svc.Activity,
	}
}

func (h *Handler) ListProjects(ctx context.Context, actorID string, _ ListProjectsParams) (any, error) {
	projects, err := h.projects.List(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return ListProjectsResponse{Projects: projects}, nil
}

func (h *Handler) CreateProject(ctx context.Context, actorID string, p CreateProjectParams) (any, error) {
	start, err := requiredDate("start_date", p.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := requiredDate("end_date", p.EndDate)
	if err != nil {
		return nil, err
	}
	return h.projects.Create(ctx, actorID, project.CreateRequest{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   start,
		EndDate:     end,
	})
}

// ListTasks lists a project's tasks, or the caller's own assignments when no
// project is given.
func (h *Handler) ListTasks(ctx context.Context, actorID string, p ListTasksParams) (any, error) {
	var (
		tasks []task.Task
		err   error
	)
	if p.ProjectID == "" {
		tasks, err = h.tasks.ListByAssignee(ctx, actorID, actorID)
	} else {
		tasks, err = h.tasks.ListByProject(ctx, actorID, p.ProjectID)
	}
	if err != nil {
		return nil, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (h *Handler) CreateTask(ctx context.Context, actorID string, p CreateTaskParams) (any, error) {
	if p.ProjectID == "" {
		return nil, invalidInput("project_id is required")
	}
	start, err := requiredDate("start_date", p.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := requiredDate("end_date", p.EndDate)
	if err != nil {
		return nil, err
	}
	req := task.CreateRequest{
		ProjectID:    p.ProjectID,
		Name:         p.Name,
		Description:  p.Description,
		StartDate:    start,
		EndDate:      end,
		Status:       task.Status(p.Status),
		Dependencies: p.Dependencies,
	}
	if p.AssigneeID != "" {
		req.AssigneeID = &p.AssigneeID
	}
	return h.tasks.Create(ctx, actorID, req)
}

func (h *Handler) UpdateTaskProgress(ctx context.Context, actorID string, p UpdateTaskProgressParams) (any, error) {
	if p.TaskID == "" {
		return nil, invalidInput("task_id is required")
	}
	if p.Progress == nil && p.Status == "" {
		return nil, invalidInput("progress or status is required")
	}
	return h.tasks.UpdateProgress(ctx, actorID, task.ProgressRequest{
		ID:       p.TaskID,
		Progress: p.Progress,
		Status:   task.Status(p.Status),
	})
}

func (h *Handler) ListMembers(ctx context.Context, actorID string, p ListMembersParams) (any, error) {
	if p.ProjectID == "" {
		return nil, invalidInput("project_id is required")
	}
	members, err := h.projects.ListMembers(ctx, actorID, p.ProjectID)
	if err != nil {
		return nil, err
	}
	return ListMembersResponse{Members: members}, nil
}

// AddMember adds a person to one project, or to every project the caller
// owns when no project is given.
func (h *Handler) AddMember(ctx context.Context, actorID string, p AddMemberParams) (any, error) {
	if strings.TrimSpace(p.Email) == "" {
		return nil, invalidInput("email is required")
	}
	if p.ProjectID == "" {
		return h.projects.AddMemberToOwnedProjects(ctx, actorID, p.Email)
	}
	return h.projects.AddMember(ctx, actorID, p.ProjectID, p.Email)
}

func (h *Handler) RemoveMember(ctx context.Context, actorID string, p RemoveMemberParams) (any, error) {
	if p.PersonID == "" {
		return nil, invalidInput("person_id is required")
	}
	if p.ProjectID == "" {
		n, err := h.projects.RemoveMemberFromOwnedProjects(ctx, actorID, p.PersonID)
		if err != nil {
			return nil, err
		}
		return RemoveMemberResponse{Removed: n > 0, Projects: n}, nil
	}
	if err := h.projects.RemoveMember(ctx, actorID, p.ProjectID, p.PersonID); err != nil {
		return nil, err
	}
	return RemoveMemberResponse{Removed: true, Projects: 1}, nil
}

func (h *Handler) GetProjectTimeline(ctx context.Context, actorID string, p ChartWindowParams) (any, error) {
	ref, weeks, err := chartWindow(p.Date, p.Weeks)
	if err != nil {
		return nil, err
	}
	return h.charts.ProjectTimeline(ctx, actorID, ref, weeks)
}

func (h *Handler) GetProjectChart(ctx context.Context, actorID string, p GetProjectChartParams) (any, error) {
	if p.ProjectID == "" {
		return nil, invalidInput("project_id is required")
	}
	ref, weeks, err := chartWindow(p.Date, p.Weeks)
	if err != nil {
		return nil, err
	}
	return h.charts.ProjectChart(ctx, actorID, p.ProjectID, ref, weeks)
}

func (h *Handler) GetTeamCapacity(ctx context.Context, actorID string, p ChartWindowParams) (any, error) {
	ref, weeks, err := chartWindow(p.Date, p.Weeks)
	if err != nil {
		return nil, err
	}
	return h.charts.TeamCapacity(ctx, actorID, ref, weeks)
}

func (h *Handler) GetRecentActivity(ctx context.Context, actorID string, p GetRecentActivityParams) (any, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return nil, invalidInput("limit and offset must not be negative")
	}
	opts := activity.ListActivityOptions{
		ProjectID: p.ProjectID,
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
	if p.TaskID != "" {
		opts.TaskID = &p.TaskID
	}
	if p.Type != "" {
		typ := activity.ActivityType(p.Type)
		opts.ActivityType = &typ
	}
	entries, err := h.activity.GetRecentActivity(ctx, actorID, opts)
	if err != nil {
		return nil, err
	}
	return GetRecentActivityResponse{Activity: entries}, nil
}

func requiredDate(field, raw string) (timeline.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return timeline.Date{}, invalidInput("%s is required", field)
	}
	d, err := timeline.ParseDate(raw)
	if err != nil {
		return timeline.Date{}, invalidInput("%s must be YYYY-MM-DD, got %q", field, raw)
	}
	return d, nil
}

// chartWindow parses an optional reference date; the zero date means today.
func chartWindow(raw string, weeks int) (timeline.Date, int, error) {
	if weeks < 0 {
		return timeline.Date{}, 0, invalidInput("weeks must not be negative")
	}
	if weeks > timeline.MaxWeeks {
		return timeline.Date{}, 0, invalidInput("weeks must be at most %d", timeline.MaxWeeks)
	}
	if strings.TrimSpace(raw) == "" {
		return timeline.Date{}, weeks, nil
	}
	d, err := timeline.ParseDate(raw)
	if err != nil {
		return timeline.Date{}, 0, invalidInput("date must be YYYY-MM-DD, got %q", raw)
	}
	return d, weeks, nil
}
