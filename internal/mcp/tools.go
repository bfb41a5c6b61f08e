package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every gantry tool to the server.
func registerTools(server *sdkmcp.Server, h *Handler, logger *slog.Logger) {
	// Projects
	addTool(server, logger, "list_projects",
		"List projects you own or belong to, with member/task counts and completion progress",
		h.ListProjects)
	addTool(server, logger, "create_project",
		"Create a dated project owned by you. Tasks must later fit inside its start and end dates",
		h.CreateProject)
	addTool(server, logger, "get_project_timeline",
		"Week-by-week bars for every visible project, starting at the week containing date",
		h.GetProjectTimeline)

	// Members
	addTool(server, logger, "list_members",
		"List a project's members; the owner comes first",
		h.ListMembers)
	addTool(server, logger, "add_member",
		"Add a person by email to one project, or to every project you own when project_id is omitted. "+
			"Unknown emails are invited and, on registration, join the same project or projects",
		h.AddMember)
	addTool(server, logger, "remove_member",
		"Remove a person from one project, or from every project you own when project_id is omitted. "+
			"Their tasks there become unassigned",
		h.RemoveMember)

	// Tasks
	addTool(server, logger, "list_tasks",
		"List a project's tasks ordered by start date, or your own assigned tasks when project_id is omitted",
		h.ListTasks)
	addTool(server, logger, "create_task",
		"Create a task inside a project you own, optionally assigned to a member",
		h.CreateTask)
	addTool(server, logger, "update_task_progress",
		"Report progress (0-100) and/or status on a task you own or are assigned to",
		h.UpdateTaskProgress)

	// Charts
	addTool(server, logger, "get_project_chart",
		"Gantt view of one project: per-week task bars and the load its tasks put on each member",
		h.GetProjectChart)
	addTool(server, logger, "get_team_capacity",
		"Per-person weekly capacity across all visible projects. Tiers: normal <=80, high <=100, over >100",
		h.GetTeamCapacity)

	// Activity
	addTool(server, logger, "get_recent_activity",
		"Recent changes by you or in your projects, newest first",
		h.GetRecentActivity)
}

// addTool registers fn under name. The handler result is returned to the
// client as JSON text; mapped domain errors become tool errors and anything
// else is logged and reported generically.
func addTool[In any](server *sdkmcp.Server, logger *slog.Logger, name, description string,
	fn func(ctx context.Context, actorID string, in In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			actorID := getActorID(ctx)
			if actorID == "" {
				return nil, nil, MapError(errUnauthorized)
			}
			out, err := fn(ctx, actorID, in)
			if err != nil {
				return nil, nil, toolError(ctx, logger, name, err)
			}
			res, err := jsonResult(out)
			if err != nil {
				return nil, nil, toolError(ctx, logger, name, err)
			}
			return res, nil, nil
		})
}

func toolError(ctx context.Context, logger *slog.Logger, name string, err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	logger.ErrorContext(ctx, "mcp tool failed", "tool", name, "error", err)
	return &APIError{Code: "INTERNAL", Message: "internal error"}
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}
