package mcp

import (
	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
)

// Tool parameter types. Dates are ISO strings (YYYY-MM-DD).

type ListProjectsParams struct{}

type CreateProjectParams struct {
	Name        string `json:"name" jsonschema:"project display name"`
	Description string `json:"description,omitempty" jsonschema:"optional project description"`
	StartDate   string `json:"start_date" jsonschema:"first day of the project, YYYY-MM-DD"`
	EndDate     string `json:"end_date" jsonschema:"last day of the project, YYYY-MM-DD; must be after start_date"`
}

type ListTasksParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project to list; omit to list tasks assigned to you"`
}

type CreateTaskParams struct {
	ProjectID    string   `json:"project_id" jsonschema:"project the task belongs to"`
	Name         string   `json:"name" jsonschema:"task name"`
	Description  string   `json:"description,omitempty" jsonschema:"optional task description"`
	AssigneeID   string   `json:"assignee_id,omitempty" jsonschema:"person ID of a project member"`
	StartDate    string   `json:"start_date" jsonschema:"first day of the task, YYYY-MM-DD, inside the project dates"`
	EndDate      string   `json:"end_date" jsonschema:"last day of the task, YYYY-MM-DD, inside the project dates"`
	Status       string   `json:"status,omitempty" jsonschema:"not_started, pending, in_progress, completed or blocked"`
	Dependencies []string `json:"dependencies,omitempty" jsonschema:"IDs of tasks in the same project this task waits on"`
}

type UpdateTaskProgressParams struct {
	TaskID   string `json:"task_id" jsonschema:"task to update"`
	Progress *int   `json:"progress,omitempty" jsonschema:"percent complete, 0 to 100"`
	Status   string `json:"status,omitempty" jsonschema:"new status; derived from progress when omitted"`
}

type AddMemberParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project to join; omit to add to every project you own"`
	Email     string `json:"email" jsonschema:"email of the person to add; unknown emails get an invite"`
}

type RemoveMemberParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project to leave; omit to remove from every project you own"`
	PersonID  string `json:"person_id" jsonschema:"person to remove"`
}

type ListMembersParams struct {
	ProjectID string `json:"project_id" jsonschema:"project whose members to list"`
}

type ChartWindowParams struct {
	Date  string `json:"date,omitempty" jsonschema:"any day in the first week shown, YYYY-MM-DD; defaults to today"`
	Weeks int    `json:"weeks,omitempty" jsonschema:"number of weeks to show, at most 104; defaults to 16"`
}

type GetProjectChartParams struct {
	ProjectID string `json:"project_id" jsonschema:"project to chart"`
	Date      string `json:"date,omitempty" jsonschema:"any day in the first week shown, YYYY-MM-DD; defaults to today"`
	Weeks     int    `json:"weeks,omitempty" jsonschema:"number of weeks to show, at most 104; defaults to 16"`
}

type GetRecentActivityParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"only activity in this project"`
	TaskID    string `json:"task_id,omitempty" jsonschema:"only activity on this task"`
	Type      string `json:"type,omitempty" jsonschema:"only this activity type, e.g. task_progress"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum entries, default 20"`
	Offset    int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

// Responses wrap lists so every tool result is a JSON object.

type ListProjectsResponse struct {
	Projects []project.Summary `json:"projects"`
}

type ListTasksResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type ListMembersResponse struct {
	Members []project.Member `json:"members"`
}

type RemoveMemberResponse struct {
	Removed  bool `json:"removed"`
	Projects int  `json:"projects"`
}

type GetRecentActivityResponse struct {
	Activity []activity.ActivityEntry `json:"activity"`
}
