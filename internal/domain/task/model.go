package task

import (
	"time"

	"github.com/rpggio/gantry/internal/timeline"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Task is a dated unit of work inside a project, optionally assigned to one member.
type Task struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"project_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	AssigneeID   *string       `json:"assignee_id,omitempty"`
	StartDate    timeline.Date `json:"start_date"`
	EndDate      timeline.Date `json:"end_date"`
	Progress     int           `json:"progress"`
	Status       Status        `json:"status"`
	Dependencies []string      `json:"dependencies"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Range returns the task's inclusive date span.
func (t *Task) Range() timeline.DateRange {
	return timeline.DateRange{Start: t.StartDate, End: t.EndDate}
}

// IsAssignedTo reports whether personID is the task's assignee.
func (t *Task) IsAssignedTo(personID string) bool {
	return t.AssigneeID != nil && personID != "" && *t.AssigneeID == personID
}
