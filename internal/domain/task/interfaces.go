package task

import (
	"context"
	"time"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/project"
)

// Repository provides persistence for tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	ListByAssignee(ctx context.Context, personID string) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	UpdateProgress(ctx context.Context, id string, progress int, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Projects resolves projects and memberships for authorization.
type Projects interface {
	Get(ctx context.Context, actorID, id string) (*project.Project, error)
	IsMember(ctx context.Context, projectID, personID string) (bool, error)
	Policy() project.Policy
}

// ActivityLogger records mutations.
type ActivityLogger interface {
	LogActivity(ctx context.Context, actorID string, entry *activity.ActivityEntry) error
}
