package capacity

import (
	"context"

	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
)

// Projects reads projects and members on behalf of an actor.
type Projects interface {
	Get(ctx context.Context, actorID, id string) (*project.Project, error)
	List(ctx context.Context, actorID string) ([]project.Summary, error)
	ListMembers(ctx context.Context, actorID, projectID string) ([]project.Member, error)
}

// Tasks reads a project's tasks on behalf of an actor.
type Tasks interface {
	ListByProject(ctx context.Context, actorID, projectID string) ([]task.Task, error)
}

// Cache stores assembled charts. A miss is (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}
