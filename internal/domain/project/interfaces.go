package project

import (
	"context"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/timeline"
)

// Repository provides persistence for projects and memberships.
type Repository interface {
	// Create stores the project and the owner's membership.
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	// ListVisible returns projects actorID owns or is a member of, newest first.
	ListVisible(ctx context.Context, actorID string) ([]Summary, error)
	ListOwned(ctx context.Context, ownerID string) ([]Project, error)
	// Update stores the project. With clampTasks set, tasks are pulled inside
	// the new date range in the same transaction.
	Update(ctx context.Context, proj *Project, clampTasks bool) error
	// Delete removes the project with its memberships and tasks.
	Delete(ctx context.Context, id string) error
	CountTasksOutside(ctx context.Context, projectID string, r timeline.DateRange) (int, error)

	IsMember(ctx context.Context, projectID, personID string) (bool, error)
	// ListMembers returns memberships with the owner first.
	ListMembers(ctx context.Context, projectID string) ([]Member, error)
	AddMember(ctx context.Context, projectID, personID string) error
	// RemoveMember deletes the membership and unassigns the person's tasks in
	// the project.
	RemoveMember(ctx context.Context, projectID, personID string) error
}

// People looks up and invites people by email.
type People interface {
	Get(ctx context.Context, id string) (*person.Person, error)
	GetByEmail(ctx context.Context, email string) (*person.Person, error)
	Invite(ctx context.Context, invitedBy, projectID, email string) (*person.Invite, error)
}

// ActivityLogger records mutations.
type ActivityLogger interface {
	LogActivity(ctx context.Context, actorID string, entry *activity.ActivityEntry) error
}
