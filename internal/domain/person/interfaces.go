package person

import (
	"context"

	"github.com/rpggio/gantry/internal/domain/activity"
)

// Repository provides persistence for people and invites.
type Repository interface {
	// Register inserts the person and, in the same transaction, redeems the
	// invites pending for their email. It returns the memberships created.
	Register(ctx context.Context, p *Person) (int, error)
	Get(ctx context.Context, id string) (*Person, error)
	GetByEmail(ctx context.Context, email string) (*Person, error)
	Search(ctx context.Context, query string, limit int) ([]Person, error)
	SearchTeammates(ctx context.Context, actorID, query string, limit int) ([]Person, error)
	CreateInvite(ctx context.Context, inv *Invite) error
}

// ActivityLogger records mutations.
type ActivityLogger interface {
	LogActivity(ctx context.Context, actorID string, entry *activity.ActivityEntry) error
}
