package activity

import "context"

// Repository provides persistence operations for activity entries.
type Repository interface {
	Log(ctx context.Context, entry *ActivityEntry) error
	// List returns entries written by actorID or attached to a project actorID can see.
	List(ctx context.Context, actorID string, opts ListActivityOptions) ([]ActivityEntry, error)
}

// Listener is notified after an entry has been stored.
type Listener func(ctx context.Context, entry ActivityEntry)
