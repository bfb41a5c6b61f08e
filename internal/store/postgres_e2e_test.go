//go:build e2e

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/timeline"
)

// newPostgresFixture starts a throwaway Postgres and migrates it.
func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "gantry",
			"POSTGRES_USER":     "gantry",
			"POSTGRES_PASSWORD": "secret",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://gantry:secret@%s:%s/gantry?sslmode=disable", host, port.Port())

	db, err := Open(DialectPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx, nil))

	return &fixture{
		db:       db,
		people:   NewPersonRepository(db),
		projects: NewProjectRepository(db),
		tasks:    NewTaskRepository(db),
	}
}

func TestPostgres_ProjectLifecycle(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()

	owner := f.person(t, "u1", "owner@example.com", "Owner")
	ann := f.person(t, "u2", "ann@example.com", "Ann Lee")
	f.project(t, "p1", owner.ID, "2025-01-01", "2025-03-31")
	require.NoError(t, f.projects.AddMember(ctx, "p1", ann.ID))
	require.ErrorIs(t, f.projects.AddMember(ctx, "p1", ann.ID), repository.ErrConflict)

	f.task(t, "t1", "p1", &ann.ID, "2025-01-05", "2025-01-20")
	dep := f.task(t, "t2", "p1", nil, "2025-01-21", "2025-02-10")
	dep.Dependencies = []string{"t1"}
	require.NoError(t, f.tasks.Update(ctx, dep))

	got, err := f.tasks.Get(ctx, "t2")
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, got.Dependencies)

	require.NoError(t, f.tasks.UpdateProgress(ctx, "t1", 100, task.StatusCompleted, time.Now().UTC()))
	summaries, err := f.projects.ListVisible(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, 2, summaries[0].MemberCount)
	require.Equal(t, 1, summaries[0].CompletedTasks)

	outside, err := f.projects.CountTasksOutside(ctx, "p1", timeline.DateRange{
		Start: timeline.MustParseDate("2025-01-10"),
		End:   timeline.MustParseDate("2025-03-31"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, outside)

	people, err := f.people.Search(ctx, "LEE", 10)
	require.NoError(t, err)
	require.Len(t, people, 1)

	require.NoError(t, f.projects.RemoveMember(ctx, "p1", ann.ID))
	unassigned, err := f.tasks.Get(ctx, "t1")
	require.NoError(t, err)
	require.Nil(t, unassigned.AssigneeID)

	require.NoError(t, f.projects.Delete(ctx, "p1"))
	_, err = f.tasks.Get(ctx, "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
