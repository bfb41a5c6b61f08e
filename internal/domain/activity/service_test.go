package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()
	actorID := "person1"
	projectID := "proj1"

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		ProjectID:    &projectID,
		ActivityType: activity.TypeProjectCreated,
		Summary:      "created",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, actorID, activity.ListActivityOptions{ProjectID: "proj1", Limit: 50}).Return([]activity.ActivityEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, actorID, entry))
	require.NotEmpty(t, entry.ID)
	require.Equal(t, actorID, entry.ActorID)
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, actorID, activity.ListActivityOptions{ProjectID: "proj1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_LogValidation(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.LogActivity(ctx, "person1", nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "", &activity.ActivityEntry{ActivityType: activity.TypeTaskCreated}), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(ctx, "person1", &activity.ActivityEntry{}), activity.ErrInvalidInput)
}

func TestActivityService_ListenersRunAfterStore(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.Anything).Return(nil).Once()

	svc := activity.NewService(repo, nil)
	var seen []activity.ActivityType
	svc.Subscribe(func(_ context.Context, e activity.ActivityEntry) {
		seen = append(seen, e.ActivityType)
	})

	require.NoError(t, svc.LogActivity(ctx, "person1", &activity.ActivityEntry{ActivityType: activity.TypeTaskDeleted}))
	require.Equal(t, []activity.ActivityType{activity.TypeTaskDeleted}, seen)
}

func TestActivityService_ListenersSkippedOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil)
	called := false
	svc.Subscribe(func(context.Context, activity.ActivityEntry) { called = true })

	err := svc.LogActivity(ctx, "person1", &activity.ActivityEntry{ActivityType: activity.TypeTaskDeleted})
	require.Error(t, err)
	require.False(t, called)
}

func TestActivityService_ListClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("List", ctx, "person1", activity.ListActivityOptions{Limit: 500}).Return([]activity.ActivityEntry{}, nil)

	svc := activity.NewService(repo, nil)
	_, err := svc.GetRecentActivity(ctx, "person1", activity.ListActivityOptions{Limit: 10000, Offset: -3})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
