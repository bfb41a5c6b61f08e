package project_test

import (
	"context"
	"testing"

	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/repository/mocks"
	"github.com/rpggio/gantry/internal/timeline"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ownedProject() *project.Project {
	return &project.Project{
		ID:        "proj1",
		Name:      "Launch",
		OwnerID:   "owner",
		StartDate: timeline.MustParseDate("2025-01-01"),
		EndDate:   timeline.MustParseDate("2025-03-31"),
	}
}

func newService(repo *mocks.ProjectRepository, people *mocks.People) *project.Service {
	acts := &mocks.ActivityLogger{}
	acts.On("LogActivity", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return project.NewService(repo, people, acts, nil)
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(&mocks.ProjectRepository{}, &mocks.People{})

	_, err := svc.Create(ctx, "owner", project.CreateRequest{Name: ""})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, "owner", project.CreateRequest{
		Name:      "Same day",
		StartDate: timeline.MustParseDate("2025-01-01"),
		EndDate:   timeline.MustParseDate("2025-01-01"),
	})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, "owner", project.CreateRequest{Name: "No dates"})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*project.Project")).Return(nil)

	svc := newService(repo, &mocks.People{})
	proj, err := svc.Create(ctx, "owner", project.CreateRequest{
		Name:      " Launch ",
		StartDate: timeline.MustParseDate("2025-01-01"),
		EndDate:   timeline.MustParseDate("2025-01-02"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "Launch", proj.Name)
	require.Equal(t, "owner", proj.OwnerID)
}

func TestProjectService_GetHiddenFromNonMembers(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("IsMember", ctx, "proj1", "stranger").Return(false, nil)
	repo.On("IsMember", ctx, "proj1", "member").Return(true, nil)

	svc := newService(repo, &mocks.People{})

	_, err := svc.Get(ctx, "stranger", "proj1")
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	proj, err := svc.Get(ctx, "member", "proj1")
	require.NoError(t, err)
	require.Equal(t, "proj1", proj.ID)

	proj, err = svc.Get(ctx, "owner", "proj1")
	require.NoError(t, err)
	require.Equal(t, "proj1", proj.ID)
}

func TestProjectService_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "nope").Return((*project.Project)(nil), repository.ErrNotFound)

	_, err := newService(repo, &mocks.People{}).Get(ctx, "owner", "nope")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_MembersCannotMutate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("IsMember", ctx, "proj1", "member").Return(true, nil)

	svc := newService(repo, &mocks.People{})
	name := "Renamed"

	_, err := svc.Update(ctx, "member", project.UpdateRequest{ID: "proj1", Name: &name})
	require.ErrorIs(t, err, project.ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, "member", "proj1"), project.ErrForbidden)
	_, err = svc.AddMember(ctx, "member", "proj1", "x@example.com")
	require.ErrorIs(t, err, project.ErrForbidden)
	require.ErrorIs(t, svc.RemoveMember(ctx, "member", "proj1", "other"), project.ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProjectService_ShrinkRejectedWithTasksOutside(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("CountTasksOutside", ctx, "proj1", mock.AnythingOfType("timeline.DateRange")).Return(2, nil)

	svc := newService(repo, &mocks.People{})
	end := timeline.MustParseDate("2025-02-01")

	_, err := svc.Update(ctx, "owner", project.UpdateRequest{ID: "proj1", EndDate: &end})
	require.ErrorIs(t, err, project.ErrTasksOutOfRange)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_ShrinkWithClamp(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("CountTasksOutside", ctx, "proj1", mock.AnythingOfType("timeline.DateRange")).Return(1, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*project.Project"), true).Return(nil)

	svc := newService(repo, &mocks.People{})
	end := timeline.MustParseDate("2025-02-01")

	proj, err := svc.Update(ctx, "owner", project.UpdateRequest{ID: "proj1", EndDate: &end, ClampTasks: true})
	require.NoError(t, err)
	require.Equal(t, end, proj.EndDate)
	repo.AssertExpectations(t)
}

func TestProjectService_GrowSkipsTaskCheck(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*project.Project"), false).Return(nil)

	svc := newService(repo, &mocks.People{})
	end := timeline.MustParseDate("2025-06-30")

	_, err := svc.Update(ctx, "owner", project.UpdateRequest{ID: "proj1", EndDate: &end})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CountTasksOutside", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_AddMemberInvitesUnknownEmail(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)

	people := &mocks.People{}
	people.On("GetByEmail", ctx, "new@example.com").Return((*person.Person)(nil), person.ErrPersonNotFound)
	people.On("Invite", ctx, "owner", "proj1", "new@example.com").Return(&person.Invite{Email: "new@example.com", InvitedBy: "owner"}, nil)

	res, err := newService(repo, people).AddMember(ctx, "owner", "proj1", "new@example.com")
	require.NoError(t, err)
	require.Equal(t, project.StatusInvited, res.Status)
	require.Equal(t, "new@example.com", res.Invite.Email)
	repo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_AddMemberDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("AddMember", ctx, "proj1", "bob").Return(repository.ErrConflict)

	people := &mocks.People{}
	people.On("GetByEmail", ctx, "bob@example.com").Return(&person.Person{ID: "bob", Email: "bob@example.com"}, nil)
	people.On("GetByEmail", ctx, "owner@example.com").Return(&person.Person{ID: "owner", Email: "owner@example.com"}, nil)

	svc := newService(repo, people)
	_, err := svc.AddMember(ctx, "owner", "proj1", "bob@example.com")
	require.ErrorIs(t, err, project.ErrAlreadyMember)

	_, err = svc.AddMember(ctx, "owner", "proj1", "owner@example.com")
	require.ErrorIs(t, err, project.ErrAlreadyMember)
}

func TestProjectService_RemoveOwnerRejected(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)

	err := newService(repo, &mocks.People{}).RemoveMember(ctx, "owner", "proj1", "owner")
	require.ErrorIs(t, err, project.ErrCannotRemoveOwner)
}

func TestProjectService_RemoveMemberNotMember(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "proj1").Return(ownedProject(), nil)
	repo.On("RemoveMember", ctx, "proj1", "ghost").Return(repository.ErrNotFound)

	err := newService(repo, &mocks.People{}).RemoveMember(ctx, "owner", "proj1", "ghost")
	require.ErrorIs(t, err, project.ErrNotMember)
}

func TestProjectService_AddMemberToOwnedProjects(t *testing.T) {
	ctx := context.Background()
	p1, p2 := *ownedProject(), *ownedProject()
	p2.ID = "proj2"

	repo := &mocks.ProjectRepository{}
	repo.On("ListOwned", ctx, "owner").Return([]project.Project{p1, p2}, nil)
	repo.On("AddMember", ctx, "proj1", "bob").Return(repository.ErrConflict)
	repo.On("AddMember", ctx, "proj2", "bob").Return(nil)

	people := &mocks.People{}
	people.On("GetByEmail", ctx, "bob@example.com").Return(&person.Person{ID: "bob", Email: "bob@example.com"}, nil)

	res, err := newService(repo, people).AddMemberToOwnedProjects(ctx, "owner", "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, project.StatusAdded, res.Status)
	require.Equal(t, 1, res.Projects)
}

func TestProjectService_AddMemberToOwnedProjectsInvitesTeamWide(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("ListOwned", ctx, "owner").Return([]project.Project{*ownedProject()}, nil)

	people := &mocks.People{}
	people.On("GetByEmail", ctx, "new@example.com").Return((*person.Person)(nil), person.ErrPersonNotFound)
	people.On("Invite", ctx, "owner", "", "new@example.com").Return(&person.Invite{Email: "new@example.com", InvitedBy: "owner"}, nil)

	res, err := newService(repo, people).AddMemberToOwnedProjects(ctx, "owner", "new@example.com")
	require.NoError(t, err)
	require.Equal(t, project.StatusInvited, res.Status)
	people.AssertExpectations(t)
}

func TestProjectService_AddMemberToOwnedProjectsNeedsProject(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("ListOwned", ctx, "owner").Return([]project.Project{}, nil)

	_, err := newService(repo, &mocks.People{}).AddMemberToOwnedProjects(ctx, "owner", "bob@example.com")
	require.ErrorIs(t, err, project.ErrNoOwnedProjects)
}

func TestProjectService_RemoveMemberFromOwnedProjects(t *testing.T) {
	ctx := context.Background()
	p1, p2 := *ownedProject(), *ownedProject()
	p2.ID = "proj2"

	repo := &mocks.ProjectRepository{}
	repo.On("ListOwned", ctx, "owner").Return([]project.Project{p1, p2}, nil)
	repo.On("RemoveMember", ctx, "proj1", "bob").Return(nil)
	repo.On("RemoveMember", ctx, "proj2", "bob").Return(repository.ErrNotFound)

	svc := newService(repo, &mocks.People{})
	removed, err := svc.RemoveMemberFromOwnedProjects(ctx, "owner", "bob")
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = svc.RemoveMemberFromOwnedProjects(ctx, "owner", "owner")
	require.ErrorIs(t, err, project.ErrCannotRemoveSelf)
}

func TestOwnerPolicy(t *testing.T) {
	p := ownedProject()
	require.True(t, project.OwnerPolicy{}.CanMutate("owner", p))
	require.False(t, project.OwnerPolicy{}.CanMutate("member", p))
	require.False(t, project.OwnerPolicy{}.CanMutate("", &project.Project{}))
	require.False(t, project.OwnerPolicy{}.CanMutate("owner", nil))
}

func TestCompletionPercent(t *testing.T) {
	require.Equal(t, 0, project.CompletionPercent(0, 0))
	require.Equal(t, 33, project.CompletionPercent(1, 3))
	require.Equal(t, 67, project.CompletionPercent(2, 3))
	require.Equal(t, 100, project.CompletionPercent(4, 4))
}
