package mocks

import (
	"context"
	"time"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/timeline"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, actorID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, actorID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for the ActivityLogger interfaces of the domain services.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, actorID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, actorID, entry)
	return args.Error(0)
}

// PersonRepository is a mock for person.Repository.
type PersonRepository struct {
	mock.Mock
}

func (m *PersonRepository) Register(ctx context.Context, p *person.Person) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func (m *PersonRepository) Get(ctx context.Context, id string) (*person.Person, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*person.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) GetByEmail(ctx context.Context, email string) (*person.Person, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*person.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) Search(ctx context.Context, query string, limit int) ([]person.Person, error) {
	args := m.Called(ctx, query, limit)
	if list, ok := args.Get(0).([]person.Person); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) SearchTeammates(ctx context.Context, actorID, query string, limit int) ([]person.Person, error) {
	args := m.Called(ctx, actorID, query, limit)
	if list, ok := args.Get(0).([]person.Person); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PersonRepository) CreateInvite(ctx context.Context, inv *person.Invite) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListVisible(ctx context.Context, actorID string) ([]project.Summary, error) {
	args := m.Called(ctx, actorID)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListOwned(ctx context.Context, ownerID string) ([]project.Project, error) {
	args := m.Called(ctx, ownerID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project, clampTasks bool) error {
	args := m.Called(ctx, proj, clampTasks)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) CountTasksOutside(ctx context.Context, projectID string, r timeline.DateRange) (int, error) {
	args := m.Called(ctx, projectID, r)
	return args.Int(0), args.Error(1)
}

func (m *ProjectRepository) IsMember(ctx context.Context, projectID, personID string) (bool, error) {
	args := m.Called(ctx, projectID, personID)
	return args.Bool(0), args.Error(1)
}

func (m *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]project.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) AddMember(ctx context.Context, projectID, personID string) error {
	args := m.Called(ctx, projectID, personID)
	return args.Error(0)
}

func (m *ProjectRepository) RemoveMember(ctx context.Context, projectID, personID string) error {
	args := m.Called(ctx, projectID, personID)
	return args.Error(0)
}

// People is a mock for project.People.
type People struct {
	mock.Mock
}

func (m *People) Get(ctx context.Context, id string) (*person.Person, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*person.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *People) GetByEmail(ctx context.Context, email string) (*person.Person, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*person.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *People) Invite(ctx context.Context, invitedBy, projectID, email string) (*person.Invite, error) {
	args := m.Called(ctx, invitedBy, projectID, email)
	if inv, ok := args.Get(0).(*person.Invite); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskRepository is a mock for task.Repository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) ListByAssignee(ctx context.Context, personID string) ([]task.Task, error) {
	args := m.Called(ctx, personID)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) UpdateProgress(ctx context.Context, id string, progress int, status task.Status, updatedAt time.Time) error {
	args := m.Called(ctx, id, progress, status, updatedAt)
	return args.Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Projects is a mock for task.Projects.
type Projects struct {
	mock.Mock
}

func (m *Projects) Get(ctx context.Context, actorID, id string) (*project.Project, error) {
	args := m.Called(ctx, actorID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Projects) IsMember(ctx context.Context, projectID, personID string) (bool, error) {
	args := m.Called(ctx, projectID, personID)
	return args.Bool(0), args.Error(1)
}

func (m *Projects) Policy() project.Policy {
	args := m.Called()
	return args.Get(0).(project.Policy)
}
