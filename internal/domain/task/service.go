package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/timeline"
)

// Service handles task business logic.
type Service struct {
	repo       Repository
	projects   Projects
	activities ActivityLogger
	logger     *slog.Logger
}

// NewService creates a new task service. activities may be nil.
func NewService(repo Repository, projects Projects, activities ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, projects: projects, activities: activities, logger: logger}
}

// CreateRequest describes a task creation request.
type CreateRequest struct {
	ProjectID    string
	Name         string
	Description  string
	AssigneeID   *string
	StartDate    timeline.Date
	EndDate      timeline.Date
	Status       Status
	Dependencies []string
}

// UpdateRequest describes a partial task update. Nil fields are left alone.
type UpdateRequest struct {
	ID           string
	Name         *string
	Description  *string
	AssigneeID   *string
	Unassign     bool
	StartDate    *timeline.Date
	EndDate      *timeline.Date
	Status       *Status
	Dependencies []string
}

// ProgressRequest reports progress. Either field may be omitted and is then
// derived from the other.
type ProgressRequest struct {
	ID       string
	Progress *int
	Status   Status
}

// Create creates a task in a project owned by actorID.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*Task, error) {
	proj, err := s.mutableProject(ctx, actorID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusNotStarted
	}
	now := time.Now().UTC()
	t := &Task{
		ID:           uuid.NewString(),
		ProjectID:    proj.ID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		AssigneeID:   blankToNil(req.AssigneeID),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       status,
		Dependencies: dedupe(req.Dependencies),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if t.Status == StatusCompleted {
		t.Progress = 100
	}

	if err := s.validate(ctx, proj, t); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: unknown project, assignee or dependency", ErrInvalidInput)
		}
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.log(ctx, actorID, t, activity.TypeTaskCreated, fmt.Sprintf("created task %q", t.Name))
	return t, nil
}

// Get fetches a task whose project is visible to actorID.
func (s *Service) Get(ctx context.Context, actorID, id string) (*Task, error) {
	t, _, err := s.load(ctx, actorID, id)
	return t, err
}

// ListByProject lists a visible project's tasks ordered by start date.
func (s *Service) ListByProject(ctx context.Context, actorID, projectID string) ([]Task, error) {
	if _, err := s.projects.Get(ctx, actorID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// ListByAssignee lists personID's tasks in projects visible to actorID.
func (s *Service) ListByAssignee(ctx context.Context, actorID, personID string) ([]Task, error) {
	tasks, err := s.repo.ListByAssignee(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("listing assigned tasks: %w", err)
	}

	visible := make(map[string]bool)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		ok, seen := visible[t.ProjectID]
		if !seen {
			_, err := s.projects.Get(ctx, actorID, t.ProjectID)
			switch {
			case err == nil:
				ok = true
			case errors.Is(err, project.ErrProjectNotFound):
				ok = false
			default:
				return nil, err
			}
			visible[t.ProjectID] = ok
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Update applies a partial update. Only the project owner may update.
func (s *Service) Update(ctx context.Context, actorID string, req UpdateRequest) (*Task, error) {
	current, proj, err := s.load(ctx, actorID, req.ID)
	if err != nil {
		return nil, err
	}
	if !s.projects.Policy().CanMutate(actorID, proj) {
		return nil, ErrForbidden
	}

	updated := *current
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Unassign {
		updated.AssigneeID = nil
	} else if req.AssigneeID != nil {
		updated.AssigneeID = blankToNil(req.AssigneeID)
	}
	if req.StartDate != nil {
		updated.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		updated.EndDate = *req.EndDate
	}
	if req.Status != nil {
		progress, status, err := ResolveProgress(current, nil, *req.Status)
		if err != nil {
			return nil, err
		}
		updated.Progress, updated.Status = progress, status
	}
	if req.Dependencies != nil {
		updated.Dependencies = dedupe(req.Dependencies)
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.validate(ctx, proj, &updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: unknown assignee or dependency", ErrInvalidInput)
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	s.log(ctx, actorID, &updated, activity.TypeTaskUpdated, fmt.Sprintf("updated task %q", updated.Name))
	return &updated, nil
}

// UpdateProgress records progress. The project owner and the task's
// assignee may report progress.
func (s *Service) UpdateProgress(ctx context.Context, actorID string, req ProgressRequest) (*Task, error) {
	current, proj, err := s.load(ctx, actorID, req.ID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateProgress(s.projects.Policy(), actorID, proj, current) {
		return nil, ErrForbidden
	}

	progress, status, err := ResolveProgress(current, req.Progress, req.Status)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Progress = progress
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProgress(ctx, updated.ID, progress, status, updated.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("updating progress: %w", err)
	}

	s.log(ctx, actorID, &updated, activity.TypeTaskProgress,
		fmt.Sprintf("task %q at %d%% (%s)", updated.Name, progress, status))
	return &updated, nil
}

// Delete removes a task. Only the project owner may delete.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	t, proj, err := s.load(ctx, actorID, id)
	if err != nil {
		return err
	}
	if !s.projects.Policy().CanMutate(actorID, proj) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	s.log(ctx, actorID, t, activity.TypeTaskDeleted, fmt.Sprintf("deleted task %q", t.Name))
	return nil
}

// load fetches a task and its project, hiding tasks of invisible projects.
func (s *Service) load(ctx context.Context, actorID, id string) (*Task, *project.Project, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("getting task: %w", err)
	}
	proj, err := s.projects.Get(ctx, actorID, t.ProjectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, err
	}
	return t, proj, nil
}

func (s *Service) mutableProject(ctx context.Context, actorID, projectID string) (*project.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project is required", ErrInvalidInput)
	}
	proj, err := s.projects.Get(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !s.projects.Policy().CanMutate(actorID, proj) {
		return nil, ErrForbidden
	}
	return proj, nil
}

func (s *Service) validate(ctx context.Context, proj *project.Project, t *Task) error {
	if err := ValidateFields(t); err != nil {
		return err
	}
	if err := ValidateWithinProject(t, proj); err != nil {
		return err
	}
	if t.AssigneeID != nil && *t.AssigneeID != proj.OwnerID {
		ok, err := s.projects.IsMember(ctx, proj.ID, *t.AssigneeID)
		if err != nil {
			return fmt.Errorf("checking assignee: %w", err)
		}
		if !ok {
			return ErrAssigneeNotMember
		}
	}
	for _, depID := range t.Dependencies {
		dep, err := s.repo.Get(ctx, depID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: unknown dependency %s", ErrInvalidInput, depID)
		}
		if err != nil {
			return fmt.Errorf("checking dependency: %w", err)
		}
		if dep.ProjectID != proj.ID {
			return fmt.Errorf("%w: dependency %s belongs to another project", ErrInvalidInput, depID)
		}
	}
	return nil
}

func (s *Service) log(ctx context.Context, actorID string, t *Task, typ activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	projectID, taskID := t.ProjectID, t.ID
	err := s.activities.LogActivity(ctx, actorID, &activity.ActivityEntry{
		ProjectID:    &projectID,
		TaskID:       &taskID,
		ActivityType: typ,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to log activity", "type", typ, "task_id", taskID, "error", err)
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
