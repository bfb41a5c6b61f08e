package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/timeline"
)

// Service handles project and membership operations.
type Service struct {
	repo       Repository
	people     People
	activities ActivityLogger
	policy     Policy
	logger     *slog.Logger
}

// NewService creates a new project service using OwnerPolicy. activities may be nil.
func NewService(repo Repository, people People, activities ActivityLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		people:     people,
		activities: activities,
		policy:     OwnerPolicy{},
		logger:     logger,
	}
}

// Policy returns the mutation policy in force.
func (s *Service) Policy() Policy {
	return s.policy
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name        string
	Description string
	StartDate   timeline.Date
	EndDate     timeline.Date
}

// UpdateRequest defines a partial project update. Nil fields are left alone.
type UpdateRequest struct {
	ID          string
	Name        *string
	Description *string
	StartDate   *timeline.Date
	EndDate     *timeline.Date
	// ClampTasks pulls tasks inside shrunk dates instead of rejecting the update.
	ClampTasks bool
}

func validate(name string, r timeline.DateRange) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if !r.Valid() {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidInput)
	}
	return nil
}

// Create creates a project owned by actorID.
func (s *Service) Create(ctx context.Context, actorID string, req CreateRequest) (*Project, error) {
	if err := validate(req.Name, timeline.DateRange{Start: req.StartDate, End: req.EndDate}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	proj := &Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     actorID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: unknown owner", ErrInvalidInput)
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.log(ctx, actorID, proj.ID, activity.TypeProjectCreated, fmt.Sprintf("created project %q", proj.Name))
	return proj, nil
}

// Get fetches a project visible to actorID.
func (s *Service) Get(ctx context.Context, actorID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if proj.OwnerID == actorID {
		return proj, nil
	}
	ok, err := s.repo.IsMember(ctx, id, actorID)
	if err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	return proj, nil
}

// getMutable fetches a project and checks that actorID may change it.
func (s *Service) getMutable(ctx context.Context, actorID, id string) (*Project, error) {
	proj, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanMutate(actorID, proj) {
		return nil, ErrForbidden
	}
	return proj, nil
}

// List returns summaries of the projects actorID owns or belongs to.
func (s *Service) List(ctx context.Context, actorID string) ([]Summary, error) {
	summaries, err := s.repo.ListVisible(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return summaries, nil
}

// IsMember reports whether personID belongs to the project.
func (s *Service) IsMember(ctx context.Context, projectID, personID string) (bool, error) {
	return s.repo.IsMember(ctx, projectID, personID)
}

// Update applies a partial update. Only the owner may update.
func (s *Service) Update(ctx context.Context, actorID string, req UpdateRequest) (*Project, error) {
	current, err := s.getMutable(ctx, actorID, req.ID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.StartDate != nil {
		updated.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		updated.EndDate = *req.EndDate
	}
	if err := validate(updated.Name, updated.Range()); err != nil {
		return nil, err
	}

	clamp := false
	if !updated.Range().Covers(current.Range()) {
		outside, err := s.repo.CountTasksOutside(ctx, updated.ID, updated.Range())
		if err != nil {
			return nil, fmt.Errorf("checking task dates: %w", err)
		}
		if outside > 0 {
			if !req.ClampTasks {
				return nil, fmt.Errorf("%w: %d task(s)", ErrTasksOutOfRange, outside)
			}
			clamp = true
		}
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, &updated, clamp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.log(ctx, actorID, updated.ID, activity.TypeProjectUpdated, fmt.Sprintf("updated project %q", updated.Name))
	return &updated, nil
}

// Delete removes a project with its memberships and tasks. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	proj, err := s.getMutable(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	s.log(ctx, actorID, id, activity.TypeProjectDeleted, fmt.Sprintf("deleted project %q", proj.Name))
	return nil
}

// ListMembers returns the project's members, owner first.
func (s *Service) ListMembers(ctx context.Context, actorID, projectID string) ([]Member, error) {
	if _, err := s.Get(ctx, actorID, projectID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

// AddMember adds the person with the given email to a project. An email
// with no profile yet is recorded as an invite to this project only.
func (s *Service) AddMember(ctx context.Context, actorID, projectID, email string) (*AddMemberResult, error) {
	proj, err := s.getMutable(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}

	p, err := s.people.GetByEmail(ctx, email)
	if errors.Is(err, person.ErrPersonNotFound) {
		return s.invite(ctx, actorID, proj, proj.ID, email)
	}
	if err != nil {
		return nil, mapPersonErr(err)
	}

	if err := s.addMember(ctx, proj, p); err != nil {
		return nil, err
	}
	return &AddMemberResult{Status: StatusAdded, Person: p, Projects: 1}, nil
}

func (s *Service) addMember(ctx context.Context, proj *Project, p *person.Person) error {
	if p.ID == proj.OwnerID {
		return ErrAlreadyMember
	}
	if err := s.repo.AddMember(ctx, proj.ID, p.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrAlreadyMember
		}
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("adding member: %w", err)
	}
	s.log(ctx, proj.OwnerID, proj.ID, activity.TypeMemberAdded, fmt.Sprintf("added %s to %q", p.Email, proj.Name))
	return nil
}

// invite records an invite to scope, or to all of actorID's projects when
// scope is empty. The activity entry is filed under proj.
func (s *Service) invite(ctx context.Context, actorID string, proj *Project, scope, email string) (*AddMemberResult, error) {
	inv, err := s.people.Invite(ctx, actorID, scope, email)
	if err != nil {
		return nil, mapPersonErr(err)
	}
	s.log(ctx, actorID, proj.ID, activity.TypeMemberInvited, fmt.Sprintf("invited %s", inv.Email))
	return &AddMemberResult{Status: StatusInvited, Invite: inv}, nil
}

// RemoveMember removes a person from a project. Their tasks in the project
// stay, unassigned.
func (s *Service) RemoveMember(ctx context.Context, actorID, projectID, personID string) error {
	proj, err := s.getMutable(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	return s.removeMember(ctx, proj, personID)
}

func (s *Service) removeMember(ctx context.Context, proj *Project, personID string) error {
	if personID == proj.OwnerID {
		return ErrCannotRemoveOwner
	}
	if err := s.repo.RemoveMember(ctx, proj.ID, personID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("removing member: %w", err)
	}
	s.log(ctx, proj.OwnerID, proj.ID, activity.TypeMemberRemoved, fmt.Sprintf("removed %s from %q", personID, proj.Name))
	return nil
}

// AddMemberToOwnedProjects adds the person with the given email to every
// project actorID owns. Unknown emails are invited; the invite is redeemed
// against all of the inviter's projects on registration.
func (s *Service) AddMemberToOwnedProjects(ctx context.Context, actorID, email string) (*AddMemberResult, error) {
	owned, err := s.repo.ListOwned(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("listing owned projects: %w", err)
	}
	if len(owned) == 0 {
		return nil, ErrNoOwnedProjects
	}

	p, err := s.people.GetByEmail(ctx, email)
	if errors.Is(err, person.ErrPersonNotFound) {
		return s.invite(ctx, actorID, &owned[0], "", email)
	}
	if err != nil {
		return nil, mapPersonErr(err)
	}
	if p.ID == actorID {
		return nil, ErrAlreadyMember
	}

	added := 0
	for i := range owned {
		err := s.addMember(ctx, &owned[i], p)
		if errors.Is(err, ErrAlreadyMember) {
			continue
		}
		if err != nil {
			return nil, err
		}
		added++
	}
	if added == 0 {
		return nil, ErrAlreadyMember
	}
	return &AddMemberResult{Status: StatusAdded, Person: p, Projects: added}, nil
}

// RemoveMemberFromOwnedProjects removes a person from every project actorID
// owns and returns how many memberships were removed.
func (s *Service) RemoveMemberFromOwnedProjects(ctx context.Context, actorID, personID string) (int, error) {
	if personID == actorID {
		return 0, ErrCannotRemoveSelf
	}
	owned, err := s.repo.ListOwned(ctx, actorID)
	if err != nil {
		return 0, fmt.Errorf("listing owned projects: %w", err)
	}

	removed := 0
	for i := range owned {
		err := s.removeMember(ctx, &owned[i], personID)
		if errors.Is(err, ErrNotMember) {
			continue
		}
		if err != nil {
			return removed, err
		}
		removed++
	}
	if removed == 0 {
		return 0, ErrNotMember
	}
	return removed, nil
}

func mapPersonErr(err error) error {
	if errors.Is(err, person.ErrInvalidInput) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fmt.Errorf("looking up person: %w", err)
}

func (s *Service) log(ctx context.Context, actorID, projectID string, typ activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	err := s.activities.LogActivity(ctx, actorID, &activity.ActivityEntry{
		ProjectID:    &projectID,
		ActivityType: typ,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to log activity", "type", typ, "project_id", projectID, "error", err)
	}
}
