package person

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/repository"
)

const defaultSearchLimit = 20

// Service handles people and invitations.
type Service struct {
	repo       Repository
	activities ActivityLogger
	logger     *slog.Logger
}

// NewService creates a new person service. activities may be nil.
func NewService(repo Repository, activities ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, activities: activities, logger: logger}
}

// RegisterRequest defines profile creation inputs.
type RegisterRequest struct {
	Email    string
	FullName string
}

// NormalizeEmail lower-cases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidInput
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email %q", ErrInvalidInput, email)
	}
	return email, nil
}

// Register creates a profile and redeems any pending invites for its email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Person, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	now := time.Now().UTC()
	p := &Person{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		p.FullName = &name
	}

	joined, err := s.repo.Register(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating person: %w", err)
	}

	s.log(ctx, p.ID, fmt.Sprintf("registered %s (joined %d projects)", email, joined))
	return p, nil
}

// Get fetches a person by ID.
func (s *Service) Get(ctx context.Context, id string) (*Person, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("getting person: %w", err)
	}
	return p, nil
}

// GetByEmail fetches a person by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Person, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("getting person by email: %w", err)
	}
	return p, nil
}

// Search matches query against the names and emails of everyone registered.
// An empty query lists everyone, up to limit.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Person, error) {
	people, err := s.repo.Search(ctx, strings.TrimSpace(query), searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching people: %w", err)
	}
	return people, nil
}

// SearchTeammates is Search over the people who share a project with actorID.
func (s *Service) SearchTeammates(ctx context.Context, actorID, query string, limit int) ([]Person, error) {
	people, err := s.repo.SearchTeammates(ctx, actorID, strings.TrimSpace(query), searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching teammates: %w", err)
	}
	return people, nil
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	return limit
}

// Invite records a pending invitation for an email without a profile. An
// empty projectID invites to every project invitedBy owns. Inviting the same
// email twice is not an error.
func (s *Service) Invite(ctx context.Context, invitedBy, projectID, email string) (*Invite, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	inv := &Invite{Email: email, InvitedBy: invitedBy, CreatedAt: time.Now().UTC()}
	if projectID != "" {
		inv.ProjectID = &projectID
	}
	if err := s.repo.CreateInvite(ctx, inv); err != nil && !errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("creating invite: %w", err)
	}
	return inv, nil
}

func (s *Service) log(ctx context.Context, actorID, summary string) {
	if s.activities == nil {
		return
	}
	err := s.activities.LogActivity(ctx, actorID, &activity.ActivityEntry{
		ActivityType: activity.TypePersonRegistered,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to log activity", "type", activity.TypePersonRegistered, "error", err)
	}
}
