package task

import (
	"fmt"
	"strings"

	"github.com/rpggio/gantry/internal/domain/project"
)

// ValidateFields checks the fields every stored task must satisfy.
func ValidateFields(t *Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if !t.Range().Ordered() {
		return fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}
	if err := ValidateProgress(t.Progress); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, t.Status)
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("%w: a task cannot depend on itself", ErrInvalidInput)
		}
	}
	return nil
}

// ValidateProgress checks that progress is a percentage.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

// ValidateWithinProject checks that the task's dates lie inside the project's.
func ValidateWithinProject(t *Task, p *project.Project) error {
	if !p.Range().Covers(t.Range()) {
		return fmt.Errorf("%w: %s..%s is outside %s..%s",
			ErrOutOfProjectRange, t.StartDate, t.EndDate, p.StartDate, p.EndDate)
	}
	return nil
}

// ResolveProgress fills in whichever of progress and status the caller left
// out so the two stay consistent.
func ResolveProgress(current *Task, progress *int, status Status) (int, Status, error) {
	switch {
	case progress == nil && status == "":
		return 0, "", fmt.Errorf("%w: progress or status is required", ErrInvalidInput)
	case progress != nil && status != "":
		if err := ValidateProgress(*progress); err != nil {
			return 0, "", err
		}
		if !status.Valid() {
			return 0, "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		return *progress, status, nil
	case progress != nil:
		if err := ValidateProgress(*progress); err != nil {
			return 0, "", err
		}
		switch {
		case *progress == 100:
			return 100, StatusCompleted, nil
		case *progress > 0:
			return *progress, StatusInProgress, nil
		default:
			return 0, StatusNotStarted, nil
		}
	default:
		if !status.Valid() {
			return 0, "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		switch status {
		case StatusCompleted:
			return 100, status, nil
		case StatusInProgress:
			return max(current.Progress, 1), status, nil
		case StatusNotStarted:
			return 0, status, nil
		default:
			return current.Progress, status, nil
		}
	}
}

// CanUpdateProgress reports whether actorID may report progress on t: anyone
// the policy lets mutate the project, and the task's assignee.
func CanUpdateProgress(policy project.Policy, actorID string, p *project.Project, t *Task) bool {
	return policy.CanMutate(actorID, p) || t.IsAssignedTo(actorID)
}
