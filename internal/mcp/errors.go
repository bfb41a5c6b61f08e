package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/timeline"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// that have no public mapping.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, errUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for visible IDs"}
	case errors.Is(err, task.ErrTaskNotFound):
		return &APIError{Code: "TASK_NOT_FOUND", Message: "task not found", RecoveryHint: "Call list_tasks for visible IDs"}
	case errors.Is(err, person.ErrPersonNotFound), errors.Is(err, project.ErrNotMember):
		return &APIError{Code: "PERSON_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, project.ErrForbidden), errors.Is(err, task.ErrForbidden):
		return &APIError{Code: "FORBIDDEN", Message: err.Error(), RecoveryHint: "Only the project owner can change it"}
	case errors.Is(err, project.ErrAlreadyMember):
		return &APIError{Code: "ALREADY_MEMBER", Message: "already a member"}
	case errors.Is(err, project.ErrCannotRemoveOwner), errors.Is(err, project.ErrCannotRemoveSelf):
		return &APIError{Code: "INVALID_MEMBER", Message: err.Error()}
	case errors.Is(err, project.ErrNoOwnedProjects):
		return &APIError{Code: "NO_OWNED_PROJECTS", Message: err.Error(), RecoveryHint: "Call create_project first"}
	case errors.Is(err, project.ErrTasksOutOfRange), errors.Is(err, task.ErrOutOfProjectRange):
		return &APIError{Code: "OUT_OF_RANGE", Message: err.Error(), RecoveryHint: "Keep task dates inside the project dates"}
	case errors.Is(err, task.ErrAssigneeNotMember):
		return &APIError{Code: "ASSIGNEE_NOT_MEMBER", Message: err.Error(), RecoveryHint: "Call add_member first"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, person.ErrInvalidInput), errors.Is(err, timeline.ErrInvalidDate):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "not found"}
	default:
		return nil
	}
}

func invalidInput(format string, args ...any) *APIError {
	return &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf(format, args...)}
}
