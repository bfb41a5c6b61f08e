package transport

import (
	"errors"
	"net/http"

	"github.com/rpggio/gantry/internal/domain/activity"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/timeline"
)

// StatusFor maps a domain error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isAny(err,
		person.ErrInvalidInput, project.ErrInvalidInput, task.ErrInvalidInput, activity.ErrInvalidInput,
		repository.ErrInvalidInput, timeline.ErrInvalidDate,
		task.ErrOutOfProjectRange, task.ErrAssigneeNotMember,
		project.ErrCannotRemoveOwner, project.ErrCannotRemoveSelf, project.ErrNoOwnedProjects,
	):
		return http.StatusBadRequest
	case isAny(err, project.ErrForbidden, task.ErrForbidden):
		return http.StatusForbidden
	case isAny(err,
		person.ErrPersonNotFound, project.ErrProjectNotFound, task.ErrTaskNotFound,
		project.ErrNotMember, repository.ErrNotFound,
	):
		return http.StatusNotFound
	case isAny(err,
		person.ErrAlreadyExists, project.ErrAlreadyMember, project.ErrTasksOutOfRange,
		repository.ErrConflict,
	):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// publicError renders err for clients. Internal failures get a generic
// retryable message; forbidden is always the same generic text.
func publicError(status int, err error) errorBody {
	switch status {
	case http.StatusInternalServerError:
		return errorBody{Error: "something went wrong, please try again"}
	case http.StatusForbidden:
		return errorBody{Error: "not permitted"}
	default:
		return errorBody{Error: err.Error()}
	}
}
