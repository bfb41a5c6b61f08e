package task

import "errors"

var (
	// ErrTaskNotFound indicates the task doesn't exist or isn't visible to the caller.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidInput indicates invalid task input.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrForbidden indicates the caller may not change the task.
	ErrForbidden = errors.New("not allowed to change this task")
	// ErrOutOfProjectRange indicates task dates outside the project's dates.
	ErrOutOfProjectRange = errors.New("task dates fall outside the project")
	// ErrAssigneeNotMember indicates an assignee who isn't a project member.
	ErrAssigneeNotMember = errors.New("assignee is not a project member")
)
