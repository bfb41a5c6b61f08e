package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist or isn't visible to the caller.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrForbidden indicates the caller may read the project but not change it.
	ErrForbidden = errors.New("only the project owner can do this")
	// ErrAlreadyMember indicates the person already belongs to the project.
	ErrAlreadyMember = errors.New("already a member")
	// ErrNotMember indicates the person doesn't belong to the project.
	ErrNotMember = errors.New("not a member")
	// ErrCannotRemoveOwner indicates an attempt to remove the owner's membership.
	ErrCannotRemoveOwner = errors.New("cannot remove the project owner")
	// ErrCannotRemoveSelf indicates an owner removing themself from their team.
	ErrCannotRemoveSelf = errors.New("cannot remove yourself")
	// ErrNoOwnedProjects indicates a team operation by someone who owns no projects.
	ErrNoOwnedProjects = errors.New("create a project first")
	// ErrTasksOutOfRange indicates a date change that would leave tasks outside the project.
	ErrTasksOutOfRange = errors.New("tasks fall outside the new project dates")
)
