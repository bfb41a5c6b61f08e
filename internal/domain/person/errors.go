package person

import "errors"

var (
	// ErrPersonNotFound indicates the person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")
	// ErrInvalidInput indicates invalid person input.
	ErrInvalidInput = errors.New("invalid person input")
	// ErrAlreadyExists indicates a profile with the same email exists.
	ErrAlreadyExists = errors.New("person already exists")
)
