package activity

import "errors"

// ErrInvalidInput indicates an activity entry that can't be logged.
var ErrInvalidInput = errors.New("invalid activity input")
