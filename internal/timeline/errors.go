package timeline

import "errors"

// Edit operations classify every failure into one of these categories so
// callers (the HTTP layer, the tray) can map them to user-facing outcomes
// with errors.Is. Operations validate eagerly: when an error is returned
// the project is guaranteed to be unchanged.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoActiveProject = errors.New("no active project")
	ErrConflict        = errors.New("placement conflicts with existing clip")
	ErrUnimplemented   = errors.New("not implemented")
)
