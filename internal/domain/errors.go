package domain

import "errors"

// Request-scoped failures of the session lifecycle. All four are terminal
// for the triggering request; the transport and the session stay usable.
var (
	// ErrNotFound - the referenced session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrNotInstructor - the actor is not the owning instructor of the session.
	ErrNotInstructor = errors.New("only the instructor can do that")
	// ErrBadState - the operation is not valid for the session's current status.
	ErrBadState = errors.New("operation not allowed in current session state")
	// ErrSessionFull - the roster is at the configured maximum.
	ErrSessionFull = errors.New("session is full")
)
