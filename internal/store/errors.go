package store

import "errors"

// Driver-neutral storage errors. Drivers wrap their native errors so that
// errors.Is matches one of these.
var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrTransient marks failures worth retrying: lock timeouts,
	// serialization failures, deadlocks and busy databases.
	ErrTransient = errors.New("store: transient failure")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }
