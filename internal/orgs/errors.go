package orgs

import "errors"

// Domain error taxonomy surfaced to the HTTP boundary. Conflicts come
// straight from the registry (registry.ErrNameConflict / ErrEmailConflict).
var (
	ErrNotFound = errors.New("orgs: organization not found")
	// ErrUnauthorized deliberately covers every authentication failure
	// cause; callers must not be able to tell which check failed.
	ErrUnauthorized = errors.New("orgs: unauthorized")
	// ErrForbidden means authenticated but scoped to a different tenant.
	ErrForbidden = errors.New("orgs: forbidden")
	// ErrUnavailable is transient; retrying the whole operation is safe.
	ErrUnavailable = errors.New("orgs: store unavailable")
	// ErrInconsistent means metadata and the physical store disagree.
	// Fatal for the operation: logged, never auto-healed.
	ErrInconsistent = errors.New("orgs: metadata and partition store disagree")
)
