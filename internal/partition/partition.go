// Package partition manages the physical per-organization data partitions
// (dynamic collections in the master database).
package partition

import (
	"context"
	"errors"
	"strings"
)

// partitionPrefix namespaces every partition. DeriveID must stay
// byte-for-byte stable: the registry and the physical store both depend
// on the same transform of the organization name.
const partitionPrefix = "org_"

var (
	// ErrUnavailable marks a transient store failure; retrying may help.
	ErrUnavailable = errors.New("partition: store unavailable")
	// ErrAlreadyExists and ErrNotFound are logic errors, not retryable.
	ErrAlreadyExists = errors.New("partition: already exists")
	ErrNotFound      = errors.New("partition: not found")
)

// DeriveID maps an organization display name to its partition identifier:
// lower-cased, spaces replaced with underscores, namespace prefix applied.
// Pure and deterministic.
func DeriveID(name string) string {
	return partitionPrefix + strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Manager operates on the physical partition namespace.
type Manager interface {
	Create(ctx context.Context, partitionID string) error
	Rename(ctx context.Context, oldID, newID string) error
	Drop(ctx context.Context, partitionID string) error
}
