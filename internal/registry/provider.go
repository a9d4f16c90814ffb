// Package registry owns tenant and administrator metadata records.
// All mutation goes through a Registry; no other component holds a
// mutable copy of either record type.
package registry

import (
	"context"
	"errors"

	"orgsvc/pkg/ident"
)

var (
	// ErrNameConflict / ErrEmailConflict are enforced by the storage layer
	// (unique indexes); application-level pre-checks are a fast path only.
	ErrNameConflict  = errors.New("registry: organization name already exists")
	ErrEmailConflict = errors.New("registry: admin email already registered")
	ErrNotFound      = errors.New("registry: not found")
	ErrUnavailable   = errors.New("registry: store unavailable")
)

type Registry interface {
	FindByName(ctx context.Context, name string) (*Tenant, error)
	FindByID(ctx context.Context, id ident.ID) (*Tenant, error)

	// Insert assigns an id and creation timestamp. The admin reference is
	// left zero and backfilled via UpdateFields once the admin row exists.
	// Fails with ErrNameConflict when the name is taken, even under a
	// racing insert.
	Insert(ctx context.Context, name, partitionID string) (*Tenant, error)
	UpdateFields(ctx context.Context, id ident.ID, patch TenantPatch) error
	Delete(ctx context.Context, id ident.ID) error

	// Administrator sub-API. Email uniqueness is global.
	FindAdminByEmail(ctx context.Context, email string) (*Admin, error)
	InsertAdmin(ctx context.Context, email, passwordHash string, tenantID ident.ID) (*Admin, error)
	DeleteAdminsOf(ctx context.Context, tenantID ident.ID) error
}
