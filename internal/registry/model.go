package registry

import (
	"time"

	"orgsvc/pkg/ident"
)

// Tenant is the metadata record for one organization. PartitionID is
// always the derived transform of the current Name; lifecycle operations
// keep the two in sync.
type Tenant struct {
	ID          ident.ID  `json:"id"`
	Name        string    `json:"name"`
	PartitionID string    `json:"partition_id"`
	AdminID     ident.ID  `json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Admin is the single credentialed user of a tenant. Email uniqueness is
// global across all tenants.
type Admin struct {
	ID           ident.ID
	Email        string
	PasswordHash string
	TenantID     ident.ID
}

// TenantPatch is a partial update; nil fields are left unchanged.
// Name and PartitionID are always patched together on rename.
type TenantPatch struct {
	Name        *string
	PartitionID *string
	AdminID     *ident.ID
}
