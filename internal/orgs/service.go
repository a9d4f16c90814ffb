// Package orgs composes the registry, partition manager, credential store
// and token service into the organization lifecycle operations.
//
// Each operation is a short-lived saga over non-transactional primitives:
// the physical partition op cannot share a transaction with the metadata
// write, so step ordering bounds the inconsistency window and keeps every
// failure mode retryable or at least observable.
package orgs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"orgsvc/internal/credentials"
	"orgsvc/internal/partition"
	"orgsvc/internal/registry"
	"orgsvc/internal/token"
	"orgsvc/pkg/ident"
)

type Service struct {
	reg    registry.Registry
	parts  partition.Manager
	tokens *token.Service
	log    *zap.SugaredLogger
}

func NewService(reg registry.Registry, parts partition.Manager, tokens *token.Service, log *zap.SugaredLogger) *Service {
	return &Service{reg: reg, parts: parts, tokens: tokens, log: log}
}

// Create provisions an organization together with its single administrator
// and its physical partition.
//
// Order: tenant row, admin row, admin backfill, partition. Any later step
// failing compensates by deleting what the earlier steps wrote, so a
// failed Create leaves no orphaned metadata. The registry's unique
// indexes stay the authority on name/email uniqueness; the FindByName
// pre-check is only a fast path.
func (s *Service) Create(ctx context.Context, name, adminEmail, adminPassword string) (*registry.Tenant, error) {
	if _, err := s.reg.FindByName(ctx, name); err == nil {
		return nil, registry.ErrNameConflict
	} else if !errors.Is(err, registry.ErrNotFound) {
		return nil, s.classify(err)
	}

	hash, err := credentials.Hash(adminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	partitionID := partition.DeriveID(name)
	t, err := s.reg.Insert(ctx, name, partitionID)
	if err != nil {
		return nil, s.classify(err)
	}

	admin, err := s.reg.InsertAdmin(ctx, adminEmail, hash, t.ID)
	if err != nil {
		s.compensate(ctx, "create: admin insert failed", t.ID, false)
		return nil, s.classify(err)
	}

	if err := s.reg.UpdateFields(ctx, t.ID, registry.TenantPatch{AdminID: &admin.ID}); err != nil {
		s.compensate(ctx, "create: admin backfill failed", t.ID, true)
		return nil, s.classify(err)
	}

	if err := s.parts.Create(ctx, partitionID); err != nil {
		s.compensate(ctx, "create: partition create failed", t.ID, true)
		if errors.Is(err, partition.ErrAlreadyExists) {
			// A stray partition nothing in metadata claimed; do not adopt it.
			s.log.Errorw("stray partition found during create", "partition", partitionID)
			return nil, ErrInconsistent
		}
		return nil, s.classify(err)
	}

	return s.reg.FindByID(ctx, t.ID)
}

// Get is a pure lookup by display name.
func (s *Service) Get(ctx context.Context, name string) (*registry.Tenant, error) {
	t, err := s.reg.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.classify(err)
	}
	return t, nil
}

// Authenticate verifies an administrator's credentials and issues a token
// scoped to their organization. Unknown email and wrong password are
// indistinguishable from the outside.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	admin, err := s.reg.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", s.classify(err)
	}
	if !credentials.Verify(password, admin.PasswordHash) {
		return "", ErrUnauthorized
	}
	tok, err := s.tokens.Issue(admin.ID, admin.TenantID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// Delete destroys an organization, its partition and its administrator.
// Only the organization itself may delete itself.
//
// The partition is dropped before any metadata row, so metadata never
// visibly outlives the data. A transient drop failure aborts before any
// mutation; the whole operation is safe to retry.
func (s *Service) Delete(ctx context.Context, name string, caller ident.ID) error {
	t, err := s.reg.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ErrNotFound
		}
		return s.classify(err)
	}
	if t.ID != caller {
		return ErrForbidden
	}

	if err := s.parts.Drop(ctx, t.PartitionID); err != nil {
		if errors.Is(err, partition.ErrNotFound) {
			s.log.Errorw("partition missing where metadata says present",
				"org", t.ID, "partition", t.PartitionID)
			return ErrInconsistent
		}
		return s.classify(err)
	}
	if err := s.reg.Delete(ctx, t.ID); err != nil {
		return s.classify(err)
	}
	if err := s.reg.DeleteAdminsOf(ctx, t.ID); err != nil {
		return s.classify(err)
	}
	return nil
}

// Rename swaps an organization's display name and partition id together.
//
// The partition is renamed before the metadata update: a transient
// failure there leaves old metadata pointing at the still-unrenamed
// partition — consistent, just not yet renamed, safe to retry.
func (s *Service) Rename(ctx context.Context, name, newName string, caller ident.ID) (*registry.Tenant, error) {
	t, err := s.reg.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.classify(err)
	}
	if t.ID != caller {
		return nil, ErrForbidden
	}
	if newName == "" || newName == name {
		return t, nil
	}
	if _, err := s.reg.FindByName(ctx, newName); err == nil {
		return nil, registry.ErrNameConflict
	} else if !errors.Is(err, registry.ErrNotFound) {
		return nil, s.classify(err)
	}

	newPartitionID := partition.DeriveID(newName)
	if err := s.parts.Rename(ctx, t.PartitionID, newPartitionID); err != nil {
		switch {
		case errors.Is(err, partition.ErrNotFound):
			s.log.Errorw("partition missing where metadata says present",
				"org", t.ID, "partition", t.PartitionID)
			return nil, ErrInconsistent
		case errors.Is(err, partition.ErrAlreadyExists):
			s.log.Errorw("stray partition blocks rename",
				"org", t.ID, "partition", newPartitionID)
			return nil, ErrInconsistent
		}
		return nil, s.classify(err)
	}

	patch := registry.TenantPatch{Name: &newName, PartitionID: &newPartitionID}
	if err := s.reg.UpdateFields(ctx, t.ID, patch); err != nil {
		// Lost the metadata race after the physical rename: rename the
		// partition back so metadata and store agree again.
		if rbErr := s.parts.Rename(ctx, newPartitionID, t.PartitionID); rbErr != nil {
			s.log.Errorw("rename rollback failed; partition and metadata disagree",
				"org", t.ID, "partition", newPartitionID, "err", rbErr)
		}
		return nil, s.classify(err)
	}

	return s.reg.FindByID(ctx, t.ID)
}

// compensate removes the tenant row (and optionally its admins) written by
// earlier saga steps. Compensation failures are logged as inconsistencies;
// they never mask the original error.
func (s *Service) compensate(ctx context.Context, reason string, tenantID ident.ID, admins bool) {
	if admins {
		if err := s.reg.DeleteAdminsOf(ctx, tenantID); err != nil {
			s.log.Errorw("compensation failed: orphaned admin rows",
				"reason", reason, "org", tenantID, "err", err)
		}
	}
	if err := s.reg.Delete(ctx, tenantID); err != nil && !errors.Is(err, registry.ErrNotFound) {
		s.log.Errorw("compensation failed: orphaned tenant row",
			"reason", reason, "org", tenantID, "err", err)
	}
}

// classify maps store-layer errors onto the boundary taxonomy, keeping
// conflicts typed and everything transient marked retryable.
func (s *Service) classify(err error) error {
	switch {
	case errors.Is(err, registry.ErrNameConflict),
		errors.Is(err, registry.ErrEmailConflict):
		return err
	case errors.Is(err, registry.ErrUnavailable),
		errors.Is(err, partition.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
