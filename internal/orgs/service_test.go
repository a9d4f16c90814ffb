package orgs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orgsvc/internal/partition"
	"orgsvc/internal/registry"
	"orgsvc/internal/token"
	"orgsvc/pkg/ident"
)

type fixture struct {
	reg    registry.Registry
	parts  partition.Manager
	tokens *token.Service
	svc    *Service
}

func newFixture() *fixture {
	reg := registry.NewMemoryRegistry()
	parts := partition.NewMemoryManager()
	tokens := token.NewService("service-test-secret", 30*time.Minute)
	return &fixture{
		reg:    reg,
		parts:  parts,
		tokens: tokens,
		svc:    NewService(reg, parts, tokens, zap.NewNop().Sugar()),
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)
	assert.Equal(t, partition.DeriveID("Acme"), created.PartitionID)
	assert.False(t, created.AdminID.IsZero(), "admin reference must be backfilled")
	assert.True(t, partition.Has(f.parts, "org_acme"))

	got, err := f.svc.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.PartitionID, got.PartitionID)

	admin, err := f.reg.FindAdminByEmail(ctx, "admin@acme.test")
	require.NoError(t, err)
	assert.Equal(t, created.AdminID, admin.ID)
	assert.Equal(t, created.ID, admin.TenantID)
}

func TestConcurrentCreateExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	const n = 8
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := f.svc.Create(ctx, "Acme", fmt.Sprintf("admin%d@acme.test", i), "longenough")
			results <- err
		}(i)
	}

	var ok, conflict int
	for i := 0; i < n; i++ {
		err := <-results
		switch {
		case err == nil:
			ok++
		case errors.Is(err, registry.ErrNameConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one concurrent create must win")
	assert.Equal(t, n-1, conflict)

	_, err := f.svc.Get(ctx, "Acme")
	assert.NoError(t, err)
	assert.True(t, partition.Has(f.parts, "org_acme"))
}

func TestCreateDuplicateNameConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, "Acme", "a@acme.test", "longenough")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "Acme", "b@acme.test", "longenough")
	assert.ErrorIs(t, err, registry.ErrNameConflict)
}

func TestCreateEmailConflictLeavesNoOrphan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, "Acme", "shared@admin.test", "longenough")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "Globex", "shared@admin.test", "longenough")
	require.ErrorIs(t, err, registry.ErrEmailConflict)

	// The tenant row inserted before the admin conflict must be compensated
	// away, and no partition created.
	_, err = f.svc.Get(ctx, "Globex")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, partition.Has(f.parts, "org_globex"))
}

func TestCreatePartitionFailureLeavesNoRows(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemoryRegistry()
	parts := partition.NewFailingMemoryManager(partition.ErrUnavailable)
	tokens := token.NewService("service-test-secret", 30*time.Minute)
	svc := NewService(reg, parts, tokens, zap.NewNop().Sugar())

	_, err := svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = reg.FindByName(ctx, "Acme")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	_, err = reg.FindAdminByEmail(ctx, "admin@acme.test")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)

	raw, err := f.svc.Authenticate(ctx, "admin@acme.test", "longenough")
	require.NoError(t, err)

	claims, err := f.tokens.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.TenantID)
	assert.Equal(t, created.AdminID, claims.SubjectID)
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)

	_, wrongPass := f.svc.Authenticate(ctx, "admin@acme.test", "wrong-password")
	_, noSuchEmail := f.svc.Authenticate(ctx, "nobody@nowhere.test", "longenough")

	assert.ErrorIs(t, wrongPass, ErrUnauthorized)
	assert.ErrorIs(t, noSuchEmail, ErrUnauthorized)
	assert.Equal(t, wrongPass, noSuchEmail, "both failure causes must be the same error value")
}

func TestDeleteSelfOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	acme, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)
	globex, err := f.svc.Create(ctx, "Globex", "admin@globex.test", "longenough")
	require.NoError(t, err)

	// Globex may not delete Acme, and nothing moves.
	err = f.svc.Delete(ctx, "Acme", globex.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, "Acme")
	assert.NoError(t, err)
	assert.True(t, partition.Has(f.parts, "org_acme"))

	// Acme deletes itself: metadata, partition and admin all go.
	require.NoError(t, f.svc.Delete(ctx, "Acme", acme.ID))
	_, err = f.svc.Get(ctx, "Acme")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, partition.Has(f.parts, "org_acme"))
	_, err = f.svc.Authenticate(ctx, "admin@acme.test", "longenough")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteNotFound(t *testing.T) {
	f := newFixture()
	err := f.svc.Delete(context.Background(), "Nope", ident.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingPartitionInconsistent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	acme, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)
	require.NoError(t, f.parts.Drop(ctx, "org_acme"))

	err = f.svc.Delete(ctx, "Acme", acme.ID)
	require.ErrorIs(t, err, ErrInconsistent)

	// Not auto-healed: the metadata row stays for an operator to look at.
	_, err = f.svc.Get(ctx, "Acme")
	assert.NoError(t, err)
}

func TestRenameFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	acme, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)

	renamed, err := f.svc.Rename(ctx, "Acme", "Acme Corp", acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", renamed.Name)
	assert.Equal(t, partition.DeriveID("Acme Corp"), renamed.PartitionID)

	_, err = f.svc.Get(ctx, "Acme")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := f.svc.Get(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "org_acme_corp", got.PartitionID)

	// The old partition was renamed through, not copied.
	assert.False(t, partition.Has(f.parts, "org_acme"))
	assert.True(t, partition.Has(f.parts, "org_acme_corp"))
	assert.ErrorIs(t, f.parts.Drop(ctx, "org_acme"), partition.ErrNotFound)
}

func TestRenameNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	acme, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)

	same, err := f.svc.Rename(ctx, "Acme", "Acme", acme.ID)
	require.NoError(t, err)
	assert.Equal(t, acme.ID, same.ID)
	assert.Equal(t, "org_acme", same.PartitionID)

	same, err = f.svc.Rename(ctx, "Acme", "", acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", same.Name)
	assert.True(t, partition.Has(f.parts, "org_acme"))
}

func TestRenameTargetTaken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	acme, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "Globex", "admin@globex.test", "longenough")
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, "Acme", "Globex", acme.ID)
	assert.ErrorIs(t, err, registry.ErrNameConflict)
	assert.True(t, partition.Has(f.parts, "org_acme"))
}

// renameRaceRegistry fails the name+partition patch as if a racing insert
// took the new name between the pre-check and the update; every other call
// passes through.
type renameRaceRegistry struct {
	registry.Registry
}

func (r *renameRaceRegistry) UpdateFields(ctx context.Context, id ident.ID, patch registry.TenantPatch) error {
	if patch.Name != nil {
		return registry.ErrNameConflict
	}
	return r.Registry.UpdateFields(ctx, id, patch)
}

func TestRenameMetadataRaceRollsBackPartition(t *testing.T) {
	ctx := context.Background()
	reg := &renameRaceRegistry{Registry: registry.NewMemoryRegistry()}
	parts := partition.NewMemoryManager()
	tokens := token.NewService("service-test-secret", 30*time.Minute)
	svc := NewService(reg, parts, tokens, zap.NewNop().Sugar())

	acme, err := svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, "Acme", "Acme Corp", acme.ID)
	require.ErrorIs(t, err, registry.ErrNameConflict)

	// The physical rename happened first; losing the metadata race must
	// rename the partition back so metadata and store still agree.
	assert.True(t, partition.Has(parts, "org_acme"))
	assert.False(t, partition.Has(parts, "org_acme_corp"))

	got, err := svc.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "org_acme", got.PartitionID)
}

func TestRenameForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, "Acme", "admin@acme.test", "longenough")
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, "Acme", "Evil Corp", ident.New())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.True(t, partition.Has(f.parts, "org_acme"))
}
