// internal/registry/memory.go
package registry

import (
	"context"
	"sync"
	"time"

	"orgsvc/pkg/ident"
)

// memRegistry mirrors the mongo registry's constraints (unique name,
// globally unique email) under a mutex. Used for dev and tests.
type memRegistry struct {
	mu      sync.Mutex
	tenants map[string]Tenant // key: id hex
	admins  map[string]Admin  // key: id hex
}

func NewMemoryRegistry() Registry {
	return &memRegistry{tenants: map[string]Tenant{}, admins: map[string]Admin{}}
}

func (m *memRegistry) FindByName(ctx context.Context, name string) (*Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Name == name {
			tt := t
			return &tt, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRegistry) FindByID(ctx context.Context, id ident.ID) (*Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tenants[id.String()]; ok {
		tt := t
		return &tt, nil
	}
	return nil, ErrNotFound
}

func (m *memRegistry) Insert(ctx context.Context, name, partitionID string) (*Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Name == name {
			return nil, ErrNameConflict
		}
	}
	t := Tenant{
		ID:          ident.New(),
		Name:        name,
		PartitionID: partitionID,
		CreatedAt:   time.Now().UTC(),
	}
	m.tenants[t.ID.String()] = t
	return &t, nil
}

func (m *memRegistry) UpdateFields(ctx context.Context, id ident.ID, patch TenantPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id.String()]
	if !ok {
		return ErrNotFound
	}
	if patch.Name != nil {
		for _, other := range m.tenants {
			if other.Name == *patch.Name && other.ID != t.ID {
				return ErrNameConflict
			}
		}
		t.Name = *patch.Name
	}
	if patch.PartitionID != nil {
		t.PartitionID = *patch.PartitionID
	}
	if patch.AdminID != nil {
		t.AdminID = *patch.AdminID
	}
	m.tenants[id.String()] = t
	return nil
}

func (m *memRegistry) Delete(ctx context.Context, id ident.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[id.String()]; !ok {
		return ErrNotFound
	}
	delete(m.tenants, id.String())
	return nil
}

func (m *memRegistry) FindAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			aa := a
			return &aa, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRegistry) InsertAdmin(ctx context.Context, email, passwordHash string, tenantID ident.ID) (*Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			return nil, ErrEmailConflict
		}
	}
	a := Admin{
		ID:           ident.New(),
		Email:        email,
		PasswordHash: passwordHash,
		TenantID:     tenantID,
	}
	m.admins[a.ID.String()] = a
	return &a, nil
}

func (m *memRegistry) DeleteAdminsOf(ctx context.Context, tenantID ident.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.admins {
		if a.TenantID == tenantID {
			delete(m.admins, id)
		}
	}
	return nil
}
