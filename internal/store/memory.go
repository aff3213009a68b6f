package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is a Store kept in process memory. It enforces the same
// uniqueness rules as the Postgres schema.
type Memory struct {
	mu         sync.RWMutex
	identities map[int64]Identity
	hooks      map[int64]Hook
	nextUserID int64
	nextHookID int64
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		identities: make(map[int64]Identity),
		hooks:      make(map[int64]Hook),
		nextUserID: 1,
		nextHookID: 1,
	}
}

// LookupIdentity returns a copy of the identity named name.
func (m *Memory) LookupIdentity(_ context.Context, name string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, identity := range m.identities {
		if identity.Name == name {
			return &identity, nil
		}
	}
	return nil, ErrNotFound
}

// GetIdentity returns a copy of the identity with the given ID.
func (m *Memory) GetIdentity(_ context.Context, id int64) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	identity, ok := m.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &identity, nil
}

// CreateIdentity stores identity under the next free ID.
func (m *Memory) CreateIdentity(_ context.Context, identity *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTakenLocked(identity.Name) {
		return ErrDuplicate
	}
	identity.ID = m.nextUserID
	m.nextUserID++
	m.identities[identity.ID] = *identity
	return nil
}

// PutIdentity stores identity under the ID it already carries.
func (m *Memory) PutIdentity(_ context.Context, identity *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.identities[identity.ID]; exists || m.nameTakenLocked(identity.Name) {
		return ErrDuplicate
	}
	m.identities[identity.ID] = *identity
	if identity.ID >= m.nextUserID {
		m.nextUserID = identity.ID + 1
	}
	return nil
}

func (m *Memory) nameTakenLocked(name string) bool {
	for _, identity := range m.identities {
		if identity.Name == name {
			return true
		}
	}
	return false
}

// CreateHook stores hook for an existing owner and assigns its ID.
func (m *Memory) CreateHook(_ context.Context, hook *Hook) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[hook.UserID]; !ok {
		return ErrNotFound
	}
	if m.hookNameTakenLocked(hook.Name, 0) {
		return ErrDuplicate
	}
	hook.ID = m.nextHookID
	m.nextHookID++
	m.hooks[hook.ID] = *hook
	return nil
}

// GetHook returns a copy of the hook with the given ID.
func (m *Memory) GetHook(_ context.Context, id int64) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hook, ok := m.hooks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &hook, nil
}

// ListHooks returns the hooks owned by ownerID ordered by ID.
func (m *Memory) ListHooks(_ context.Context, ownerID int64) ([]Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hooks := make([]Hook, 0)
	for _, hook := range m.hooks {
		if hook.UserID == ownerID {
			hooks = append(hooks, hook)
		}
	}
	sortHooks(hooks)
	return hooks, nil
}

// ListAllHooks returns every hook ordered by ID.
func (m *Memory) ListAllHooks(_ context.Context) ([]Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hooks := make([]Hook, 0, len(m.hooks))
	for _, hook := range m.hooks {
		hooks = append(hooks, hook)
	}
	sortHooks(hooks)
	return hooks, nil
}

// UpdateHook replaces the name and content of an existing hook.
func (m *Memory) UpdateHook(_ context.Context, hook *Hook) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.hooks[hook.ID]
	if !ok {
		return ErrNotFound
	}
	if m.hookNameTakenLocked(hook.Name, hook.ID) {
		return ErrDuplicate
	}
	current.Name = hook.Name
	current.Content = hook.Content
	m.hooks[hook.ID] = current
	*hook = current
	return nil
}

// DeleteHook removes the hook with the given ID.
func (m *Memory) DeleteHook(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hooks[id]; !ok {
		return ErrNotFound
	}
	delete(m.hooks, id)
	return nil
}

func (m *Memory) hookNameTakenLocked(name string, except int64) bool {
	for id, hook := range m.hooks {
		if id != except && hook.Name == name {
			return true
		}
	}
	return false
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() {}

func sortHooks(hooks []Hook) {
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].ID < hooks[j].ID })
}
