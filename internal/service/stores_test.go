package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/classtrack/rollcall-backend/internal/model"
)

// In-memory store fakes. They round-trip through JSON so tests exercise the
// same encode/decode path the Redis repositories use.

type memSnapshotStore struct {
	mu      sync.Mutex
	raw     []byte
	saves   int
	failing bool
}

func (m *memSnapshotStore) Load(ctx context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := &model.Snapshot{Records: model.Records{}, Locks: map[string]bool{}}
	if m.raw == nil {
		return snap, nil
	}
	if err := json.Unmarshal(m.raw, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (m *memSnapshotStore) Save(ctx context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("store unavailable")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.raw = raw
	m.saves++
	return nil
}

type memSessionStore struct {
	mu      sync.Mutex
	session *model.Session
}

func (m *memSessionStore) Get(ctx context.Context) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

func (m *memSessionStore) Put(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *memSessionStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

type memCredentialStore struct {
	mu    sync.Mutex
	creds map[model.Role]model.Credential
}

func (m *memCredentialStore) Get(ctx context.Context, role model.Role) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.creds[role]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *memCredentialStore) Put(ctx context.Context, role model.Role, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		m.creds = map[model.Role]model.Credential{}
	}
	m.creds[role] = cred
	return nil
}

type memSettingStore struct {
	mu       sync.Mutex
	settings map[string]string
}

func (m *memSettingStore) GetAll(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *memSettingStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		m.settings = map[string]string{}
	}
	m.settings[key] = value
	return nil
}
