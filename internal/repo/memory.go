package repo

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRepository keeps inspectors in process memory. The service falls
// back to it when no database URL is configured; tests use it too.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]memoryRow
}

type memoryRow struct {
	Profile
	hash string
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{rows: make(map[int]memoryRow)}
}

func (m *MemoryRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Login == login || r.Email == email {
			return 0, fmt.Errorf("inspector %q already exists", login)
		}
	}
	m.nextID++
	m.rows[m.nextID] = memoryRow{
		Profile: Profile{ID: m.nextID, Login: login, Email: email, CreatedAt: time.Now().UTC()},
		hash:    password,
	}
	return m.nextID, nil
}

func (m *MemoryRepository) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, r := range m.rows {
		if r.Login == login {
			return id, r.hash, nil
		}
	}
	return 0, "", nil
}

func (m *MemoryRepository) GetProfileByID(_ context.Context, id int) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return r.Profile, nil
}

func (m *MemoryRepository) UpdateProfile(_ context.Context, id int, u ProfileUpdate) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	for other, o := range m.rows {
		if other != id && o.Login == u.Login {
			return Profile{}, fmt.Errorf("login %q is taken", u.Login)
		}
	}
	r.Login = u.Login
	r.Description = u.Description
	r.CertificationLevel = u.CertificationLevel
	r.DefaultStandard = u.DefaultStandard
	m.rows[id] = r
	return r.Profile, nil
}

func (m *MemoryRepository) UpdateAvatar(_ context.Context, id int, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	r.AvatarURL = url
	m.rows[id] = r
	return nil
}
