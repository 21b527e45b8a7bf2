package mongodb

import (
	"context"
	"sync"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// MemoryRepository is the in-process stand-in used when no MongoDB URI is
// configured, and in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	events []models.AuditEvent
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (m *MemoryRepository) FindUser(ctx context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryRepository) InsertUser(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return ErrDuplicateUser
	}
	m.users[user.Username] = user
	return nil
}

func (m *MemoryRepository) SaveEvent(ctx context.Context, event models.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the recorded audit events.
func (m *MemoryRepository) Events() []models.AuditEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AuditEvent(nil), m.events...)
}
