package store

import (
	"context"
	"sync"
	"time"

	"github.com/clubhub/club-gateway/internal/domain"
)

type memoryEntry struct {
	record    domain.CredentialRecord
	expiresAt time.Time
}

// MemoryCredentialRepository is an in-process tier-B repository, used when
// Redis is not configured and throughout the tests.
type MemoryCredentialRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCredentialRepository constructs the repository.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCredentialRepository) Put(_ context.Context, record domain.CredentialRecord, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[record.SessionID] = memoryEntry{record: record, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryCredentialRepository) Get(_ context.Context, sessionID string) (*domain.CredentialRecord, error) {
	m.mu.RLock()
	entry, ok := m.entries[sessionID]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	record := entry.record
	return &record, nil
}

func (m *MemoryCredentialRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}
