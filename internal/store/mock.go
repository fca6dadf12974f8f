package store

import (
	"sync"

	"fjacquet/expense-manager/internal/models"
)

// MockStore is an in-memory Persister for tests.
type MockStore struct {
	mu        sync.Mutex
	Initial   *models.Snapshot
	Saved     []models.Snapshot
	SaveError error
	FilePath  string
}

// Load returns Initial, or the default snapshot when Initial is nil.
func (m *MockStore) Load() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Initial == nil {
		return models.DefaultSnapshot()
	}
	return m.Initial.Clone()
}

// Save records snapshot, or fails with SaveError when set.
func (m *MockStore) Save(snapshot models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Saved = append(m.Saved, snapshot.Clone())
	return nil
}

// Path returns FilePath or a placeholder.
func (m *MockStore) Path() string {
	if m.FilePath == "" {
		return "memory"
	}
	return m.FilePath
}

// SaveCount returns how many snapshots were saved.
func (m *MockStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

// Last returns the most recently saved snapshot.
func (m *MockStore) Last() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Saved) == 0 {
		return models.Snapshot{}, false
	}
	return m.Saved[len(m.Saved)-1], true
}
