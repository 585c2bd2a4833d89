package storage

import "sort"

// MockRepository is an in-memory implementation of Repository for
// testing. It keeps all records in a map and exposes hooks for
// assertions and error injection.
type MockRepository struct {
	runs map[string]*AssemblyRecord

	// Hooks for test assertions
	SaveRunCalled bool
	LastSavedRun  *AssemblyRecord

	// Error injection for testing error paths
	SaveRunErr error
	GetRunErr  error
}

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{runs: make(map[string]*AssemblyRecord)}
}

// Close does nothing for the mock.
func (m *MockRepository) Close() error {
	return nil
}

// SaveRun saves the record to the in-memory map.
func (m *MockRepository) SaveRun(rec *AssemblyRecord) error {
	m.SaveRunCalled = true
	m.LastSavedRun = rec
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	// Copy to avoid test mutations
	copied := *rec
	m.runs[rec.RunID] = &copied
	return nil
}

// GetRun retrieves a record, or nil when unknown.
func (m *MockRepository) GetRun(runID string) (*AssemblyRecord, error) {
	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	return m.runs[runID], nil
}

// ListRuns returns records newest first.
func (m *MockRepository) ListRuns(limit int) ([]*AssemblyRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	records := m.sorted()
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ListRunsForParty returns the party's records newest first.
func (m *MockRepository) ListRunsForParty(partyID string) ([]*AssemblyRecord, error) {
	var records []*AssemblyRecord
	for _, rec := range m.sorted() {
		if rec.PartyID == partyID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *MockRepository) sorted() []*AssemblyRecord {
	records := make([]*AssemblyRecord, 0, len(m.runs))
	for _, rec := range m.runs {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records
}
