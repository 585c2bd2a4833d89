package storage

// Repository defines the assembly-run audit store. The interface keeps
// the SQLite implementation swappable and makes testing with the
// in-memory mock straightforward.
type Repository interface {
	// SaveRun inserts or replaces an assembly run record.
	SaveRun(rec *AssemblyRecord) error

	// GetRun retrieves a run by its id, or nil when unknown.
	GetRun(runID string) (*AssemblyRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*AssemblyRecord, error)

	// ListRunsForParty returns all runs recorded for one party,
	// newest first.
	ListRunsForParty(partyID string) ([]*AssemblyRecord, error)

	Close() error
}
