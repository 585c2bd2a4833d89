package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for assembly run records.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository.
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with a SQLite database.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces an assembly run record.
func (s *Storage) SaveRun(rec *AssemblyRecord) error {
	query := `
	INSERT OR REPLACE INTO assembly_runs
	(run_id, party_id, host, participant_count,
	 voucher_credit, voucher_consumed, voucher_remainder,
	 promotions_applied, final_state, error_message, orders_json,
	 dry_run, started_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		rec.RunID,
		rec.PartyID,
		rec.Host,
		rec.ParticipantCount,
		rec.VoucherCredit,
		rec.VoucherConsumed,
		rec.VoucherRemainder,
		rec.PromotionsApplied,
		rec.FinalState,
		rec.ErrorMessage,
		rec.marshalOrderIDs(),
		rec.DryRun,
		rec.StartedAt,
		rec.CompletedAt,
	)

	return err
}

const selectColumns = `
	run_id, party_id, host, participant_count,
	voucher_credit, voucher_consumed, voucher_remainder,
	promotions_applied, final_state, error_message, orders_json,
	dry_run, started_at, completed_at`

// GetRun retrieves a run by id. Returns nil, nil when unknown.
func (s *Storage) GetRun(runID string) (*AssemblyRecord, error) {
	row := s.db.QueryRow("SELECT"+selectColumns+" FROM assembly_runs WHERE run_id = ?", runID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRuns returns the most recent runs, newest first.
func (s *Storage) ListRuns(limit int) ([]*AssemblyRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query("SELECT"+selectColumns+" FROM assembly_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRunsForParty returns all runs for a party, newest first.
func (s *Storage) ListRunsForParty(partyID string) ([]*AssemblyRecord, error) {
	rows, err := s.db.Query("SELECT"+selectColumns+" FROM assembly_runs WHERE party_id = ? ORDER BY started_at DESC", partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*AssemblyRecord, error) {
	rec := &AssemblyRecord{}
	var ordersJSON string
	err := row.Scan(
		&rec.RunID,
		&rec.PartyID,
		&rec.Host,
		&rec.ParticipantCount,
		&rec.VoucherCredit,
		&rec.VoucherConsumed,
		&rec.VoucherRemainder,
		&rec.PromotionsApplied,
		&rec.FinalState,
		&rec.ErrorMessage,
		&ordersJSON,
		&rec.DryRun,
		&rec.StartedAt,
		&rec.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedOrderIDs = unmarshalOrderIDs(ordersJSON)
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]*AssemblyRecord, error) {
	var records []*AssemblyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
