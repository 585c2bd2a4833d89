package voucher

import (
	"log/slog"

	"github.com/partyplan/party-order-backend/internal/domain/order"
)

// LineRef identifies a line by its product table and row index.
type LineRef struct {
	Table string
	Index int
}

type entry struct {
	line           *order.LineItem
	originalRate   float64
	originalAmount float64
}

// BackupSet holds per-line price snapshots taken before the first
// voucher mutation. A line appears in at most one active backup; the
// set is cleared by Restore or Discard and never re-applied afterwards.
type BackupSet struct {
	entries map[LineRef]entry
}

// NewBackupSet creates an empty backup set.
func NewBackupSet() *BackupSet {
	return &BackupSet{entries: make(map[LineRef]entry)}
}

// Snapshot stores the line's current rate and amount, once. Repeated
// calls for the same ref keep the first snapshot.
func (b *BackupSet) Snapshot(ref LineRef, li *order.LineItem) {
	if _, exists := b.entries[ref]; exists {
		return
	}
	b.entries[ref] = entry{line: li, originalRate: li.Rate, originalAmount: li.Amount}
}

// Has reports whether the ref has an active backup.
func (b *BackupSet) Has(ref LineRef) bool {
	_, ok := b.entries[ref]
	return ok
}

// Len returns the number of active backups.
func (b *BackupSet) Len() int {
	return len(b.entries)
}

// Restore writes the original rate and amount back to every backed-up
// line, clears the voucher marker, empties the set, and returns the
// number of restored lines. Restoring an empty set is a no-op, so a
// second consecutive call always returns 0.
func (b *BackupSet) Restore(logger *slog.Logger) int {
	restored := 0
	for ref, e := range b.entries {
		e.line.Rate = e.originalRate
		e.line.Amount = e.originalAmount
		if e.line.State == order.StateVoucherDiscounted {
			e.line.State = order.StateRegular
		}
		restored++
		if logger != nil {
			logger.Debug("Restored line price",
				"table", ref.Table,
				"index", ref.Index,
				"rate", e.originalRate,
				"amount", e.originalAmount,
			)
		}
	}
	b.entries = make(map[LineRef]entry)
	return restored
}

// Discard empties the set without restoring, once a voucher application
// is accepted as final.
func (b *BackupSet) Discard() {
	b.entries = make(map[LineRef]entry)
}
