// Package voucher applies the host's loyalty voucher credit against her
// own promotion-eligible lines and tracks price backups for rollback.
//
// Consumption is greedy, most recently added line first: a line fully
// covered by the remaining credit is zeroed, a partially covered line
// gets its rate recomputed from the reduced amount and ends the walk.
// Guests' lines are never touched.
package voucher

import (
	"log/slog"

	"github.com/partyplan/party-order-backend/internal/domain/order"
)

// RemainderEpsilon absorbs floating-point rounding when deciding
// whether unused credit is worth a remainder decision.
const RemainderEpsilon = 0.01

// AllocationResult reports how much credit was consumed and what is
// left over.
type AllocationResult struct {
	Consumed  float64
	Remainder float64
}

// Allocator applies voucher credit to a participant's lines.
type Allocator struct {
	logger *slog.Logger
}

// NewAllocator creates a voucher allocator.
func NewAllocator(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{logger: logger}
}

// Apply walks the eligible line indices of the participant's table from
// the highest index down, reducing each line by the remaining credit.
// Every touched line is snapshotted into backups before its first
// mutation. eligibleIdx must be in ascending document order.
//
// With zero eligible lines the full credit comes back as remainder;
// callers route that through the same remainder decision as a partial
// leftover.
func (a *Allocator) Apply(tableID string, p *order.Participant, eligibleIdx []int, credit float64, backups *BackupSet) AllocationResult {
	if credit <= 0 {
		return AllocationResult{}
	}

	remaining := credit
	var consumed float64

	for i := len(eligibleIdx) - 1; i >= 0 && remaining > 0; i-- {
		idx := eligibleIdx[i]
		li := p.Items[idx]
		if li.Amount <= 0 {
			continue
		}

		backups.Snapshot(LineRef{Table: tableID, Index: idx}, li)

		applied := remaining
		if li.Amount < applied {
			applied = li.Amount
		}

		if applied == li.Amount {
			li.SetRate(0)
		} else {
			// Partial coverage: the credit is exhausted here.
			reduced := li.Amount - applied
			li.SetRate(reduced / float64(li.Quantity))
		}
		li.State = order.StateVoucherDiscounted

		remaining -= applied
		consumed += applied

		a.logger.Debug("Applied voucher to line",
			"table", tableID,
			"index", idx,
			"sku", li.ItemCode,
			"applied", applied,
			"remaining_credit", remaining,
		)
	}

	return AllocationResult{Consumed: consumed, Remainder: credit - consumed}
}

// NeedsRemainderDecision reports whether the leftover credit is large
// enough to ask the user about.
func (r AllocationResult) NeedsRemainderDecision() bool {
	return r.Remainder > RemainderEpsilon
}
