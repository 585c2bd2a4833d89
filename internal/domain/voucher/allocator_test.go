package voucher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partyplan/party-order-backend/internal/domain/order"
)

func hostWithAmounts(amounts ...float64) *order.Participant {
	p := &order.Participant{CustomerID: "HOST", Role: order.RoleHost}
	for _, amt := range amounts {
		p.Items = append(p.Items, order.NewLineItem("sku", 1, amt))
	}
	return p
}

func allIndexes(p *order.Participant) []int {
	idx := make([]int, len(p.Items))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestApply_ConsumesNewestLinesFirst(t *testing.T) {
	p := hostWithAmounts(60, 40, 20)
	backups := NewBackupSet()

	result := NewAllocator(nil).Apply("host", p, allIndexes(p), 90, backups)

	assert.InDelta(t, 90.0, result.Consumed, 0.001)
	assert.InDelta(t, 0.0, result.Remainder, 0.001)
	assert.False(t, result.NeedsRemainderDecision())

	// The walk starts at the last line: 20 and 40 are zeroed, the
	// oldest line keeps the leftover 30.
	assert.InDelta(t, 30.0, p.Items[0].Amount, 0.001)
	assert.InDelta(t, 0.0, p.Items[1].Amount, 0.001)
	assert.InDelta(t, 0.0, p.Items[2].Amount, 0.001)

	for _, li := range p.Items {
		assert.Equal(t, order.StateVoucherDiscounted, li.State)
	}
	assert.Equal(t, 3, backups.Len())
}

func TestApply_CreditExceedsLines(t *testing.T) {
	p := hostWithAmounts(60, 40)
	backups := NewBackupSet()

	result := NewAllocator(nil).Apply("host", p, allIndexes(p), 150, backups)

	assert.InDelta(t, 100.0, result.Consumed, 0.001)
	assert.InDelta(t, 50.0, result.Remainder, 0.001)
	assert.True(t, result.NeedsRemainderDecision())

	assert.InDelta(t, 0.0, p.Items[0].Amount, 0.001)
	assert.InDelta(t, 0.0, p.Items[1].Amount, 0.001)
}

func TestApply_PartialLineKeepsAmountInvariant(t *testing.T) {
	p := &order.Participant{
		Items: []*order.LineItem{order.NewLineItem("sku", 4, 25)}, // amount 100
	}
	backups := NewBackupSet()

	result := NewAllocator(nil).Apply("host", p, []int{0}, 30, backups)

	assert.InDelta(t, 30.0, result.Consumed, 0.001)
	li := p.Items[0]
	assert.InDelta(t, 70.0, li.Amount, 0.001)
	assert.InDelta(t, 17.5, li.Rate, 0.001)
	assert.InDelta(t, li.Amount, float64(li.Quantity)*li.Rate, 0.001)
}

func TestApply_NoEligibleLines(t *testing.T) {
	p := hostWithAmounts(60)
	backups := NewBackupSet()

	result := NewAllocator(nil).Apply("host", p, nil, 30, backups)

	assert.InDelta(t, 0.0, result.Consumed, 0.001)
	assert.InDelta(t, 30.0, result.Remainder, 0.001)
	assert.True(t, result.NeedsRemainderDecision())
	assert.Equal(t, 0, backups.Len())
	assert.InDelta(t, 60.0, p.Items[0].Amount, 0.001)
}

func TestApply_ZeroCreditIsNoOp(t *testing.T) {
	p := hostWithAmounts(60)
	backups := NewBackupSet()

	result := NewAllocator(nil).Apply("host", p, allIndexes(p), 0, backups)

	assert.Zero(t, result.Consumed)
	assert.Zero(t, result.Remainder)
	assert.Equal(t, 0, backups.Len())
	assert.Equal(t, order.StateRegular, p.Items[0].State)
}

func TestApply_UntouchedLinesGetNoBackup(t *testing.T) {
	p := hostWithAmounts(60, 40, 20)
	backups := NewBackupSet()

	result := NewAllocator(nil).Apply("host", p, allIndexes(p), 20, backups)

	// Credit exhausted exactly on the last line; only it was touched.
	assert.Equal(t, 20.0, result.Consumed)
	assert.Zero(t, result.Remainder)
	assert.Equal(t, 1, backups.Len())
	assert.True(t, backups.Has(LineRef{Table: "host", Index: 2}))
	assert.False(t, backups.Has(LineRef{Table: "host", Index: 0}))
	assert.Equal(t, order.StateRegular, p.Items[0].State)
	assert.Equal(t, order.StateRegular, p.Items[1].State)
}

func TestRestore_RecoversExactPrices(t *testing.T) {
	p := &order.Participant{
		Items: []*order.LineItem{
			order.NewLineItem("a", 2, 30), // amount 60
			order.NewLineItem("b", 1, 40),
		},
	}
	backups := NewBackupSet()

	NewAllocator(nil).Apply("host", p, []int{0, 1}, 70, backups)
	assert.InDelta(t, 30.0, p.Items[0].Amount, 0.001)
	assert.InDelta(t, 0.0, p.Items[1].Amount, 0.001)

	restored := backups.Restore(nil)
	assert.Equal(t, 2, restored)

	assert.InDelta(t, 30.0, p.Items[0].Rate, 0.001)
	assert.InDelta(t, 60.0, p.Items[0].Amount, 0.001)
	assert.InDelta(t, 40.0, p.Items[1].Rate, 0.001)
	assert.InDelta(t, 40.0, p.Items[1].Amount, 0.001)
	assert.Equal(t, order.StateRegular, p.Items[0].State)
	assert.Equal(t, order.StateRegular, p.Items[1].State)
}

func TestRestore_SecondCallIsNoOp(t *testing.T) {
	p := hostWithAmounts(60)
	backups := NewBackupSet()

	NewAllocator(nil).Apply("host", p, []int{0}, 60, backups)

	assert.Equal(t, 1, backups.Restore(nil))
	assert.Equal(t, 0, backups.Restore(nil))
	assert.Equal(t, 0, backups.Len())
}

func TestSnapshot_KeepsFirstSnapshot(t *testing.T) {
	li := order.NewLineItem("a", 1, 50)
	backups := NewBackupSet()
	ref := LineRef{Table: "host", Index: 0}

	backups.Snapshot(ref, li)
	li.SetRate(10)
	backups.Snapshot(ref, li) // must not overwrite the original

	backups.Restore(nil)
	assert.InDelta(t, 50.0, li.Rate, 0.001)
}

func TestDiscard_PreventsLaterRestore(t *testing.T) {
	p := hostWithAmounts(60)
	backups := NewBackupSet()

	NewAllocator(nil).Apply("host", p, []int{0}, 60, backups)
	backups.Discard()

	assert.Equal(t, 0, backups.Restore(nil))
	assert.InDelta(t, 0.0, p.Items[0].Amount, 0.001)
}
