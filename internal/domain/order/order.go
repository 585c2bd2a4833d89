// Package order defines the in-memory order document the assembly
// pipeline operates on: participants (one host, up to fifteen guests),
// their line items, and the running totals.
//
// Line items carry an explicit state so that price-refresh logic can
// tell a voucher-discounted or promotional line apart from a regular
// one before overwriting its rate.
package order

import "time"

// Role distinguishes the host from her guests within one assembly pass.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// MaxGuests is the number of guest product tables the party form supports.
const MaxGuests = 15

// LineState tags what kind of price a line item currently carries.
type LineState string

const (
	// StateRegular is an untouched line priced from the price list.
	StateRegular LineState = "regular"
	// StateVoucherDiscounted marks a line whose rate was reduced by the
	// host voucher. Refresh logic must not overwrite it.
	StateVoucherDiscounted LineState = "voucher_discounted"
	// StatePromotional marks a line appended by the promotion allocator.
	StatePromotional LineState = "promotional"
)

// LineItem is a single row in a participant's product table.
type LineItem struct {
	ItemCode         string
	ItemName         string
	Description      string
	Quantity         int
	Rate             float64
	Amount           float64
	UOM              string
	StockUOM         string
	ConversionFactor int
	Warehouse        string
	DeliveryDate     time.Time
	State            LineState
}

// NewLineItem builds a regular line with the quantity defaulted to 1 and
// the amount invariant (amount = qty * rate) established.
func NewLineItem(itemCode string, qty int, rate float64) *LineItem {
	if qty <= 0 {
		qty = 1
	}
	li := &LineItem{
		ItemCode:         itemCode,
		Quantity:         qty,
		Rate:             rate,
		ConversionFactor: 1,
		State:            StateRegular,
	}
	li.recompute()
	return li
}

// SetRate updates the rate and keeps the amount invariant.
func (li *LineItem) SetRate(rate float64) {
	li.Rate = rate
	li.recompute()
}

// SetQuantity updates the quantity and keeps the amount invariant.
func (li *LineItem) SetQuantity(qty int) {
	li.Quantity = qty
	li.recompute()
}

func (li *LineItem) recompute() {
	li.Amount = float64(li.Quantity) * li.Rate
}

// Orderable reports whether the line counts as a real order row:
// non-empty SKU and positive quantity.
func (li *LineItem) Orderable() bool {
	return li.ItemCode != "" && li.Quantity > 0
}

// Participant is the host or one guest, with her product table.
type Participant struct {
	// CustomerID references the customer record in the host system.
	CustomerID string
	Role       Role
	Items      []*LineItem

	// displayName is resolved lazily via Order.ResolveName.
	displayName string
}

// DisplayName returns the resolved customer name, falling back to the
// customer id until a resolution happened.
func (p *Participant) DisplayName() string {
	if p.displayName != "" {
		return p.displayName
	}
	return p.CustomerID
}

// SetDisplayName stores the lazily resolved name.
func (p *Participant) SetDisplayName(name string) {
	p.displayName = name
}

// HasOrderedItems reports whether the participant has at least one line
// with a SKU and positive quantity.
func (p *Participant) HasOrderedItems() bool {
	for _, li := range p.Items {
		if li.Orderable() {
			return true
		}
	}
	return false
}

// HasAnySKU reports whether any line carries one of the given SKUs.
func (p *Participant) HasAnySKU(skus map[string]bool) bool {
	for _, li := range p.Items {
		if skus[li.ItemCode] {
			return true
		}
	}
	return false
}

// Subtotal sums the amounts of all orderable lines.
func (p *Participant) Subtotal() float64 {
	var total float64
	for _, li := range p.Items {
		if li.Orderable() {
			total += li.Amount
		}
	}
	return total
}

// FirstWarehouse returns the warehouse of the first line that has one,
// or the empty string.
func (p *Participant) FirstWarehouse() string {
	for _, li := range p.Items {
		if li.Warehouse != "" {
			return li.Warehouse
		}
	}
	return ""
}

// Order is the party order document for one assembly pass. It is built
// transiently from the parent party record and never persisted itself.
type Order struct {
	PartyID      string
	Participants []*Participant

	// VoucherCredit is the host's loyalty voucher, derived from the
	// party's total revenue.
	VoucherCredit float64
}

// Host returns the host participant, or nil if the document has none.
func (o *Order) Host() *Participant {
	for _, p := range o.Participants {
		if p.Role == RoleHost {
			return p
		}
	}
	return nil
}

// Guests returns the guest participants in document order.
func (o *Order) Guests() []*Participant {
	guests := make([]*Participant, 0, len(o.Participants))
	for _, p := range o.Participants {
		if p.Role == RoleGuest {
			guests = append(guests, p)
		}
	}
	return guests
}

// TotalRevenue sums every participant's orderable lines.
func (o *Order) TotalRevenue() float64 {
	var total float64
	for _, p := range o.Participants {
		total += p.Subtotal()
	}
	return total
}

// RemoveGuest drops the guest with the given customer id. The host is
// never removable through this path.
func (o *Order) RemoveGuest(customerID string) bool {
	for i, p := range o.Participants {
		if p.Role == RoleGuest && p.CustomerID == customerID {
			o.Participants = append(o.Participants[:i], o.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// GuestCount returns the number of guests currently on the document.
func (o *Order) GuestCount() int {
	return len(o.Guests())
}
