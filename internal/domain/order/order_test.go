package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLineItem_Defaults(t *testing.T) {
	li := NewLineItem("10001", 0, 25.50)

	assert.Equal(t, 1, li.Quantity)
	assert.Equal(t, 25.50, li.Rate)
	assert.Equal(t, 25.50, li.Amount)
	assert.Equal(t, 1, li.ConversionFactor)
	assert.Equal(t, StateRegular, li.State)
}

func TestLineItem_SetRate_KeepsAmountInvariant(t *testing.T) {
	li := NewLineItem("10001", 3, 10)
	assert.Equal(t, 30.0, li.Amount)

	li.SetRate(5)
	assert.Equal(t, 15.0, li.Amount)

	li.SetRate(0)
	assert.Equal(t, 0.0, li.Amount)
}

func TestLineItem_SetQuantity_KeepsAmountInvariant(t *testing.T) {
	li := NewLineItem("10001", 1, 12.5)

	li.SetQuantity(4)
	assert.Equal(t, 50.0, li.Amount)
}

func TestLineItem_Orderable(t *testing.T) {
	assert.True(t, NewLineItem("10001", 1, 5).Orderable())
	assert.False(t, NewLineItem("", 1, 5).Orderable())

	li := NewLineItem("10001", 1, 5)
	li.Quantity = 0
	assert.False(t, li.Orderable())
}

func TestParticipant_DisplayName_FallsBackToCustomerID(t *testing.T) {
	p := &Participant{CustomerID: "CUST-1"}
	assert.Equal(t, "CUST-1", p.DisplayName())

	p.SetDisplayName("Maria")
	assert.Equal(t, "Maria", p.DisplayName())
}

func TestParticipant_HasOrderedItems(t *testing.T) {
	p := &Participant{CustomerID: "CUST-1"}
	assert.False(t, p.HasOrderedItems())

	p.Items = append(p.Items, NewLineItem("", 1, 5))
	assert.False(t, p.HasOrderedItems())

	p.Items = append(p.Items, NewLineItem("10001", 1, 5))
	assert.True(t, p.HasOrderedItems())
}

func TestParticipant_HasAnySKU(t *testing.T) {
	p := &Participant{
		Items: []*LineItem{
			NewLineItem("10001", 1, 5),
			NewLineItem("50238-Aktion", 1, 0),
		},
	}

	assert.True(t, p.HasAnySKU(map[string]bool{"50238-Aktion": true}))
	assert.False(t, p.HasAnySKU(map[string]bool{"15313-Aktion": true}))
}

func TestParticipant_Subtotal(t *testing.T) {
	p := &Participant{
		Items: []*LineItem{
			NewLineItem("10001", 2, 10),
			NewLineItem("10002", 1, 7.5),
			NewLineItem("", 1, 100), // not orderable, ignored
		},
	}

	assert.InDelta(t, 27.5, p.Subtotal(), 0.001)
}

func TestParticipant_FirstWarehouse(t *testing.T) {
	p := &Participant{
		Items: []*LineItem{
			NewLineItem("10001", 1, 5),
			NewLineItem("10002", 1, 5),
		},
	}
	assert.Equal(t, "", p.FirstWarehouse())

	p.Items[1].Warehouse = "Lagerräume - BM"
	assert.Equal(t, "Lagerräume - BM", p.FirstWarehouse())
}

func TestOrder_HostAndGuests(t *testing.T) {
	ord := &Order{
		PartyID: "PARTY-1",
		Participants: []*Participant{
			{CustomerID: "HOST", Role: RoleHost},
			{CustomerID: "G1", Role: RoleGuest},
			{CustomerID: "G2", Role: RoleGuest},
		},
	}

	assert.Equal(t, "HOST", ord.Host().CustomerID)
	assert.Len(t, ord.Guests(), 2)
	assert.Equal(t, 2, ord.GuestCount())
}

func TestOrder_RemoveGuest(t *testing.T) {
	ord := &Order{
		Participants: []*Participant{
			{CustomerID: "HOST", Role: RoleHost},
			{CustomerID: "G1", Role: RoleGuest},
		},
	}

	assert.True(t, ord.RemoveGuest("G1"))
	assert.Equal(t, 0, ord.GuestCount())
	assert.False(t, ord.RemoveGuest("G1"))
}

func TestOrder_RemoveGuest_NeverRemovesHost(t *testing.T) {
	ord := &Order{
		Participants: []*Participant{
			{CustomerID: "HOST", Role: RoleHost},
		},
	}

	assert.False(t, ord.RemoveGuest("HOST"))
	assert.NotNil(t, ord.Host())
}

func TestOrder_TotalRevenue(t *testing.T) {
	ord := &Order{
		Participants: []*Participant{
			{Role: RoleHost, Items: []*LineItem{NewLineItem("10001", 1, 100)}},
			{Role: RoleGuest, Items: []*LineItem{NewLineItem("10002", 2, 50)}},
		},
	}

	assert.InDelta(t, 200.0, ord.TotalRevenue(), 0.001)
}
