// Package hostsys defines the contracts the assembly core consumes
// from the host business platform: record lookups, user choices, order
// submission, and notifications. The core never talks to the platform
// directly; everything goes through these interfaces.
package hostsys

import (
	"context"
	"errors"

	"github.com/partyplan/party-order-backend/internal/domain/order"
)

// PromotionFlagAttribute is the item attribute that marks a SKU as
// counting toward promotional-tier subtotals.
const PromotionFlagAttribute = "considered_for_action"

// ErrNotFound reports that a SKU or customer id has no backing record.
// Callers recover locally: the item or allocation is skipped.
var ErrNotFound = errors.New("record not found")

// ItemMaster is the item master data needed to price a new line.
type ItemMaster struct {
	DisplayName string
	DefaultRate float64
	StockUOM    string
}

// Lookup resolves item and customer records in the host system.
type Lookup interface {
	// ItemFlag returns a boolean attribute of the SKU, or ErrNotFound.
	ItemFlag(ctx context.Context, sku, attribute string) (bool, error)

	// ItemMaster returns display name, default rate and stock unit for
	// the SKU, or ErrNotFound.
	ItemMaster(ctx context.Context, sku string) (*ItemMaster, error)

	// CustomerDisplayName resolves a customer id to its display name.
	CustomerDisplayName(ctx context.Context, id string) (string, error)
}

// ChoiceRequest asks the user to pick one option. An empty selection is
// a decline when AllowEmpty is set.
type ChoiceRequest struct {
	Title      string
	Prompt     string
	Options    []string
	AllowEmpty bool
}

// Chooser presents interactive decisions. In the host platform this is
// a modal dialog; in tests it is scripted.
type Chooser interface {
	// PresentChoice returns the selected option, or "" for a decline.
	PresentChoice(ctx context.Context, req ChoiceRequest) (string, error)

	// Decide asks a binary question. true selects acceptLabel.
	Decide(ctx context.Context, title, question, acceptLabel, declineLabel string) (bool, error)
}

// ParticipantOrder is one participant's validated, priced line items
// ready for submission.
type ParticipantOrder struct {
	CustomerID  string
	DisplayName string
	Role        order.Role
	Items       []*order.LineItem
}

// Submission is the complete assembled order handed to the platform.
type Submission struct {
	PartyID string
	Orders  []ParticipantOrder
}

// SubmitResult reports the order documents the platform created.
type SubmitResult struct {
	CreatedOrderIDs []string
}

// Submitter hands assembled orders to the external order-creation
// machinery.
type Submitter interface {
	SubmitOrder(ctx context.Context, sub Submission) (*SubmitResult, error)
}

// Severity grades a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier surfaces messages to the user.
type Notifier interface {
	Notify(message string, severity Severity)
}

// System bundles the four collaborator contracts for injection.
type System struct {
	Lookup    Lookup
	Chooser   Chooser
	Submitter Submitter
	Notifier  Notifier
}
