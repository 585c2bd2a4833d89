package assembly

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/partyplan/party-order-backend/internal/adapters/hostsys"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/domain/classifier"
	"github.com/partyplan/party-order-backend/internal/domain/promotion"
	"github.com/partyplan/party-order-backend/internal/domain/voucher"
	"github.com/partyplan/party-order-backend/internal/infrastructure/storage"
)

// State names a stage of the assembly pipeline.
type State string

const (
	StateValidating         State = "validating"
	StateApplyingVoucher    State = "applying_voucher"
	StateApplyingPromotions State = "applying_promotions"
	StateSubmitting         State = "submitting"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Errors surfaced by Run. Everything a collaborator can throw is caught
// at the orchestrator boundary and converted into one of these.
var (
	// ErrValidation reports participants without line items that could
	// not be remediated.
	ErrValidation = errors.New("participants missing line items")

	// ErrAborted reports that the user chose to return to editing.
	ErrAborted = errors.New("assembly aborted, returning to editing")

	// ErrSubmission reports that the order-submission collaborator
	// rejected the assembled order.
	ErrSubmission = errors.New("order submission failed")

	// ErrInProgress reports a second Run while one is still executing.
	ErrInProgress = errors.New("assembly already in progress")
)

// Options configures one assembly pass.
type Options struct {
	// DryRun executes the full pipeline but skips submission and
	// restores every voucher-discounted price afterwards.
	DryRun bool
}

// Result reports what one assembly pass did.
type Result struct {
	RunID             string
	State             State
	VoucherCredit     float64
	VoucherConsumed   float64
	VoucherRemainder  float64
	PromotionsApplied int
	CreatedOrderIDs   []string
}

// Context carries the per-pass mutable state, owning the price backup
// set. It is created at orchestrator entry and discarded once the pass
// reaches Done or Failed.
type Context struct {
	Backups *voucher.BackupSet
}

// NewContext creates the per-pass context.
func NewContext() *Context {
	return &Context{Backups: voucher.NewBackupSet()}
}

// Orchestrator sequences validation, voucher allocation, promotion
// allocation and order submission for one party order.
type Orchestrator struct {
	sys        *hostsys.System
	catalog    *catalog.Catalog
	classifier *classifier.Classifier
	promotions *promotion.Allocator
	vouchers   *voucher.Allocator
	repo       storage.Repository
	logger     *slog.Logger

	// running guards against duplicate submissions from repeated
	// commit clicks: a pass owns the orchestrator until it reaches a
	// terminal state.
	running atomic.Bool
}

// NewOrchestrator wires an orchestrator. catalog may be nil when no
// promotion configuration is available; the voucher and promotion
// stages are then skipped and assembly still submits. repo may be nil
// to disable audit records.
func NewOrchestrator(
	sys *hostsys.System,
	cat *catalog.Catalog,
	repo storage.Repository,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sys:        sys,
		catalog:    cat,
		classifier: classifier.New(sys.Lookup, logger),
		promotions: promotion.NewAllocator(sys.Lookup, sys.Chooser, logger),
		vouchers:   voucher.NewAllocator(logger),
		repo:       repo,
		logger:     logger,
	}
}
