// Package assembly sequences one party-order pass: validation, host
// voucher allocation, promotion offers, and hand-off to the external
// order submission. Voucher allocation always settles (including the
// remainder decision) before promotion classification runs, and
// promotions settle before submission; promotional lines must never be
// voucher-discounted.
package assembly

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/partyplan/party-order-backend/internal/adapters/hostsys"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/domain/order"
	"github.com/partyplan/party-order-backend/internal/domain/promotion"
	"github.com/partyplan/party-order-backend/internal/infrastructure/storage"
)

// minGuests is the smallest guest list a party may submit with.
const minGuests = 3

// hostTableID keys the host's product table in price backups.
const hostTableID = "host"

// Run executes the assembly pipeline for one order document. On any
// failure or user abort the voucher-discounted prices are restored
// before Run returns, so the document is back in its editable state.
func (o *Orchestrator) Run(ctx context.Context, ord *order.Order, opts Options) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrInProgress
	}
	defer o.running.Store(false)

	started := time.Now()
	result := &Result{RunID: uuid.NewString(), State: StateValidating}
	actx := NewContext()

	run := func() error {
		if err := o.validate(ctx, ord); err != nil {
			return err
		}

		result.State = StateApplyingVoucher
		if err := o.applyVoucher(ctx, ord, actx, result); err != nil {
			return err
		}

		result.State = StateApplyingPromotions
		if err := o.applyPromotions(ctx, ord, result); err != nil {
			return err
		}

		result.State = StateSubmitting
		return o.submit(ctx, ord, actx, opts, result)
	}

	err := run()
	if err != nil {
		restored := actx.Backups.Restore(o.logger)
		if restored > 0 {
			o.logger.Info("Restored voucher-discounted prices",
				"party", ord.PartyID,
				"restored_lines", restored,
			)
		}
		result.State = StateFailed
	} else {
		actx.Backups.Discard()
		result.State = StateDone
	}

	o.recordRun(ord, opts, result, err, started)
	return result, err
}

// validate confirms every participant has at least one orderable line.
// Zero-item guests may be removed when at least minGuests remain; a
// host without items always sends the user back to editing.
func (o *Orchestrator) validate(ctx context.Context, ord *order.Order) error {
	host := ord.Host()
	if host == nil {
		o.sys.Notifier.Notify("No host on this party.", hostsys.SeverityError)
		return ErrValidation
	}

	o.resolveNames(ctx, ord)

	seen := make(map[string]bool, len(ord.Participants))
	for _, p := range ord.Participants {
		if seen[p.CustomerID] {
			o.sys.Notifier.Notify(
				fmt.Sprintf("%s appears more than once on this party.", p.DisplayName()),
				hostsys.SeverityError,
			)
			return ErrValidation
		}
		seen[p.CustomerID] = true
	}

	if n := ord.GuestCount(); n < minGuests {
		o.sys.Notifier.Notify(
			fmt.Sprintf("At least %d guests are required, the party has %d.", minGuests, n),
			hostsys.SeverityError,
		)
		return ErrValidation
	}
	if n := ord.GuestCount(); n > order.MaxGuests {
		o.sys.Notifier.Notify(
			fmt.Sprintf("A party supports at most %d guests, found %d.", order.MaxGuests, n),
			hostsys.SeverityError,
		)
		return ErrValidation
	}

	if !host.HasOrderedItems() {
		o.sys.Notifier.Notify(
			fmt.Sprintf("The host (%s) has no products selected.", host.DisplayName()),
			hostsys.SeverityError,
		)
		return ErrValidation
	}

	var zeroGuests []*order.Participant
	for _, g := range ord.Guests() {
		if !g.HasOrderedItems() {
			zeroGuests = append(zeroGuests, g)
		}
	}
	if len(zeroGuests) == 0 {
		return nil
	}

	names := make([]string, 0, len(zeroGuests))
	for _, g := range zeroGuests {
		names = append(names, g.DisplayName())
	}

	if ord.GuestCount()-len(zeroGuests) < minGuests {
		o.sys.Notifier.Notify(
			fmt.Sprintf("Guests without orders: %s. Removing them would leave fewer than %d guests.",
				strings.Join(names, ", "), minGuests),
			hostsys.SeverityError,
		)
		return ErrValidation
	}

	remove, err := o.sys.Chooser.Decide(ctx,
		"Guests without orders",
		fmt.Sprintf("The following guests have no products selected: %s.", strings.Join(names, ", ")),
		"Remove them and continue",
		"Go back to editing",
	)
	if err != nil {
		return fmt.Errorf("validation dialog: %w", err)
	}
	if !remove {
		return ErrValidation
	}

	for _, g := range zeroGuests {
		ord.RemoveGuest(g.CustomerID)
		o.logger.Info("Removed guest without orders",
			"party", ord.PartyID,
			"guest", g.CustomerID,
		)
	}
	return nil
}

// resolveNames fills in the participants' display names. A failed
// lookup keeps the customer id as the name.
func (o *Orchestrator) resolveNames(ctx context.Context, ord *order.Order) {
	for _, p := range ord.Participants {
		name, err := o.sys.Lookup.CustomerDisplayName(ctx, p.CustomerID)
		if err != nil {
			o.logger.Debug("Could not resolve customer name",
				"customer", p.CustomerID,
				"error", err,
			)
			continue
		}
		p.SetDisplayName(name)
	}
}

// applyVoucher settles the host's voucher credit, including the
// remainder decision. Without a catalog there is no voucher tier data,
// so the stage is skipped.
func (o *Orchestrator) applyVoucher(ctx context.Context, ord *order.Order, actx *Context, result *Result) error {
	if o.catalog == nil {
		o.logger.Warn("No promotion catalog configured, skipping voucher stage",
			"party", ord.PartyID,
		)
		return nil
	}

	if ord.VoucherCredit == 0 {
		ord.VoucherCredit = o.catalog.VoucherCreditFor(ord.TotalRevenue())
	}
	result.VoucherCredit = ord.VoucherCredit
	if ord.VoucherCredit <= 0 {
		return nil
	}

	host := ord.Host()
	cls, err := o.classifier.Classify(ctx, host, o.catalog)
	if err != nil {
		return fmt.Errorf("classify host: %w", err)
	}

	alloc := o.vouchers.Apply(hostTableID, host, cls.EligibleIndexes, ord.VoucherCredit, actx.Backups)
	result.VoucherConsumed = alloc.Consumed
	result.VoucherRemainder = alloc.Remainder

	o.logger.Info("Applied host voucher",
		"party", ord.PartyID,
		"credit", ord.VoucherCredit,
		"consumed", alloc.Consumed,
		"remainder", alloc.Remainder,
		"order_total", ord.TotalRevenue(),
	)

	if !alloc.NeedsRemainderDecision() {
		return nil
	}

	// The zero-eligible-items case lands here too, with the full
	// credit as remainder.
	var question string
	if alloc.Consumed == 0 {
		question = fmt.Sprintf(
			"The host has a voucher of %.2f but no discountable products selected. The full voucher would lapse.",
			ord.VoucherCredit)
	} else {
		question = fmt.Sprintf(
			"The host's voucher of %.2f could only be applied for %.2f. The remaining %.2f would lapse.",
			ord.VoucherCredit, alloc.Consumed, alloc.Remainder)
	}

	lapse, err := o.sys.Chooser.Decide(ctx,
		"Voucher not fully used",
		question,
		"Let the remainder lapse",
		"Go back to editing",
	)
	if err != nil {
		return fmt.Errorf("remainder dialog: %w", err)
	}
	if !lapse {
		return ErrAborted
	}

	o.logger.Info("Voucher remainder lapses",
		"party", ord.PartyID,
		"remainder", alloc.Remainder,
	)
	return nil
}

// applyPromotions classifies every participant and runs the promotion
// offers. Zero qualifying participants is not an error; without a
// catalog the stage is skipped and assembly still submits.
func (o *Orchestrator) applyPromotions(ctx context.Context, ord *order.Order, result *Result) error {
	if o.catalog == nil {
		o.logger.Warn("No promotion catalog configured, skipping promotion stage",
			"party", ord.PartyID,
		)
		return nil
	}

	var candidates []promotion.Candidate
	for _, p := range ord.Participants {
		if !p.HasOrderedItems() {
			continue
		}
		cls, err := o.classifier.Classify(ctx, p, o.catalog)
		if err != nil {
			return fmt.Errorf("classify %s: %w", p.CustomerID, err)
		}
		if cls.Tier == catalog.TierNone {
			continue
		}
		candidates = append(candidates, promotion.Candidate{
			Participant:      p,
			Tier:             cls.Tier,
			EligibleSubtotal: cls.EligibleSubtotal,
		})
	}

	applied, err := o.promotions.Allocate(ctx, candidates, o.catalog)
	if err != nil {
		return fmt.Errorf("promotion allocation: %w", err)
	}
	result.PromotionsApplied = applied

	if applied > 0 {
		o.sys.Notifier.Notify(
			fmt.Sprintf("%d promotional articles were added.", applied),
			hostsys.SeverityInfo,
		)
	}
	return nil
}

// submit hands the assembled line items to the order-submission
// collaborator. A failure restores the voucher prices via the caller's
// rollback and surfaces ErrSubmission.
func (o *Orchestrator) submit(ctx context.Context, ord *order.Order, actx *Context, opts Options, result *Result) error {
	sub := hostsys.Submission{PartyID: ord.PartyID}
	for _, p := range ord.Participants {
		if !p.HasOrderedItems() {
			continue
		}
		sub.Orders = append(sub.Orders, hostsys.ParticipantOrder{
			CustomerID:  p.CustomerID,
			DisplayName: p.DisplayName(),
			Role:        p.Role,
			Items:       p.Items,
		})
	}

	if opts.DryRun {
		o.logger.Info("[DRY RUN] Would submit party order",
			"party", ord.PartyID,
			"orders", len(sub.Orders),
			"total", ord.TotalRevenue(),
		)
		// Leave the document untouched: the deferred rollback in Run
		// does not fire on success, so restore here.
		if restored := actx.Backups.Restore(o.logger); restored > 0 {
			o.logger.Info("[DRY RUN] Restored voucher-discounted prices", "restored_lines", restored)
		}
		return nil
	}

	res, err := o.sys.Submitter.SubmitOrder(ctx, sub)
	if err != nil {
		o.sys.Notifier.Notify(
			fmt.Sprintf("Order creation failed: %v", err),
			hostsys.SeverityError,
		)
		return fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	result.CreatedOrderIDs = res.CreatedOrderIDs
	o.sys.Notifier.Notify(
		fmt.Sprintf("%d orders were created.", len(res.CreatedOrderIDs)),
		hostsys.SeverityInfo,
	)
	return nil
}

// recordRun writes the audit record. A storage failure never fails the
// assembly itself.
func (o *Orchestrator) recordRun(ord *order.Order, opts Options, result *Result, runErr error, started time.Time) {
	if o.repo == nil {
		return
	}

	hostID := ""
	if h := ord.Host(); h != nil {
		hostID = h.CustomerID
	}
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	rec := &storage.AssemblyRecord{
		RunID:             result.RunID,
		PartyID:           ord.PartyID,
		Host:              hostID,
		ParticipantCount:  len(ord.Participants),
		VoucherCredit:     result.VoucherCredit,
		VoucherConsumed:   result.VoucherConsumed,
		VoucherRemainder:  result.VoucherRemainder,
		PromotionsApplied: result.PromotionsApplied,
		FinalState:        string(result.State),
		ErrorMessage:      errMsg,
		CreatedOrderIDs:   result.CreatedOrderIDs,
		DryRun:            opts.DryRun,
		StartedAt:         started,
		CompletedAt:       time.Now(),
	}

	if err := o.repo.SaveRun(rec); err != nil {
		o.logger.Warn("Failed to save assembly run record",
			"run_id", result.RunID,
			"error", err,
		)
	}
}
