// Package promotion offers qualifying participants their tier's
// promotional articles and appends the chosen article as a new order
// line at its price-list rate.
package promotion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/partyplan/party-order-backend/internal/adapters/hostsys"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/domain/order"
)

// deliveryOffsetDays is the delivery date offset for promotion lines.
const deliveryOffsetDays = 7

// Candidate is one participant that qualified for a promotion tier.
type Candidate struct {
	Participant      *order.Participant
	Tier             catalog.Tier
	EligibleSubtotal float64
}

// Allocator runs the promotion offers and applies the selections.
type Allocator struct {
	lookup  hostsys.Lookup
	chooser hostsys.Chooser
	logger  *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewAllocator creates a promotion allocator.
func NewAllocator(lookup hostsys.Lookup, chooser hostsys.Chooser, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{lookup: lookup, chooser: chooser, logger: logger, now: time.Now}
}

type selection struct {
	participant *order.Participant
	sku         string
	name        string
}

// Allocate presents each candidate her tier's option list plus an
// explicit decline, then applies all accepted selections in parallel.
// Declining is final; an unmapped selection counts as a decline. One
// failing selection never blocks the others. Returns the number of
// promotion lines actually appended.
func (a *Allocator) Allocate(ctx context.Context, candidates []Candidate, cat *catalog.Catalog) (int, error) {
	promoSKUs := cat.AllSKUs()
	var selections []selection

	for _, cand := range candidates {
		p := cand.Participant
		if cand.Tier == catalog.TierNone {
			continue
		}
		// At most one promotional item per participant per pass, even
		// when the allocator runs twice due to a retry.
		if p.HasAnySKU(promoSKUs) {
			a.logger.Debug("Participant already rewarded, skipping offer",
				"participant", p.CustomerID,
			)
			continue
		}

		options := make([]string, 0, len(cat.OptionsFor(cand.Tier)))
		for _, opt := range cat.OptionsFor(cand.Tier) {
			options = append(options, opt.Name)
		}

		choice, err := a.chooser.PresentChoice(ctx, hostsys.ChoiceRequest{
			Title:      "Congratulations!",
			Prompt:     "Pick a promotional article for " + p.DisplayName(),
			Options:    options,
			AllowEmpty: true,
		})
		if err != nil {
			return 0, err
		}
		if choice == "" {
			a.logger.Debug("Participant declined the promotion",
				"participant", p.CustomerID,
			)
			continue
		}

		sku, ok := cat.SKUForName(choice)
		if !ok {
			a.logger.Warn("Selected article name is not in the catalog, treating as decline",
				"participant", p.CustomerID,
				"selection", choice,
			)
			continue
		}
		selections = append(selections, selection{participant: p, sku: sku, name: choice})
	}

	// Apply accepted selections in parallel; each append touches only
	// its own participant's table.
	var applied atomic.Int64
	var wg sync.WaitGroup
	for _, sel := range selections {
		sel := sel
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := a.applySelection(ctx, sel, cat)
			if err != nil {
				a.logger.Error("Failed to apply promotion selection",
					"participant", sel.participant.CustomerID,
					"sku", sel.sku,
					"error", err,
				)
				return
			}
			if ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	return int(applied.Load()), nil
}

// applySelection fetches the item master data and appends the
// promotion line to the participant's table. Reports whether a line
// was actually appended; a SKU without an item record is skipped, not
// counted.
func (a *Allocator) applySelection(ctx context.Context, sel selection, cat *catalog.Catalog) (bool, error) {
	master, err := a.lookup.ItemMaster(ctx, sel.sku)
	if err != nil {
		if errors.Is(err, hostsys.ErrNotFound) {
			a.logger.Warn("Promotional SKU has no item record, skipping",
				"sku", sel.sku,
			)
			return false, nil
		}
		return false, err
	}

	warehouse := sel.participant.FirstWarehouse()
	if warehouse == "" {
		warehouse = cat.DefaultWarehouse
	}

	name := master.DisplayName
	if name == "" {
		name = sel.name
	}
	uom := master.StockUOM
	if uom == "" {
		uom = "Stk"
	}

	li := order.NewLineItem(sel.sku, 1, master.DefaultRate)
	li.ItemName = name
	li.Description = name
	li.UOM = uom
	li.StockUOM = uom
	li.Warehouse = warehouse
	li.DeliveryDate = a.now().AddDate(0, 0, deliveryOffsetDays)
	li.State = order.StatePromotional

	sel.participant.Items = append(sel.participant.Items, li)

	a.logger.Info("Added promotional article",
		"participant", sel.participant.CustomerID,
		"sku", sel.sku,
		"rate", master.DefaultRate,
	)
	return true, nil
}
