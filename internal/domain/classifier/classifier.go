// Package classifier computes a participant's promotion-eligible
// subtotal and the resulting discount tier.
//
// Eligibility of each SKU comes from the host system; the lookups for
// one participant are issued concurrently and joined before the
// aggregate is computed, so completion order never affects the result.
package classifier

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/partyplan/party-order-backend/internal/adapters/hostsys"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/domain/order"
)

// Result is the classification outcome for one participant.
type Result struct {
	Tier             catalog.Tier
	EligibleSubtotal float64
	// EligibleItems lists the promotion-eligible lines in document order.
	EligibleItems []*order.LineItem
	// EligibleIndexes holds the table row index of each eligible line,
	// ascending. The voucher allocator consumes these.
	EligibleIndexes []int
}

// Classifier classifies participants against a promotion catalog.
type Classifier struct {
	lookup hostsys.Lookup
	logger *slog.Logger
}

// New creates a classifier using the given lookup collaborator.
func New(lookup hostsys.Lookup, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{lookup: lookup, logger: logger}
}

// Classify computes the participant's tier, eligible subtotal and the
// eligible lines. A participant already holding any catalog promotional
// SKU is never reclassified and comes back as (TierNone, 0, nil).
//
// Items without a SKU or positive quantity are skipped, and a lookup
// failure for one SKU only drops that item from the aggregate.
func (c *Classifier) Classify(ctx context.Context, p *order.Participant, cat *catalog.Catalog) (*Result, error) {
	if p.HasAnySKU(cat.AllSKUs()) {
		c.logger.Debug("Participant already holds a promotional item",
			"participant", p.CustomerID,
		)
		return &Result{Tier: catalog.TierNone}, nil
	}

	// One slot per line; each lookup goroutine writes only its own
	// slot, the join below is the completion barrier.
	eligible := make([]bool, len(p.Items))

	g, gctx := errgroup.WithContext(ctx)
	for i, li := range p.Items {
		if !li.Orderable() {
			continue
		}
		i, li := i, li
		g.Go(func() error {
			flagged, err := c.lookup.ItemFlag(gctx, li.ItemCode, hostsys.PromotionFlagAttribute)
			if err != nil {
				if errors.Is(err, hostsys.ErrNotFound) {
					c.logger.Debug("SKU has no backing record, skipping",
						"sku", li.ItemCode,
					)
					return nil
				}
				return err
			}
			eligible[i] = flagged
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, li := range p.Items {
		if !eligible[i] {
			continue
		}
		result.EligibleItems = append(result.EligibleItems, li)
		result.EligibleIndexes = append(result.EligibleIndexes, i)
		result.EligibleSubtotal += li.Amount
	}

	if len(result.EligibleItems) > 0 {
		result.Tier = cat.ClassifyAmount(result.EligibleSubtotal)
	}

	c.logger.Debug("Classified participant",
		"participant", p.CustomerID,
		"eligible_items", len(result.EligibleItems),
		"eligible_subtotal", result.EligibleSubtotal,
		"tier", result.Tier.String(),
	)

	return result, nil
}
