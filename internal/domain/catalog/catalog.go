// Package catalog holds the typed promotion configuration: the two
// subtotal thresholds, the promotional articles offered per tier, and
// the revenue tiers that determine the host's voucher credit.
//
// The catalog is loaded and validated once, then carried immutably
// through the assembly pass. Thresholds and SKUs are data, never
// compile-time constants.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier classifies a participant's promotion-eligible subtotal.
type Tier int

const (
	TierNone Tier = iota
	TierStandard
	TierPremium
)

// String returns the tier name for logs and API responses.
func (t Tier) String() string {
	switch t {
	case TierStandard:
		return "standard"
	case TierPremium:
		return "premium"
	default:
		return "none"
	}
}

// ErrNotConfigured is returned when no catalog is available. Callers
// skip the promotion stage in that case; it never blocks an order.
var ErrNotConfigured = errors.New("promotion catalog not configured")

// Option is one promotional article a qualifying participant may pick.
type Option struct {
	SKU  string `yaml:"sku"`
	Name string `yaml:"name"`
}

// CreditTier maps a minimum party revenue to a host voucher credit.
type CreditTier struct {
	MinRevenue float64 `yaml:"min_revenue"`
	Credit     float64 `yaml:"credit"`
}

// Catalog is the full promotion configuration.
type Catalog struct {
	// Stage1Min and Stage1Max bound the Standard tier. Both
	// comparisons are strict: subtotal > Stage1Max is Premium,
	// Stage1Min < subtotal <= Stage1Max is Standard.
	Stage1Min float64 `yaml:"stage1_min"`
	Stage1Max float64 `yaml:"stage1_max"`

	Standard []Option `yaml:"standard"`
	Premium  []Option `yaml:"premium"`

	// CreditTiers must be ordered by ascending MinRevenue.
	CreditTiers []CreditTier `yaml:"credit_tiers"`

	// DefaultWarehouse is used for promotion lines when the
	// participant has no warehouse on her existing lines.
	DefaultWarehouse string `yaml:"default_warehouse"`
}

// Default returns the catalog matching the original campaign settings.
func Default() *Catalog {
	return &Catalog{
		Stage1Min: 99,
		Stage1Max: 199,
		Standard: []Option{
			{SKU: "50238-Aktion", Name: "V1: Duo-Ministar"},
			{SKU: "52004-Aktion", Name: "V2: Lavendelbl. Waschmittel"},
			{SKU: "50320-Aktion", Name: "V3: ENJOfil Wohnen"},
			{SKU: "15312a-Aktion", Name: "V4: Multi-Tool Platte & Faser Stark"},
		},
		Premium: []Option{
			{SKU: "15313-Aktion", Name: "V5: Duo-Ministar & Lavendelbl."},
			{SKU: "15308-Aktion", Name: "V6: Duo-Ministar & ENJOfil"},
			{SKU: "15312b-Aktion", Name: "V7: Multi-Tool Platte & Faser Stark"},
		},
		CreditTiers: []CreditTier{
			{MinRevenue: 350, Credit: 30},
			{MinRevenue: 600, Credit: 60},
			{MinRevenue: 850, Credit: 95},
			{MinRevenue: 1100, Credit: 130},
		},
		DefaultWarehouse: "Lagerräume - BM",
	}
}

// Load reads and validates a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotConfigured, path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate rejects catalogs with missing SKUs or names, empty option
// lists, or non-increasing thresholds.
func (c *Catalog) Validate() error {
	if c.Stage1Min <= 0 || c.Stage1Max <= c.Stage1Min {
		return fmt.Errorf("invalid thresholds: stage1_min=%.2f stage1_max=%.2f", c.Stage1Min, c.Stage1Max)
	}
	if len(c.Standard) == 0 {
		return errors.New("no standard tier options configured")
	}
	if len(c.Premium) == 0 {
		return errors.New("no premium tier options configured")
	}
	for _, opt := range append(append([]Option{}, c.Standard...), c.Premium...) {
		if opt.SKU == "" || opt.Name == "" {
			return fmt.Errorf("incomplete option: sku=%q name=%q", opt.SKU, opt.Name)
		}
	}
	var prev float64
	for _, ct := range c.CreditTiers {
		if ct.MinRevenue <= prev {
			return fmt.Errorf("credit tiers not ascending at min_revenue=%.2f", ct.MinRevenue)
		}
		if ct.Credit < 0 {
			return fmt.Errorf("negative credit for min_revenue=%.2f", ct.MinRevenue)
		}
		prev = ct.MinRevenue
	}
	return nil
}

// ClassifyAmount maps a promotion-eligible subtotal to its tier. A
// subtotal exactly on a boundary never qualifies for the higher tier.
func (c *Catalog) ClassifyAmount(subtotal float64) Tier {
	switch {
	case subtotal > c.Stage1Max:
		return TierPremium
	case subtotal > c.Stage1Min:
		return TierStandard
	default:
		return TierNone
	}
}

// OptionsFor returns the option list for the given tier.
func (c *Catalog) OptionsFor(tier Tier) []Option {
	switch tier {
	case TierStandard:
		return c.Standard
	case TierPremium:
		return c.Premium
	default:
		return nil
	}
}

// SKUForName maps a selected display name back to its SKU. Unmapped
// names report ok=false and are treated as "no selection" by callers.
func (c *Catalog) SKUForName(name string) (string, bool) {
	for _, opt := range c.Standard {
		if opt.Name == name {
			return opt.SKU, true
		}
	}
	for _, opt := range c.Premium {
		if opt.Name == name {
			return opt.SKU, true
		}
	}
	return "", false
}

// AllSKUs returns the full promotional SKU set across both tiers.
func (c *Catalog) AllSKUs() map[string]bool {
	skus := make(map[string]bool, len(c.Standard)+len(c.Premium))
	for _, opt := range c.Standard {
		skus[opt.SKU] = true
	}
	for _, opt := range c.Premium {
		skus[opt.SKU] = true
	}
	return skus
}

// VoucherCreditFor returns the host voucher credit earned by the given
// party revenue: the credit of the highest tier whose minimum is met.
func (c *Catalog) VoucherCreditFor(revenue float64) float64 {
	var credit float64
	for _, ct := range c.CreditTiers {
		if revenue >= ct.MinRevenue {
			credit = ct.Credit
		} else {
			break
		}
	}
	return credit
}
