package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAmount_Boundaries(t *testing.T) {
	c := Default()

	// Both comparisons are strict.
	assert.Equal(t, TierNone, c.ClassifyAmount(0))
	assert.Equal(t, TierNone, c.ClassifyAmount(99))
	assert.Equal(t, TierStandard, c.ClassifyAmount(99.01))
	assert.Equal(t, TierStandard, c.ClassifyAmount(150))
	assert.Equal(t, TierStandard, c.ClassifyAmount(199))
	assert.Equal(t, TierPremium, c.ClassifyAmount(199.01))
	assert.Equal(t, TierPremium, c.ClassifyAmount(1000))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "none", TierNone.String())
	assert.Equal(t, "standard", TierStandard.String())
	assert.Equal(t, "premium", TierPremium.String())
}

func TestOptionsFor(t *testing.T) {
	c := Default()

	assert.Len(t, c.OptionsFor(TierStandard), 4)
	assert.Len(t, c.OptionsFor(TierPremium), 3)
	assert.Nil(t, c.OptionsFor(TierNone))
}

func TestSKUForName(t *testing.T) {
	c := Default()

	sku, ok := c.SKUForName("V1: Duo-Ministar")
	assert.True(t, ok)
	assert.Equal(t, "50238-Aktion", sku)

	sku, ok = c.SKUForName("V7: Multi-Tool Platte & Faser Stark")
	assert.True(t, ok)
	assert.Equal(t, "15312b-Aktion", sku)

	_, ok = c.SKUForName("not a real article")
	assert.False(t, ok)
}

func TestAllSKUs(t *testing.T) {
	c := Default()

	skus := c.AllSKUs()
	assert.Len(t, skus, 7)
	assert.True(t, skus["50238-Aktion"])
	assert.True(t, skus["15313-Aktion"])
}

func TestVoucherCreditFor(t *testing.T) {
	c := Default()

	assert.Equal(t, 0.0, c.VoucherCreditFor(0))
	assert.Equal(t, 0.0, c.VoucherCreditFor(349.99))
	assert.Equal(t, 30.0, c.VoucherCreditFor(350))
	assert.Equal(t, 30.0, c.VoucherCreditFor(599.99))
	assert.Equal(t, 60.0, c.VoucherCreditFor(600))
	assert.Equal(t, 95.0, c.VoucherCreditFor(850))
	assert.Equal(t, 130.0, c.VoucherCreditFor(1100))
	assert.Equal(t, 130.0, c.VoucherCreditFor(5000))
}

func TestValidate_RejectsBadThresholds(t *testing.T) {
	c := Default()
	c.Stage1Max = c.Stage1Min

	err := c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid thresholds")
}

func TestValidate_RejectsEmptyTiers(t *testing.T) {
	c := Default()
	c.Premium = nil

	err := c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "premium")
}

func TestValidate_RejectsIncompleteOption(t *testing.T) {
	c := Default()
	c.Standard[0].SKU = ""

	err := c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete option")
}

func TestValidate_RejectsUnorderedCreditTiers(t *testing.T) {
	c := Default()
	c.CreditTiers = []CreditTier{
		{MinRevenue: 600, Credit: 60},
		{MinRevenue: 350, Credit: 30},
	}

	err := c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not ascending")
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
stage1_min: 99
stage1_max: 199
standard:
  - sku: "A-1"
    name: "Article One"
premium:
  - sku: "B-1"
    name: "Bundle One"
credit_tiers:
  - min_revenue: 350
    credit: 30
default_warehouse: "Main - WH"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99.0, c.Stage1Min)
	assert.Equal(t, 199.0, c.Stage1Max)
	assert.Equal(t, "A-1", c.Standard[0].SKU)
	assert.Equal(t, "Main - WH", c.DefaultWarehouse)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoad_InvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stage1_min: 0\nstage1_max: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
