package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse represents an assembly run in API responses.
type RunResponse struct {
	RunID             string   `json:"run_id"`
	PartyID           string   `json:"party_id"`
	Host              string   `json:"host"`
	ParticipantCount  int      `json:"participant_count"`
	VoucherCredit     float64  `json:"voucher_credit"`
	VoucherConsumed   float64  `json:"voucher_consumed"`
	VoucherRemainder  float64  `json:"voucher_remainder"`
	PromotionsApplied int      `json:"promotions_applied"`
	State             string   `json:"state"`
	ErrorMessage      string   `json:"error_message,omitempty"`
	CreatedOrderIDs   []string `json:"created_order_ids,omitempty"`
	DryRun            bool     `json:"dry_run"`
	StartedAt         string   `json:"started_at"`
	CompletedAt       string   `json:"completed_at,omitempty"`
}

// RunListResponse is returned when listing assembly runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// TierOptionResponse represents a selectable promotion item.
type TierOptionResponse struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// CreditTierResponse represents one voucher credit bracket.
type CreditTierResponse struct {
	MinRevenue float64 `json:"min_revenue"`
	Credit     float64 `json:"credit"`
}

// CatalogResponse is returned by the catalog endpoint.
type CatalogResponse struct {
	Stage1Min        float64              `json:"stage1_min"`
	Stage1Max        float64              `json:"stage1_max"`
	Standard         []TierOptionResponse `json:"standard"`
	Premium          []TierOptionResponse `json:"premium"`
	CreditTiers      []CreditTierResponse `json:"credit_tiers"`
	DefaultWarehouse string               `json:"default_warehouse"`
}
