package storage

import (
	"encoding/json"
	"time"
)

// AssemblyRecord is the audit row written for every assembly run,
// successful or not.
type AssemblyRecord struct {
	RunID             string    `json:"run_id"`
	PartyID           string    `json:"party_id"`
	Host              string    `json:"host"`
	ParticipantCount  int       `json:"participant_count"`
	VoucherCredit     float64   `json:"voucher_credit"`
	VoucherConsumed   float64   `json:"voucher_consumed"`
	VoucherRemainder  float64   `json:"voucher_remainder"`
	PromotionsApplied int       `json:"promotions_applied"`
	FinalState        string    `json:"final_state"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	CreatedOrderIDs   []string  `json:"created_order_ids,omitempty"`
	DryRun            bool      `json:"dry_run"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
}

// marshalOrderIDs encodes the created order ids for the orders_json
// column. A nil slice encodes as an empty array.
func (r *AssemblyRecord) marshalOrderIDs() string {
	if len(r.CreatedOrderIDs) == 0 {
		return "[]"
	}
	data, err := json.Marshal(r.CreatedOrderIDs)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalOrderIDs(data string) []string {
	if data == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
