package handlers

import (
	"net/http"

	"github.com/partyplan/party-order-backend/internal/api/dto"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
)

// CatalogHandler serves the configured promotion catalog.
type CatalogHandler struct {
	*Base
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		Base:    NewBase(nil),
		catalog: cat,
	}
}

// Get handles GET /api/catalog - returns the active promotion catalog.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("catalog"))
		return
	}

	response := dto.CatalogResponse{
		Stage1Min:        h.catalog.Stage1Min,
		Stage1Max:        h.catalog.Stage1Max,
		Standard:         toTierOptions(h.catalog.Standard),
		Premium:          toTierOptions(h.catalog.Premium),
		CreditTiers:      make([]dto.CreditTierResponse, 0, len(h.catalog.CreditTiers)),
		DefaultWarehouse: h.catalog.DefaultWarehouse,
	}
	for _, tier := range h.catalog.CreditTiers {
		response.CreditTiers = append(response.CreditTiers, dto.CreditTierResponse{
			MinRevenue: tier.MinRevenue,
			Credit:     tier.Credit,
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}

func toTierOptions(opts []catalog.Option) []dto.TierOptionResponse {
	out := make([]dto.TierOptionResponse, 0, len(opts))
	for _, opt := range opts {
		out = append(out, dto.TierOptionResponse{SKU: opt.SKU, Name: opt.Name})
	}
	return out
}
