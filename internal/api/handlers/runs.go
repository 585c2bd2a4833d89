package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/partyplan/party-order-backend/internal/api/dto"
	"github.com/partyplan/party-order-backend/internal/infrastructure/storage"
)

// RunsHandler handles assembly run HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns recent assembly runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunListResponse(runs))
}

// Get handles GET /api/runs/{id} - returns a single assembly run.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("assembly run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunResponse(*run))
}

// ListForParty handles GET /api/parties/{partyID}/runs - returns all
// assembly runs recorded for one party.
func (h *RunsHandler) ListForParty(w http.ResponseWriter, r *http.Request) {
	partyID := chi.URLParam(r, "partyID")
	if partyID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("party ID is required"))
		return
	}

	runs, err := h.repo.ListRunsForParty(partyID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunListResponse(runs))
}

func toRunListResponse(runs []*storage.AssemblyRecord) dto.RunListResponse {
	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(*run))
	}
	return response
}

// toRunResponse converts a storage AssemblyRecord to an API response.
func toRunResponse(run storage.AssemblyRecord) dto.RunResponse {
	resp := dto.RunResponse{
		RunID:             run.RunID,
		PartyID:           run.PartyID,
		Host:              run.Host,
		ParticipantCount:  run.ParticipantCount,
		VoucherCredit:     run.VoucherCredit,
		VoucherConsumed:   run.VoucherConsumed,
		VoucherRemainder:  run.VoucherRemainder,
		PromotionsApplied: run.PromotionsApplied,
		State:             run.FinalState,
		ErrorMessage:      run.ErrorMessage,
		CreatedOrderIDs:   run.CreatedOrderIDs,
		DryRun:            run.DryRun,
		StartedAt:         run.StartedAt.UTC().Format(time.RFC3339),
	}
	if !run.CompletedAt.IsZero() {
		resp.CompletedAt = run.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
