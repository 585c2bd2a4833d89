package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyplan/party-order-backend/internal/api/dto"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/infrastructure/storage"
)

func testServer(repo storage.Repository) *Server {
	return NewServer(DefaultConfig(), repo, catalog.Default(), nil)
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func seedRun(t *testing.T, repo *storage.MockRepository, runID, partyID string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.SaveRun(&storage.AssemblyRecord{
		RunID:            runID,
		PartyID:          partyID,
		Host:             "HOST-1",
		ParticipantCount: 4,
		FinalState:       "done",
		StartedAt:        at,
		CompletedAt:      at.Add(time.Second),
	}))
}

func TestServer_Health(t *testing.T) {
	s := testServer(storage.NewMockRepository())

	rec := doRequest(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestServer_ListRuns(t *testing.T) {
	repo := storage.NewMockRepository()
	base := time.Now().UTC().Add(-time.Hour)
	seedRun(t, repo, "run-1", "PARTY-1", base)
	seedRun(t, repo, "run-2", "PARTY-2", base.Add(time.Minute))

	rec := doRequest(t, testServer(repo), http.MethodGet, "/api/runs")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "run-2", resp.Runs[0].RunID)
}

func TestServer_GetRun(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo, "run-1", "PARTY-1", time.Now().UTC())

	rec := doRequest(t, testServer(repo), http.MethodGet, "/api/runs/run-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PARTY-1", resp.PartyID)
	assert.Equal(t, "done", resp.State)
}

func TestServer_GetRun_NotFound(t *testing.T) {
	rec := doRequest(t, testServer(storage.NewMockRepository()), http.MethodGet, "/api/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var apiErr dto.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, dto.ErrCodeNotFound, apiErr.Code)
}

func TestServer_GetRun_StorageError(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.GetRunErr = errors.New("db down")

	rec := doRequest(t, testServer(repo), http.MethodGet, "/api/runs/run-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_ListRunsForParty(t *testing.T) {
	repo := storage.NewMockRepository()
	base := time.Now().UTC().Add(-time.Hour)
	seedRun(t, repo, "run-1", "PARTY-1", base)
	seedRun(t, repo, "run-2", "PARTY-2", base.Add(time.Minute))
	seedRun(t, repo, "run-3", "PARTY-1", base.Add(2*time.Minute))

	rec := doRequest(t, testServer(repo), http.MethodGet, "/api/parties/PARTY-1/runs")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "run-3", resp.Runs[0].RunID)
}

func TestServer_Catalog(t *testing.T) {
	rec := doRequest(t, testServer(storage.NewMockRepository()), http.MethodGet, "/api/catalog")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 99.0, resp.Stage1Min)
	assert.Equal(t, 199.0, resp.Stage1Max)
	assert.Len(t, resp.Standard, 4)
	assert.Len(t, resp.Premium, 3)
	assert.Len(t, resp.CreditTiers, 4)
}

func TestServer_Catalog_NotConfigured(t *testing.T) {
	s := NewServer(DefaultConfig(), storage.NewMockRepository(), nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/catalog")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
