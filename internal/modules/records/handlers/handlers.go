// Package handlers provides HTTP handlers for the labour record store.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/domain"
	"github.com/aristath/labourdash/internal/modules/records"
)

// TenantHeader carries the tenant the records belong to.
const TenantHeader = "X-Tenant-ID"

// maxImportBytes bounds the request body of an import.
const maxImportBytes = 32 << 20

// RecordStore is the subset of records.Repository the handlers need.
type RecordStore interface {
	Import(ctx context.Context, tenantID string, snapshot domain.Snapshot) (records.ImportCounts, error)
	LoadSnapshot(ctx context.Context, tenantID string) (domain.Snapshot, error)
	DeleteTimeRecord(ctx context.Context, tenantID, id string) error
}

// Handler handles record store HTTP requests
type Handler struct {
	store         RecordStore
	defaultTenant string
	log           zerolog.Logger
}

// NewHandler creates a new records handler
func NewHandler(store RecordStore, defaultTenant string, log zerolog.Logger) *Handler {
	return &Handler{
		store:         store,
		defaultTenant: defaultTenant,
		log:           log.With().Str("handler", "records").Logger(),
	}
}

// HandleImport upserts a batch of records
// POST /api/labour/records/import
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var snapshot domain.Snapshot
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&snapshot); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tenantID := h.tenant(r)
	counts, err := h.store.Import(r.Context(), tenantID, snapshot)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to import records")
		h.writeError(w, http.StatusInternalServerError, "Failed to import records")
		return
	}

	h.writeJSON(w, http.StatusOK, counts)
}

// HandleExport returns every record of the tenant
// GET /api/labour/records
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(r)
	snapshot, err := h.store.LoadSnapshot(r.Context(), tenantID)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to load records")
		h.writeError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleDeleteTimeRecord removes one time record
// DELETE /api/labour/records/time/{id}
func (h *Handler) HandleDeleteTimeRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tenantID := h.tenant(r)
	if err := h.store.DeleteTimeRecord(r.Context(), tenantID, id); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Str("id", id).Msg("Failed to delete time record")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete time record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) tenant(r *http.Request) string {
	if tenantID := strings.TrimSpace(r.Header.Get(TenantHeader)); tenantID != "" {
		return tenantID
	}
	return h.defaultTenant
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
