// Package handlers provides HTTP handlers for labour trend analytics.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/modules/trends"
)

// TenantHeader carries the tenant whose records are analysed.
const TenantHeader = "X-Tenant-ID"

// TrendsService is the subset of trends.Service the handlers need.
type TrendsService interface {
	GetTrends(ctx context.Context, tenantID string, req trends.Request) (*trends.Payload, error)
}

// Handler handles labour trend HTTP requests
type Handler struct {
	service       TrendsService
	defaultTenant string
	log           zerolog.Logger
}

// NewHandler creates a new trends handler
func NewHandler(service TrendsService, defaultTenant string, log zerolog.Logger) *Handler {
	return &Handler{
		service:       service,
		defaultTenant: defaultTenant,
		log:           log.With().Str("handler", "trends").Logger(),
	}
}

// HandleGetTrends returns the trend payload
// GET /api/labour/trends?rangeDays=90&targetLabourCostPerJob=120
func (h *Handler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
	if tenantID == "" {
		tenantID = h.defaultTenant
	}

	payload, err := h.service.GetTrends(r.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, trends.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to compute labour trends")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute labour trends")
		return
	}

	h.writeJSON(w, http.StatusOK, payload)
}

// HandleGetRanges lists the accepted lookback lengths
// GET /api/labour/trends/ranges
func (h *Handler) HandleGetRanges(w http.ResponseWriter, r *http.Request) {
	ranges := make([]map[string]interface{}, 0, len(trends.SupportedRanges))
	for _, days := range trends.SupportedRanges {
		ranges = append(ranges, map[string]interface{}{
			"rangeDays":   days,
			"granularity": trends.GranularityFor(days),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": trends.DefaultRangeDays,
		"ranges":  ranges,
	})
}

// parseRequest reads the query parameters. Semantic validation is left to the service.
func parseRequest(r *http.Request) (trends.Request, error) {
	query := r.URL.Query()
	req := trends.Request{RangeDays: trends.DefaultRangeDays}

	if raw := strings.TrimSpace(query.Get("rangeDays")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("rangeDays must be an integer")
		}
		req.RangeDays = days
	}

	if raw := strings.TrimSpace(query.Get("targetLabourCostPerJob")); raw != "" {
		target, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, errors.New("targetLabourCostPerJob must be a number")
		}
		req.Target = &target
	}

	return req, nil
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
