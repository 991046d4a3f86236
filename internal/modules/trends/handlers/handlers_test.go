package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/labourdash/internal/modules/trends"
)

type fakeService struct {
	tenant string
	req    trends.Request
	err    error
}

func (f *fakeService) GetTrends(ctx context.Context, tenantID string, req trends.Request) (*trends.Payload, error) {
	f.tenant = tenantID
	f.req = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &trends.Payload{
		RangeDays:   req.RangeDays,
		Granularity: trends.GranularityFor(req.RangeDays),
		Currency:    "USD",
		Trend:       []trends.TrendPoint{},
	}, nil
}

func serve(t *testing.T, service TrendsService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(service, "default", zerolog.Nop()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	handler := NewHandler(&fakeService{}, "default", zerolog.Nop())
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})

	for _, path := range []string{"/labour/trends", "/labour/trends/ranges"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEqual(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHandleGetTrends_Defaults(t *testing.T) {
	service := &fakeService{}
	rec := serve(t, service, httptest.NewRequest(http.MethodGet, "/labour/trends", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "default", service.tenant)
	assert.Equal(t, trends.DefaultRangeDays, service.req.RangeDays)
	assert.Nil(t, service.req.Target)

	var payload trends.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, trends.GranularityWeek, payload.Granularity)
}

func TestHandleGetTrends_Parameters(t *testing.T) {
	service := &fakeService{}
	req := httptest.NewRequest(http.MethodGet, "/labour/trends?rangeDays=365&targetLabourCostPerJob=120.5", nil)
	req.Header.Set(TenantHeader, "acme")
	rec := serve(t, service, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", service.tenant)
	assert.Equal(t, 365, service.req.RangeDays)
	require.NotNil(t, service.req.Target)
	assert.Equal(t, 120.5, *service.req.Target)
}

func TestHandleGetTrends_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric range", "?rangeDays=abc"},
		{"unsupported range", "?rangeDays=60"},
		{"negative target", "?targetLabourCostPerJob=-5"},
		{"non-numeric target", "?targetLabourCostPerJob=lots"},
		{"NaN target", "?targetLabourCostPerJob=NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeService{}, httptest.NewRequest(http.MethodGet, "/labour/trends"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleGetTrends_InternalError(t *testing.T) {
	service := &fakeService{err: errors.New("failed to load snapshot: disk I/O error")}
	rec := serve(t, service, httptest.NewRequest(http.MethodGet, "/labour/trends", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk I/O")
}

func TestHandleGetRanges(t *testing.T) {
	rec := serve(t, &fakeService{}, httptest.NewRequest(http.MethodGet, "/labour/trends/ranges", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Default int `json:"default"`
		Ranges  []struct {
			RangeDays   int    `json:"rangeDays"`
			Granularity string `json:"granularity"`
		} `json:"ranges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 90, body.Default)
	require.Len(t, body.Ranges, 4)
	assert.Equal(t, "month", body.Ranges[3].Granularity)
}
