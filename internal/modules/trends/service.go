package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/cache"
	"github.com/aristath/labourdash/internal/domain"
)

// Service runs one fetch-then-compute cycle per request, memoising payloads
// by the full input tuple.
type Service struct {
	source   domain.SnapshotSource
	cache    *cache.Cache[Payload] // optional
	currency string
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new trends service. payloadCache may be nil.
func NewService(
	source domain.SnapshotSource,
	payloadCache *cache.Cache[Payload],
	currency string,
	log zerolog.Logger,
) *Service {
	return &Service{
		source:   source,
		cache:    payloadCache,
		currency: currency,
		now:      time.Now,
		log:      log.With().Str("service", "trends").Logger(),
	}
}

// SetClock replaces the clock that anchors the lookback window.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetTrends validates the request and returns the payload for the tenant.
func (s *Service) GetTrends(ctx context.Context, tenantID string, req Request) (*Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	today := s.now().UTC()

	var key string
	if s.cache != nil {
		version, err := s.source.SnapshotVersion(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get snapshot version: %w", err)
		}
		key = cache.TrendsKey(tenantID, req.RangeDays, req.Target, version, today)

		if cached, ok := s.cache.Get(key); ok {
			s.log.Debug().
				Str("tenant", tenantID).
				Int("range_days", req.RangeDays).
				Msg("Trends cache hit")
			cached.normalize()
			return &cached, nil
		}
	}

	snapshot, err := s.source.LoadSnapshot(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	start := time.Now()
	payload := Compute(snapshot, Options{
		RangeDays: req.RangeDays,
		Target:    req.Target,
		Today:     today,
		Currency:  s.currency,
	})

	s.log.Debug().
		Str("tenant", tenantID).
		Int("range_days", req.RangeDays).
		Int("time_records", len(snapshot.TimeRecords)).
		Int("periods", len(payload.Trend)).
		Int("anomalies", len(payload.Anomalies)).
		Dur("duration_ms", time.Since(start)).
		Msg("Computed labour trends")

	if s.cache != nil {
		if err := s.cache.Set(key, *payload); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache trends payload")
		}
	}

	return payload, nil
}

// WarmCache precomputes the untargeted payload of every supported range.
func (s *Service) WarmCache(ctx context.Context, tenantID string) error {
	if s.cache == nil {
		return nil
	}

	for _, days := range SupportedRanges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.GetTrends(ctx, tenantID, Request{RangeDays: days}); err != nil {
			return fmt.Errorf("failed to warm %d-day trends: %w", days, err)
		}
	}

	s.log.Info().Str("tenant", tenantID).Int("ranges", len(SupportedRanges)).Msg("Trends cache warmed")
	return nil
}

// CacheStats returns the payload cache counters, or zero values without a cache.
func (s *Service) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}
