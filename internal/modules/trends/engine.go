package trends

import (
	"time"

	"github.com/aristath/labourdash/internal/domain"
)

// Options configures one Compute call. Callers validate RangeDays and Target
// with Request.Validate before computing.
type Options struct {
	RangeDays int
	Target    *float64
	// Today anchors the lookback window; the window ends with this day.
	Today    time.Time
	Currency string
}

// Compute runs the whole engine over a snapshot and assembles the payload.
// It is deterministic: identical inputs produce identical payloads.
func Compute(snapshot domain.Snapshot, opts Options) *Payload {
	currencyCode := opts.Currency
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}

	periods, granularity := BuildPeriods(opts.RangeDays, opts.Today)
	ix := newRecordIndex(&snapshot, periods)
	// A window without any activity degrades to an empty trend.
	if !ix.hasActivity() {
		ix = newRecordIndex(&snapshot, []Period{})
	}
	trend := buildTrend(ix)
	breakdown := computeBreakdown(ix, trend)

	var target *float64
	if opts.Target != nil {
		t := *opts.Target
		target = &t
	}

	payload := &Payload{
		RangeDays:              opts.RangeDays,
		Granularity:            granularity,
		Currency:               currencyCode,
		TargetLabourCostPerJob: target,
		ProfitLeakage:          estimateLeakage(trend, target, breakdown, newMoneyFormatter(currencyCode)),
		KPIs:                   computeKPIs(trend),
		Trend:                  trend.Points,
		Breakdown:              breakdown,
		Anomalies:              detectAnomalies(trend.Points),
	}
	payload.normalize()
	return payload
}
