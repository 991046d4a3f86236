// Package trends implements the labour-cost trend analytics engine.
//
// The engine turns a snapshot of time, job, worker and job-type records into
// calendar-aligned period aggregates, period-over-period KPI deltas, breakdowns,
// anomalies and a profit leakage estimate. Compute is a pure function: it never
// mutates the snapshot and every structure it returns is freshly allocated.
package trends

import "time"

// Granularity is the calendar unit of one trend period.
type Granularity string

const (
	// GranularityWeek buckets are Monday-aligned and seven days long.
	GranularityWeek Granularity = "week"
	// GranularityMonth buckets are aligned to the first of the month.
	GranularityMonth Granularity = "month"
)

// dateLayout is the wire format of period bounds.
const dateLayout = "2006-01-02"

// Period is a half-open calendar window [Start, End) in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Range converts the period to its serialised form.
func (p Period) Range() PeriodRange {
	return PeriodRange{
		Start: p.Start.UTC().Format(dateLayout),
		End:   p.End.UTC().Format(dateLayout),
	}
}

// PeriodRange is the serialised period. End is exclusive.
type PeriodRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TrendPoint aggregates every record of one period.
type TrendPoint struct {
	Period               PeriodRange `json:"period"`
	TotalLabourCost      float64     `json:"totalLabourCost"`
	JobsCount            int         `json:"jobsCount"`
	AvgLabourCostPerJob  float64     `json:"avgLabourCostPerJob"`
	OvertimeCost         float64     `json:"overtimeCost"`
	OvertimeHours        float64     `json:"overtimeHours"`
	OvertimePctOfLabour  float64     `json:"overtimePctOfLabour"`
	AvgActualHoursPerJob float64     `json:"avgActualHoursPerJob"`
	TotalActualHours     float64     `json:"totalActualHours"`
	Revenue              float64     `json:"revenue"`
	RevenuePerLabourHour *float64    `json:"revenuePerLabourHour"`
}

// KPIValue compares one metric between the current and previous period.
type KPIValue struct {
	Value    float64  `json:"value"`
	DeltaPct float64  `json:"deltaPct"`
	DeltaAbs *float64 `json:"deltaAbs,omitempty"`
}

// KPIBlock holds the headline metrics.
type KPIBlock struct {
	AvgLabourCostPerJob  KPIValue `json:"avgLabourCostPerJob"`
	JobsCount            KPIValue `json:"jobsCount"`
	OvertimeCost         KPIValue `json:"overtimeCost"`
	OvertimePctOfLabour  KPIValue `json:"overtimePctOfLabour"`
	AvgActualHoursPerJob KPIValue `json:"avgActualHoursPerJob"`
	RevenuePerLabourHour KPIValue `json:"revenuePerLabourHour"`
}

// JobTypeRow is one job-type group of the current period.
// JobTypeID is nil for the unspecified group.
type JobTypeRow struct {
	JobTypeID           *string  `json:"jobTypeId"`
	Label               string   `json:"label"`
	JobsCount           int      `json:"jobsCount"`
	LabourCost          float64  `json:"labourCost"`
	AvgLabourCostPerJob float64  `json:"avgLabourCostPerJob"`
	OvertimeHours       float64  `json:"overtimeHours"`
	ActualHours         float64  `json:"actualHours"`
	EstimatedHours      float64  `json:"estimatedHours"`
	VarianceHours       float64  `json:"varianceHours"`
	ImpactCost          float64  `json:"impactCost"`
	DeltaPct            float64  `json:"deltaPct"`
	DeltaAbs            *float64 `json:"deltaAbs,omitempty"`
}

// TechnicianRow is one worker of the current period.
type TechnicianRow struct {
	WorkerID            string   `json:"workerId"`
	Name                string   `json:"name"`
	LabourCost          float64  `json:"labourCost"`
	Hours               float64  `json:"hours"`
	JobsCount           int      `json:"jobsCount"`
	AvgLabourCostPerJob float64  `json:"avgLabourCostPerJob"`
	OvertimeHours       float64  `json:"overtimeHours"`
	OvertimeCost        float64  `json:"overtimeCost"`
	EstimatedHours      float64  `json:"estimatedHours"`
	VarianceHours       float64  `json:"varianceHours"`
	ImpactCost          float64  `json:"impactCost"`
	DeltaPct            float64  `json:"deltaPct"`
	DeltaAbs            *float64 `json:"deltaAbs,omitempty"`
}

// EstVsActualRow compares estimated and actual hours for one period.
type EstVsActualRow struct {
	Period         PeriodRange `json:"period"`
	EstimatedHours float64     `json:"estimatedHours"`
	ActualHours    float64     `json:"actualHours"`
	VarianceHours  float64     `json:"varianceHours"`
	VariancePct    *float64    `json:"variancePct"`
	ImpactCost     float64     `json:"impactCost"`
}

// Breakdown groups the three breakdown tables.
type Breakdown struct {
	ByJobType    []JobTypeRow     `json:"byJobType"`
	ByTechnician []TechnicianRow  `json:"byTechnician"`
	EstVsActual  []EstVsActualRow `json:"estVsActual"`
}

// Severity grades an anomaly.
type Severity string

const (
	SeverityWarn Severity = "warn"
	SeverityInfo Severity = "info"
)

// Anomaly flags a period whose metric deviates from its rolling baseline.
type Anomaly struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Period   PeriodRange `json:"period"`
	Severity Severity    `json:"severity"`
	Metric   string      `json:"metric"`
	DeltaPct float64     `json:"deltaPct"`
	Baseline float64     `json:"baseline"`
	Current  float64     `json:"current"`
}

// ProfitLeakage is the headline excess labour cost estimate.
type ProfitLeakage struct {
	Value         float64 `json:"value"`
	PrimaryDriver string  `json:"primaryDriver"`
	TechImpact    string  `json:"techImpact"`
}

// Payload is the complete response of one Compute call.
type Payload struct {
	RangeDays              int           `json:"rangeDays"`
	Granularity            Granularity   `json:"granularity"`
	Currency               string        `json:"currency"`
	TargetLabourCostPerJob *float64      `json:"targetLabourCostPerJob,omitempty"`
	ProfitLeakage          ProfitLeakage `json:"profitLeakage"`
	KPIs                   KPIBlock      `json:"kpis"`
	Trend                  []TrendPoint  `json:"trend"`
	Breakdown              Breakdown     `json:"breakdown"`
	Anomalies              []Anomaly     `json:"anomalies"`
}

// normalize replaces nil slices with empty ones so they serialise as [].
func (p *Payload) normalize() {
	if p.Trend == nil {
		p.Trend = []TrendPoint{}
	}
	if p.Anomalies == nil {
		p.Anomalies = []Anomaly{}
	}
	if p.Breakdown.ByJobType == nil {
		p.Breakdown.ByJobType = []JobTypeRow{}
	}
	if p.Breakdown.ByTechnician == nil {
		p.Breakdown.ByTechnician = []TechnicianRow{}
	}
	if p.Breakdown.EstVsActual == nil {
		p.Breakdown.EstVsActual = []EstVsActualRow{}
	}
}
