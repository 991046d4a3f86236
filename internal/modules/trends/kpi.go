package trends

import (
	"github.com/aristath/labourdash/pkg/formulas"
)

// kpiMetric extracts one headline metric from a trend point.
type kpiMetric func(TrendPoint) float64

func metricAvgLabourCostPerJob(p TrendPoint) float64  { return p.AvgLabourCostPerJob }
func metricJobsCount(p TrendPoint) float64            { return float64(p.JobsCount) }
func metricOvertimeCost(p TrendPoint) float64         { return p.OvertimeCost }
func metricOvertimePctOfLabour(p TrendPoint) float64  { return p.OvertimePctOfLabour }
func metricAvgActualHoursPerJob(p TrendPoint) float64 { return p.AvgActualHoursPerJob }

func metricRevenuePerLabourHour(p TrendPoint) float64 {
	if p.RevenuePerLabourHour == nil {
		return 0
	}
	return *p.RevenuePerLabourHour
}

// computeKPIs compares the current period with the previous one.
// An empty trend yields zeroed KPIs; a single period yields values with zero deltas.
func computeKPIs(trend *Trend) KPIBlock {
	current := trend.Current()
	previous := trend.Previous()

	kpi := func(metric kpiMetric) KPIValue {
		if current == nil {
			return KPIValue{}
		}
		value := metric(*current)
		if previous == nil {
			return KPIValue{Value: value}
		}
		prev := metric(*previous)
		deltaAbs := formulas.Finite(value - prev)
		return KPIValue{
			Value:    value,
			DeltaPct: formulas.DeltaPct(prev, value),
			DeltaAbs: &deltaAbs,
		}
	}

	return KPIBlock{
		AvgLabourCostPerJob:  kpi(metricAvgLabourCostPerJob),
		JobsCount:            kpi(metricJobsCount),
		OvertimeCost:         kpi(metricOvertimeCost),
		OvertimePctOfLabour:  kpi(metricOvertimePctOfLabour),
		AvgActualHoursPerJob: kpi(metricAvgActualHoursPerJob),
		RevenuePerLabourHour: kpi(metricRevenuePerLabourHour),
	}
}
