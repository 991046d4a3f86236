package trends

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/aristath/labourdash/pkg/formulas"
)

const (
	// anomalyBaselineWindow is the number of preceding periods averaged into a baseline.
	anomalyBaselineWindow = 6
	// costDeviationPct flags |cost delta| at or above this percentage.
	costDeviationPct = 15.0
	// overtimeIncreasePts flags overtime share increases at or above this many points.
	overtimeIncreasePts = 10.0
	// maxAnomalies caps the anomaly list.
	maxAnomalies = 5

	MetricAvgLabourCostPerJob = "avgLabourCostPerJob"
	MetricOvertimePctOfLabour = "overtimePctOfLabour"
)

// anomalyNamespace seeds deterministic anomaly ids.
var anomalyNamespace = uuid.MustParse("8c3d7a52-4f1e-4b9a-a0d6-5e2f91c7b344")

// detectAnomalies scans the trend from the first period with a full baseline
// window, newest first, and returns at most maxAnomalies findings.
func detectAnomalies(points []TrendPoint) []Anomaly {
	anomalies := []Anomaly{}
	if len(points) <= anomalyBaselineWindow {
		return anomalies
	}

	costSeries := make([]float64, len(points))
	overtimeSeries := make([]float64, len(points))
	for i, p := range points {
		costSeries[i] = p.AvgLabourCostPerJob
		overtimeSeries[i] = p.OvertimePctOfLabour
	}
	costBaselines := formulas.RollingMean(costSeries, anomalyBaselineWindow)
	overtimeBaselines := formulas.RollingMean(overtimeSeries, anomalyBaselineWindow)

	for i := len(points) - 1; i >= anomalyBaselineWindow && len(anomalies) < maxAnomalies; i-- {
		point := points[i]

		if baseline, ok := formulas.TrailingMean(costBaselines, anomalyBaselineWindow, i); ok {
			deltaPct := formulas.DeltaPct(baseline, point.AvgLabourCostPerJob)
			if math.Abs(deltaPct) >= costDeviationPct {
				severity, direction := SeverityWarn, "up"
				if deltaPct < 0 {
					severity, direction = SeverityInfo, "down"
				}
				anomalies = append(anomalies, newAnomaly(
					MetricAvgLabourCostPerJob,
					point.Period,
					severity,
					fmt.Sprintf("Labour cost per job %s %.0f%% vs %d-period baseline", direction, math.Abs(deltaPct), anomalyBaselineWindow),
					deltaPct,
					baseline,
					point.AvgLabourCostPerJob,
				))
			}
		}

		if len(anomalies) >= maxAnomalies {
			break
		}

		if baseline, ok := formulas.TrailingMean(overtimeBaselines, anomalyBaselineWindow, i); ok {
			increase := point.OvertimePctOfLabour - baseline
			if increase >= overtimeIncreasePts {
				anomalies = append(anomalies, newAnomaly(
					MetricOvertimePctOfLabour,
					point.Period,
					SeverityWarn,
					fmt.Sprintf("Overtime share up %.1f pts vs %d-period baseline", increase, anomalyBaselineWindow),
					formulas.DeltaPct(baseline, point.OvertimePctOfLabour),
					baseline,
					point.OvertimePctOfLabour,
				))
			}
		}
	}

	return anomalies
}

func newAnomaly(metric string, period PeriodRange, severity Severity, label string, deltaPct, baseline, current float64) Anomaly {
	return Anomaly{
		ID:       uuid.NewSHA1(anomalyNamespace, []byte(metric+"|"+period.Start)).String(),
		Label:    label,
		Period:   period,
		Severity: severity,
		Metric:   metric,
		DeltaPct: deltaPct,
		Baseline: baseline,
		Current:  current,
	}
}
