package trends

import (
	"fmt"
	"strings"

	"github.com/aristath/labourdash/pkg/formulas"
)

const (
	noLeakageDriver = "labour cost in line with baseline"
	noTechImpact    = "no significant tech impact"
	// topTechnicians is how many technicians the tech impact narrative names.
	topTechnicians = 2
)

// estimateLeakage projects the excess cost per job of the current period over its job volume.
//
// The baseline is the caller's target when given, otherwise the mean cost per
// job across the whole trend.
func estimateLeakage(trend *Trend, target *float64, breakdown Breakdown, money moneyFormatter) ProfitLeakage {
	leakage := ProfitLeakage{
		PrimaryDriver: noLeakageDriver,
		TechImpact:    noTechImpact,
	}

	current := trend.Current()
	if current == nil || !trend.currentHasJobs() {
		return leakage
	}

	var baseline float64
	if target != nil {
		baseline = *target
	} else {
		costs := make([]float64, len(trend.Points))
		for i, p := range trend.Points {
			costs[i] = p.AvgLabourCostPerJob
		}
		baseline = formulas.Mean(costs)
	}

	leakage.Value = formulas.NonNegative((current.AvgLabourCostPerJob - baseline) * float64(current.JobsCount))
	leakage.PrimaryDriver = primaryDriver(breakdown.ByJobType, money)
	leakage.TechImpact = techImpact(breakdown.ByTechnician, money)
	return leakage
}

// primaryDriver names the job type with the largest hour-variance impact.
// Rows arrive sorted by impact cost.
func primaryDriver(rows []JobTypeRow, money moneyFormatter) string {
	if len(rows) == 0 || rows[0].ImpactCost <= 0 {
		return noLeakageDriver
	}
	top := rows[0]
	return fmt.Sprintf("%s jobs ran %.1fh over estimate (%s impact)", top.Label, top.VarianceHours, money(top.ImpactCost))
}

// techImpact names the technicians with the most overtime cost.
// Rows arrive sorted by overtime cost.
func techImpact(rows []TechnicianRow, money moneyFormatter) string {
	parts := make([]string, 0, topTechnicians)
	for _, row := range rows {
		if len(parts) == topTechnicians || row.OvertimeCost <= 0 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s overtime)", row.Name, money(row.OvertimeCost)))
	}
	if len(parts) == 0 {
		return noTechImpact
	}
	return strings.Join(parts, ", ")
}
