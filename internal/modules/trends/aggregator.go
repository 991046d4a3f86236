package trends

import (
	"github.com/aristath/labourdash/pkg/formulas"
)

// periodTotals is the raw fold of one period before averages are taken.
type periodTotals struct {
	labourCost    float64
	actualHours   float64
	overtimeHours float64
	overtimeCost  float64
	revenue       float64
	// jobs before flooring; zero means nothing was scheduled or worked.
	jobs int
}

// foldPeriod accumulates every time record of period pi.
//
// Jobs are counted from the job records scheduled in the period. When none
// are scheduled, the distinct jobs touched by the period's time records are
// counted instead. Revenue follows the same job set.
func foldPeriod(ix *recordIndex, pi int) periodTotals {
	var totals periodTotals
	touched := make(map[string]struct{})
	touchedOrder := []string{}

	for _, ri := range ix.recordsByPeriod[pi] {
		record := ix.snapshot.TimeRecords[ri]
		hours := record.ElapsedHours()
		cost := ix.recordCost(record)

		totals.actualHours += hours
		totals.labourCost += cost
		if record.Overtime {
			totals.overtimeHours += hours
			totals.overtimeCost += cost
		}

		if record.JobID == "" {
			continue
		}
		if _, seen := touched[record.JobID]; !seen {
			touched[record.JobID] = struct{}{}
			touchedOrder = append(touchedOrder, record.JobID)
		}
	}

	if scheduled := ix.scheduledByPeriod[pi]; len(scheduled) > 0 {
		totals.jobs = len(scheduled)
		for _, ji := range scheduled {
			totals.revenue += ix.snapshot.Jobs[ji].RevenueValue()
		}
	} else {
		totals.jobs = len(touchedOrder)
		for _, id := range touchedOrder {
			if job, ok := ix.job(id); ok {
				totals.revenue += job.RevenueValue()
			}
		}
	}

	return totals
}

// aggregatePeriod folds period pi into a TrendPoint.
func aggregatePeriod(ix *recordIndex, pi int) (TrendPoint, periodTotals) {
	totals := foldPeriod(ix, pi)

	jobs := totals.jobs
	if jobs < 1 {
		jobs = 1
	}

	point := TrendPoint{
		Period:               ix.periods[pi].Range(),
		TotalLabourCost:      totals.labourCost,
		JobsCount:            jobs,
		AvgLabourCostPerJob:  formulas.SafeDiv(totals.labourCost, float64(jobs)),
		OvertimeCost:         totals.overtimeCost,
		OvertimeHours:        totals.overtimeHours,
		OvertimePctOfLabour:  formulas.Pct(totals.overtimeCost, totals.labourCost),
		AvgActualHoursPerJob: formulas.SafeDiv(totals.actualHours, float64(jobs)),
		TotalActualHours:     totals.actualHours,
		Revenue:              totals.revenue,
		RevenuePerLabourHour: formulas.SafeDivPtr(totals.revenue, totals.actualHours),
	}

	return point, totals
}
