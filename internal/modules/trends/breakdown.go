package trends

import (
	"sort"

	"github.com/aristath/labourdash/pkg/formulas"
)

// unspecifiedLabel names the group of jobs without a job type.
const unspecifiedLabel = "Unspecified"

// computeBreakdown builds the three breakdown tables. Job-type and technician
// rows cover the current period only, with deltas against the previous period.
func computeBreakdown(ix *recordIndex, trend *Trend) Breakdown {
	breakdown := Breakdown{
		ByJobType:    []JobTypeRow{},
		ByTechnician: []TechnicianRow{},
		EstVsActual:  estVsActual(ix),
	}

	cur := trend.currentIndex()
	if cur < 0 {
		return breakdown
	}
	prev := trend.previousIndex()

	breakdown.ByJobType = byJobType(ix, cur, prev)
	breakdown.ByTechnician = byTechnician(ix, cur, prev)
	return breakdown
}

// impactCost prices positive hour variance at the blended rate.
func impactCost(varianceHours, blendedRate float64) float64 {
	return formulas.NonNegative(varianceHours) * blendedRate
}

// delta compares a current value with the same key in the previous period.
// Without a previous period there is nothing to compare and deltaAbs is nil.
func delta(current float64, previous float64, hasPrevious bool) (float64, *float64) {
	if !hasPrevious {
		return 0, nil
	}
	abs := formulas.Finite(current - previous)
	return formulas.DeltaPct(previous, current), &abs
}

type jobTypeGroup struct {
	jobs           map[string]struct{}
	labourCost     float64
	actualHours    float64
	overtimeHours  float64
	estimatedHours float64
}

func (g *jobTypeGroup) avgCostPerJob() float64 {
	return formulas.SafeDiv(g.labourCost, float64(len(g.jobs)))
}

// groupByJobType folds the active jobs and time records of period pi by job type.
// The returned keys keep first-seen order.
func groupByJobType(ix *recordIndex, pi int) (map[jobTypeKey]*jobTypeGroup, []jobTypeKey) {
	groups := make(map[jobTypeKey]*jobTypeGroup)
	order := []jobTypeKey{}
	group := func(key jobTypeKey) *jobTypeGroup {
		g, ok := groups[key]
		if !ok {
			g = &jobTypeGroup{jobs: make(map[string]struct{})}
			groups[key] = g
			order = append(order, key)
		}
		return g
	}

	period := ix.periods[pi]
	for _, ji := range ix.activeByPeriod[pi] {
		job := ix.snapshot.Jobs[ji]
		g := group(ix.jobTypeKeyOf(job.ID))
		g.jobs[job.ID] = struct{}{}
		g.estimatedHours += ix.estimatedHours(job, period)
	}

	for _, ri := range ix.recordsByPeriod[pi] {
		record := ix.snapshot.TimeRecords[ri]
		hours := record.ElapsedHours()
		g := group(ix.jobTypeKeyOf(record.JobID))
		if record.JobID != "" {
			g.jobs[record.JobID] = struct{}{}
		}
		g.labourCost += ix.recordCost(record)
		g.actualHours += hours
		if record.Overtime {
			g.overtimeHours += hours
		}
	}

	return groups, order
}

func byJobType(ix *recordIndex, cur, prev int) []JobTypeRow {
	current, order := groupByJobType(ix, cur)
	var previous map[jobTypeKey]*jobTypeGroup
	if prev >= 0 {
		previous, _ = groupByJobType(ix, prev)
	}

	rows := make([]JobTypeRow, 0, len(order))
	for _, key := range order {
		g := current[key]
		avg := g.avgCostPerJob()

		var prevAvg float64
		if pg, ok := previous[key]; ok {
			prevAvg = pg.avgCostPerJob()
		}
		deltaPct, deltaAbs := delta(avg, prevAvg, prev >= 0)

		variance := g.actualHours - g.estimatedHours
		row := JobTypeRow{
			Label:               unspecifiedLabel,
			JobsCount:           len(g.jobs),
			LabourCost:          g.labourCost,
			AvgLabourCostPerJob: avg,
			OvertimeHours:       g.overtimeHours,
			ActualHours:         g.actualHours,
			EstimatedHours:      g.estimatedHours,
			VarianceHours:       variance,
			ImpactCost:          impactCost(variance, ix.blendedRate),
			DeltaPct:            deltaPct,
			DeltaAbs:            deltaAbs,
		}
		if key.known {
			id := key.id
			row.JobTypeID = &id
			row.Label = id
			if name, ok := ix.jobTypeName(id); ok && name != "" {
				row.Label = name
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ImpactCost != rows[j].ImpactCost {
			return rows[i].ImpactCost > rows[j].ImpactCost
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

type technicianGroup struct {
	jobs          map[string]struct{}
	jobOrder      []string
	labourCost    float64
	hours         float64
	overtimeHours float64
	overtimeCost  float64
}

// groupByTechnician folds the time records of period pi by worker.
func groupByTechnician(ix *recordIndex, pi int) (map[string]*technicianGroup, []string) {
	groups := make(map[string]*technicianGroup)
	order := []string{}

	for _, ri := range ix.recordsByPeriod[pi] {
		record := ix.snapshot.TimeRecords[ri]
		g, ok := groups[record.WorkerID]
		if !ok {
			g = &technicianGroup{jobs: make(map[string]struct{})}
			groups[record.WorkerID] = g
			order = append(order, record.WorkerID)
		}

		hours := record.ElapsedHours()
		cost := ix.recordCost(record)
		g.hours += hours
		g.labourCost += cost
		if record.Overtime {
			g.overtimeHours += hours
			g.overtimeCost += cost
		}
		if record.JobID != "" {
			if _, seen := g.jobs[record.JobID]; !seen {
				g.jobs[record.JobID] = struct{}{}
				g.jobOrder = append(g.jobOrder, record.JobID)
			}
		}
	}

	return groups, order
}

func byTechnician(ix *recordIndex, cur, prev int) []TechnicianRow {
	current, order := groupByTechnician(ix, cur)
	var previous map[string]*technicianGroup
	if prev >= 0 {
		previous, _ = groupByTechnician(ix, prev)
	}

	period := ix.periods[cur]
	rows := make([]TechnicianRow, 0, len(order))
	for _, workerID := range order {
		g := current[workerID]

		var estimated float64
		for _, jobID := range g.jobOrder {
			if job, ok := ix.job(jobID); ok {
				estimated += ix.estimatedHours(job, period)
			}
		}

		var prevCost float64
		if pg, ok := previous[workerID]; ok {
			prevCost = pg.labourCost
		}
		deltaPct, deltaAbs := delta(g.labourCost, prevCost, prev >= 0)

		name := "Unknown worker"
		if worker, ok := ix.worker(workerID); ok && worker.Name != "" {
			name = worker.Name
		}

		variance := g.hours - estimated
		rows = append(rows, TechnicianRow{
			WorkerID:            workerID,
			Name:                name,
			LabourCost:          g.labourCost,
			Hours:               g.hours,
			JobsCount:           len(g.jobs),
			AvgLabourCostPerJob: formulas.SafeDiv(g.labourCost, float64(len(g.jobs))),
			OvertimeHours:       g.overtimeHours,
			OvertimeCost:        g.overtimeCost,
			EstimatedHours:      estimated,
			VarianceHours:       variance,
			ImpactCost:          impactCost(variance, ix.blendedRate),
			DeltaPct:            deltaPct,
			DeltaAbs:            deltaAbs,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].OvertimeCost != rows[j].OvertimeCost {
			return rows[i].OvertimeCost > rows[j].OvertimeCost
		}
		if rows[i].LabourCost != rows[j].LabourCost {
			return rows[i].LabourCost > rows[j].LabourCost
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].WorkerID < rows[j].WorkerID
	})
	return rows
}

// estVsActual reports estimated against actual hours for every period, in order.
func estVsActual(ix *recordIndex) []EstVsActualRow {
	rows := make([]EstVsActualRow, 0, len(ix.periods))
	for pi, period := range ix.periods {
		var estimated, actual float64
		for _, ji := range ix.activeByPeriod[pi] {
			estimated += ix.estimatedHours(ix.snapshot.Jobs[ji], period)
		}
		for _, ri := range ix.recordsByPeriod[pi] {
			actual += ix.snapshot.TimeRecords[ri].ElapsedHours()
		}

		variance := actual - estimated
		var variancePct *float64
		if ratio := formulas.SafeDivPtr(variance, estimated); ratio != nil {
			pct := *ratio * 100
			variancePct = &pct
		}

		rows = append(rows, EstVsActualRow{
			Period:         period.Range(),
			EstimatedHours: estimated,
			ActualHours:    actual,
			VarianceHours:  variance,
			VariancePct:    variancePct,
			ImpactCost:     impactCost(variance, ix.blendedRate),
		})
	}
	return rows
}
