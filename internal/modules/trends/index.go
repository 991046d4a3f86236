package trends

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/labourdash/internal/domain"
	"github.com/aristath/labourdash/pkg/formulas"
)

// jobTypeKey groups jobs by type. Known jobs carry the type id; jobs without a
// type (or records without a known job) fall into the unspecified variant.
type jobTypeKey struct {
	id    string
	known bool
}

var unspecifiedJobType = jobTypeKey{}

func knownJobType(id string) jobTypeKey {
	return jobTypeKey{id: id, known: true}
}

// recordIndex pre-indexes a snapshot once so every component can look records
// up by period, job and worker without rescanning the full record set.
type recordIndex struct {
	snapshot *domain.Snapshot
	periods  []Period

	// Indices into snapshot.TimeRecords whose Start falls in each period.
	recordsByPeriod [][]int
	// Indices into snapshot.Jobs whose scheduled date falls in each period.
	scheduledByPeriod [][]int
	// Indices into snapshot.Jobs active in each period (scheduled, spanning or worked).
	activeByPeriod [][]int

	jobs     map[string]int
	workers  map[string]int
	jobTypes map[string]int

	// Earliest time record start per job id.
	firstRecord map[string]time.Time

	blendedRate float64
}

func newRecordIndex(snapshot *domain.Snapshot, periods []Period) *recordIndex {
	ix := &recordIndex{
		snapshot:          snapshot,
		periods:           periods,
		recordsByPeriod:   make([][]int, len(periods)),
		scheduledByPeriod: make([][]int, len(periods)),
		activeByPeriod:    make([][]int, len(periods)),
		jobs:              make(map[string]int, len(snapshot.Jobs)),
		workers:           make(map[string]int, len(snapshot.Workers)),
		jobTypes:          make(map[string]int, len(snapshot.JobTypes)),
		firstRecord:       make(map[string]time.Time),
	}

	for i, job := range snapshot.Jobs {
		if _, dup := ix.jobs[job.ID]; !dup {
			ix.jobs[job.ID] = i
		}
	}
	rates := make([]float64, 0, len(snapshot.Workers))
	for i, worker := range snapshot.Workers {
		if _, dup := ix.workers[worker.ID]; !dup {
			ix.workers[worker.ID] = i
			rates = append(rates, formulas.NonNegative(worker.HourlyRate))
		}
	}
	for i, jobType := range snapshot.JobTypes {
		if _, dup := ix.jobTypes[jobType.ID]; !dup {
			ix.jobTypes[jobType.ID] = i
		}
	}
	ix.blendedRate = formulas.Mean(rates)

	worked := make([]map[string]struct{}, len(periods))
	for i, record := range snapshot.TimeRecords {
		if first, ok := ix.firstRecord[record.JobID]; !ok || record.Start.Before(first) {
			ix.firstRecord[record.JobID] = record.Start
		}

		pi := ix.periodOf(record.Start)
		if pi < 0 {
			continue
		}
		ix.recordsByPeriod[pi] = append(ix.recordsByPeriod[pi], i)
		if worked[pi] == nil {
			worked[pi] = make(map[string]struct{})
		}
		worked[pi][record.JobID] = struct{}{}
	}

	for ji, job := range snapshot.Jobs {
		if ix.jobs[job.ID] != ji {
			continue
		}
		if date, ok := job.ScheduledDate(); ok {
			if pi := ix.periodOf(date); pi >= 0 {
				ix.scheduledByPeriod[pi] = append(ix.scheduledByPeriod[pi], ji)
			}
		}
		for pi, period := range periods {
			_, hasRecords := worked[pi][job.ID]
			if hasRecords || jobScheduledIn(job, period) {
				ix.activeByPeriod[pi] = append(ix.activeByPeriod[pi], ji)
			}
		}
	}

	return ix
}

// hasActivity reports whether any period holds a time record or an active job.
func (ix *recordIndex) hasActivity() bool {
	for pi := range ix.periods {
		if len(ix.recordsByPeriod[pi]) > 0 || len(ix.activeByPeriod[pi]) > 0 {
			return true
		}
	}
	return false
}

// periodOf returns the index of the period containing t, or -1.
func (ix *recordIndex) periodOf(t time.Time) int {
	i := sort.Search(len(ix.periods), func(i int) bool {
		return ix.periods[i].End.After(t)
	})
	if i < len(ix.periods) && ix.periods[i].Contains(t) {
		return i
	}
	return -1
}

func (ix *recordIndex) job(id string) (domain.JobRecord, bool) {
	i, ok := ix.jobs[id]
	if !ok {
		return domain.JobRecord{}, false
	}
	return ix.snapshot.Jobs[i], true
}

func (ix *recordIndex) worker(id string) (domain.WorkerRecord, bool) {
	i, ok := ix.workers[id]
	if !ok {
		return domain.WorkerRecord{}, false
	}
	return ix.snapshot.Workers[i], true
}

func (ix *recordIndex) jobTypeName(id string) (string, bool) {
	i, ok := ix.jobTypes[id]
	if !ok {
		return "", false
	}
	return ix.snapshot.JobTypes[i].Name, true
}

// recordCost prices one time record: hours × rate, times the overtime
// multiplier when the record is flagged. Unknown workers cost nothing.
func (ix *recordIndex) recordCost(record domain.TimeRecord) float64 {
	worker, ok := ix.worker(record.WorkerID)
	if !ok {
		return 0
	}
	cost := record.ElapsedHours() * formulas.NonNegative(worker.HourlyRate)
	if record.Overtime {
		cost *= domain.OvertimeMultiplier
	}
	return cost
}

// jobTypeKeyOf resolves the grouping key of a job id.
func (ix *recordIndex) jobTypeKeyOf(jobID string) jobTypeKey {
	job, ok := ix.job(jobID)
	if !ok || job.JobTypeID == nil || *job.JobTypeID == "" {
		return unspecifiedJobType
	}
	return knownJobType(*job.JobTypeID)
}

// estimatedHours returns the share of a job's estimate attributable to period.
//
// Multi-day jobs contribute HoursPerDay for every scheduled day inside the
// period. Other jobs contribute their flat HoursExpected to the period holding
// their scheduled date, or, when unscheduled, to the period of their first
// time record.
func (ix *recordIndex) estimatedHours(job domain.JobRecord, period Period) float64 {
	if job.IsMultiDay() {
		return overlapDays(*job.StartDate, *job.EndDate, period) * formulas.NonNegative(*job.HoursPerDay)
	}
	if job.HoursExpected == nil {
		return 0
	}
	flat := formulas.NonNegative(*job.HoursExpected)
	if date, ok := job.ScheduledDate(); ok {
		if period.Contains(date) {
			return flat
		}
		return 0
	}
	if first, ok := ix.firstRecord[job.ID]; ok && period.Contains(first) {
		return flat
	}
	return 0
}

// jobScheduledIn reports whether a job's schedule touches period.
func jobScheduledIn(job domain.JobRecord, period Period) bool {
	if job.IsMultiDay() {
		return overlapDays(*job.StartDate, *job.EndDate, period) > 0
	}
	if date, ok := job.ScheduledDate(); ok {
		return period.Contains(date)
	}
	return false
}

// overlapDays counts the calendar days of the inclusive span [first, last]
// that fall inside period.
func overlapDays(first, last time.Time, period Period) float64 {
	spanStart := startOfDay(first)
	spanEnd := startOfDay(last).AddDate(0, 0, 1)

	from := spanStart
	if period.Start.After(from) {
		from = period.Start
	}
	to := spanEnd
	if period.End.Before(to) {
		to = period.End
	}
	if !to.After(from) {
		return 0
	}
	return math.Round(to.Sub(from).Hours() / 24)
}
