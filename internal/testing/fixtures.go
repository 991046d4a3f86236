package testing

import (
	"time"

	"github.com/aristath/labourdash/internal/domain"
)

// Day returns midnight UTC of the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Time returns a pointer to v.
func Time(v time.Time) *time.Time {
	return &v
}

// NewWorker returns a worker record.
func NewWorker(id, name string, rate float64) domain.WorkerRecord {
	return domain.WorkerRecord{ID: id, Name: name, HourlyRate: rate}
}

// NewJobType returns a job type record.
func NewJobType(id, name string) domain.JobTypeRecord {
	return domain.JobTypeRecord{ID: id, Name: name}
}

// NewJob returns a single-day job booked on date with a flat estimate.
// An empty jobTypeID leaves the job unspecified.
func NewJob(id, jobTypeID string, date time.Time, hoursExpected float64) domain.JobRecord {
	job := domain.JobRecord{
		ID:            id,
		Name:          "Job " + id,
		Date:          Time(date),
		HoursExpected: Float(hoursExpected),
	}
	if jobTypeID != "" {
		job.JobTypeID = String(jobTypeID)
	}
	return job
}

// NewMultiDayJob returns a job spanning [start, end] inclusive at hoursPerDay.
func NewMultiDayJob(id, jobTypeID string, start, end time.Time, hoursPerDay float64) domain.JobRecord {
	job := domain.JobRecord{
		ID:          id,
		Name:        "Job " + id,
		StartDate:   Time(start),
		EndDate:     Time(end),
		HoursPerDay: Float(hoursPerDay),
	}
	if jobTypeID != "" {
		job.JobTypeID = String(jobTypeID)
	}
	return job
}

// NewTimeRecord returns a record of hours worked from start with no break.
func NewTimeRecord(id, workerID, jobID string, start time.Time, hours float64, overtime bool) domain.TimeRecord {
	return domain.TimeRecord{
		ID:       id,
		WorkerID: workerID,
		JobID:    jobID,
		Start:    start,
		End:      start.Add(time.Duration(hours * float64(time.Hour))),
		Overtime: overtime,
	}
}

// NewSnapshotFixture returns a small two-week snapshot around 2024-06-03.
//
// The week of 2024-05-27 holds one 4h install job at $40/h. The week of
// 2024-06-03 holds an install job that ran 10h against an 8h estimate, part
// of it overtime, and an unspecified repair job.
func NewSnapshotFixture() domain.Snapshot {
	return domain.Snapshot{
		Workers: []domain.WorkerRecord{
			NewWorker("w1", "Alice", 40),
			NewWorker("w2", "Bob", 40),
		},
		JobTypes: []domain.JobTypeRecord{
			NewJobType("install", "Install"),
		},
		Jobs: []domain.JobRecord{
			NewJob("j0", "install", Day(2024, time.May, 28), 4),
			NewJob("j1", "install", Day(2024, time.June, 4), 8),
			NewJob("j2", "", Day(2024, time.June, 5), 2),
		},
		TimeRecords: []domain.TimeRecord{
			NewTimeRecord("t0", "w1", "j0", Day(2024, time.May, 28).Add(8*time.Hour), 4, false),
			NewTimeRecord("t1", "w1", "j1", Day(2024, time.June, 4).Add(8*time.Hour), 8, false),
			NewTimeRecord("t2", "w1", "j1", Day(2024, time.June, 4).Add(17*time.Hour), 2, true),
			NewTimeRecord("t3", "w2", "j2", Day(2024, time.June, 5).Add(9*time.Hour), 2, false),
		},
	}
}
