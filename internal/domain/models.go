// Package domain provides the record types shared by the record store and the analytics engine.
package domain

import "time"

// OvertimeMultiplier is applied to the hourly rate of hours flagged as overtime.
const OvertimeMultiplier = 1.5

// TimeRecord is one clocked stretch of work by a worker on a job.
type TimeRecord struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	ID           string    `json:"id"`
	WorkerID     string    `json:"worker_id"`
	JobID        string    `json:"job_id"`
	BreakMinutes float64   `json:"break_minutes"`
	Overtime     bool      `json:"overtime"`
}

// ElapsedHours returns worked hours net of breaks, floored at zero.
func (r TimeRecord) ElapsedHours() float64 {
	hours := r.End.Sub(r.Start).Hours() - r.BreakMinutes/60
	if hours < 0 {
		return 0
	}
	return hours
}

// JobRecord is a scheduled or ad-hoc job.
// A job is either single-day (Date) or multi-day (StartDate, EndDate, HoursPerDay);
// HoursExpected is a flat estimate used when no multi-day schedule is set.
type JobRecord struct {
	JobTypeID     *string    `json:"job_type_id,omitempty"`
	Revenue       *float64   `json:"revenue,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	HoursPerDay   *float64   `json:"hours_per_day,omitempty"`
	HoursExpected *float64   `json:"hours_expected,omitempty"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
}

// ScheduledDate returns the date the job is booked for: Date, else StartDate.
func (j JobRecord) ScheduledDate() (time.Time, bool) {
	if j.Date != nil {
		return *j.Date, true
	}
	if j.StartDate != nil {
		return *j.StartDate, true
	}
	return time.Time{}, false
}

// IsMultiDay reports whether the job carries a complete multi-day schedule.
func (j JobRecord) IsMultiDay() bool {
	return j.StartDate != nil && j.EndDate != nil && j.HoursPerDay != nil && !j.EndDate.Before(*j.StartDate)
}

// RevenueValue returns the job revenue or zero.
func (j JobRecord) RevenueValue() float64 {
	if j.Revenue == nil || *j.Revenue < 0 {
		return 0
	}
	return *j.Revenue
}

// WorkerRecord is a technician with an hourly rate.
type WorkerRecord struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
}

// JobTypeRecord is a named category of job.
type JobTypeRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is a bounded, already-materialised set of records for one tenant.
// The analytics engine treats it as read-only.
type Snapshot struct {
	TimeRecords []TimeRecord    `json:"time_records"`
	Jobs        []JobRecord     `json:"jobs"`
	Workers     []WorkerRecord  `json:"workers"`
	JobTypes    []JobTypeRecord `json:"job_types"`
}
