// Package records provides the SQLite store of labour records.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/database"
	"github.com/aristath/labourdash/internal/domain"
)

// dateLayout is the storage format of job dates.
const dateLayout = "2006-01-02"

var _ domain.SnapshotSource = (*Repository)(nil)

// Repository handles labour record database operations.
type Repository struct {
	db  *sql.DB // records.db
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates a new records repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repository", "records").Logger(),
	}
}

// SetClock replaces the clock that stamps updated_at. Intended for tests.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// LoadSnapshot reads every record of a tenant.
// Rows are ordered by id (time entries by start) so snapshots are reproducible.
func (r *Repository) LoadSnapshot(ctx context.Context, tenantID string) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	var err error

	if snapshot.Workers, err = r.loadWorkers(ctx, tenantID); err != nil {
		return domain.Snapshot{}, err
	}
	if snapshot.JobTypes, err = r.loadJobTypes(ctx, tenantID); err != nil {
		return domain.Snapshot{}, err
	}
	if snapshot.Jobs, err = r.loadJobs(ctx, tenantID); err != nil {
		return domain.Snapshot{}, err
	}
	if snapshot.TimeRecords, err = r.loadTimeRecords(ctx, tenantID); err != nil {
		return domain.Snapshot{}, err
	}

	r.log.Debug().
		Str("tenant", tenantID).
		Int("workers", len(snapshot.Workers)).
		Int("jobs", len(snapshot.Jobs)).
		Int("time_records", len(snapshot.TimeRecords)).
		Msg("Loaded snapshot")

	return snapshot, nil
}

// SnapshotVersion summarises the row count and latest write of every table.
// Any insert, update or delete changes the version.
func (r *Repository) SnapshotVersion(ctx context.Context, tenantID string) (string, error) {
	parts := make([]string, 0, 4)
	for _, table := range []string{"workers", "job_types", "jobs", "time_entries"} {
		var count, latest int64
		query := "SELECT COUNT(*), COALESCE(MAX(updated_at), 0) FROM " + table + " WHERE tenant_id = ?"
		if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&count, &latest); err != nil {
			return "", fmt.Errorf("failed to read %s version: %w", table, err)
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", table, count, latest))
	}
	return strings.Join(parts, "|"), nil
}

// UpsertWorker inserts or replaces a worker. An empty ID is assigned a new UUID.
func (r *Repository) UpsertWorker(ctx context.Context, tenantID string, worker domain.WorkerRecord) (domain.WorkerRecord, error) {
	if err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		return r.upsertWorker(ctx, tx, tenantID, &worker)
	}); err != nil {
		return domain.WorkerRecord{}, err
	}
	return worker, nil
}

// UpsertJobType inserts or replaces a job type. An empty ID is assigned a new UUID.
func (r *Repository) UpsertJobType(ctx context.Context, tenantID string, jobType domain.JobTypeRecord) (domain.JobTypeRecord, error) {
	if err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		return r.upsertJobType(ctx, tx, tenantID, &jobType)
	}); err != nil {
		return domain.JobTypeRecord{}, err
	}
	return jobType, nil
}

// UpsertJob inserts or replaces a job. An empty ID is assigned a new UUID.
func (r *Repository) UpsertJob(ctx context.Context, tenantID string, job domain.JobRecord) (domain.JobRecord, error) {
	if err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		return r.upsertJob(ctx, tx, tenantID, &job)
	}); err != nil {
		return domain.JobRecord{}, err
	}
	return job, nil
}

// UpsertTimeRecord inserts or replaces a time record. An empty ID is assigned a new UUID.
func (r *Repository) UpsertTimeRecord(ctx context.Context, tenantID string, record domain.TimeRecord) (domain.TimeRecord, error) {
	if err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		return r.upsertTimeRecord(ctx, tx, tenantID, &record)
	}); err != nil {
		return domain.TimeRecord{}, err
	}
	return record, nil
}

// ImportCounts reports how many rows an import wrote per table.
type ImportCounts struct {
	Workers     int `json:"workers"`
	JobTypes    int `json:"job_types"`
	Jobs        int `json:"jobs"`
	TimeRecords int `json:"time_records"`
}

// Import upserts a whole snapshot in one transaction.
func (r *Repository) Import(ctx context.Context, tenantID string, snapshot domain.Snapshot) (ImportCounts, error) {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for i := range snapshot.Workers {
			if err := r.upsertWorker(ctx, tx, tenantID, &snapshot.Workers[i]); err != nil {
				return err
			}
		}
		for i := range snapshot.JobTypes {
			if err := r.upsertJobType(ctx, tx, tenantID, &snapshot.JobTypes[i]); err != nil {
				return err
			}
		}
		for i := range snapshot.Jobs {
			if err := r.upsertJob(ctx, tx, tenantID, &snapshot.Jobs[i]); err != nil {
				return err
			}
		}
		for i := range snapshot.TimeRecords {
			if err := r.upsertTimeRecord(ctx, tx, tenantID, &snapshot.TimeRecords[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportCounts{}, fmt.Errorf("failed to import snapshot: %w", err)
	}

	counts := ImportCounts{
		Workers:     len(snapshot.Workers),
		JobTypes:    len(snapshot.JobTypes),
		Jobs:        len(snapshot.Jobs),
		TimeRecords: len(snapshot.TimeRecords),
	}
	r.log.Info().
		Str("tenant", tenantID).
		Interface("counts", counts).
		Msg("Imported records")
	return counts, nil
}

// DeleteTimeRecord removes a time record. Deleting a missing record is not an error.
func (r *Repository) DeleteTimeRecord(ctx context.Context, tenantID, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM time_entries WHERE tenant_id = ? AND id = ?", tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete time record %s: %w", id, err)
	}
	return nil
}

func (r *Repository) upsertWorker(ctx context.Context, tx *sql.Tx, tenantID string, worker *domain.WorkerRecord) error {
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO workers (tenant_id, id, name, hourly_rate, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, tenantID, worker.ID, worker.Name, worker.HourlyRate, r.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert worker %s: %w", worker.ID, err)
	}
	return nil
}

func (r *Repository) upsertJobType(ctx context.Context, tx *sql.Tx, tenantID string, jobType *domain.JobTypeRecord) error {
	if jobType.ID == "" {
		jobType.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO job_types (tenant_id, id, name, updated_at)
		VALUES (?, ?, ?, ?)
	`, tenantID, jobType.ID, jobType.Name, r.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert job type %s: %w", jobType.ID, err)
	}
	return nil
}

func (r *Repository) upsertJob(ctx context.Context, tx *sql.Tx, tenantID string, job *domain.JobRecord) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO jobs
			(tenant_id, id, name, job_type_id, revenue, date, start_date, end_date,
			 hours_per_day, hours_expected, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tenantID, job.ID, job.Name,
		nullString(job.JobTypeID),
		nullFloat(job.Revenue),
		nullDate(job.Date),
		nullDate(job.StartDate),
		nullDate(job.EndDate),
		nullFloat(job.HoursPerDay),
		nullFloat(job.HoursExpected),
		r.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job %s: %w", job.ID, err)
	}
	return nil
}

func (r *Repository) upsertTimeRecord(ctx context.Context, tx *sql.Tx, tenantID string, record *domain.TimeRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	overtime := 0
	if record.Overtime {
		overtime = 1
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO time_entries
			(tenant_id, id, worker_id, job_id, start_time, end_time, break_minutes, overtime, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tenantID, record.ID, record.WorkerID, record.JobID,
		record.Start.UTC().UnixNano(), record.End.UTC().UnixNano(),
		record.BreakMinutes, overtime, r.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert time record %s: %w", record.ID, err)
	}
	return nil
}

func (r *Repository) loadWorkers(ctx context.Context, tenantID string) ([]domain.WorkerRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, hourly_rate FROM workers WHERE tenant_id = ? ORDER BY id", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	workers := []domain.WorkerRecord{}
	for rows.Next() {
		var w domain.WorkerRecord
		if err := rows.Scan(&w.ID, &w.Name, &w.HourlyRate); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}
	return workers, nil
}

func (r *Repository) loadJobTypes(ctx context.Context, tenantID string) ([]domain.JobTypeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM job_types WHERE tenant_id = ? ORDER BY id", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job types: %w", err)
	}
	defer rows.Close()

	jobTypes := []domain.JobTypeRecord{}
	for rows.Next() {
		var jt domain.JobTypeRecord
		if err := rows.Scan(&jt.ID, &jt.Name); err != nil {
			return nil, fmt.Errorf("failed to scan job type: %w", err)
		}
		jobTypes = append(jobTypes, jt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job types: %w", err)
	}
	return jobTypes, nil
}

func (r *Repository) loadJobs(ctx context.Context, tenantID string) ([]domain.JobRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, job_type_id, revenue, date, start_date, end_date, hours_per_day, hours_expected
		FROM jobs
		WHERE tenant_id = ?
		ORDER BY id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.JobRecord{}
	for rows.Next() {
		var (
			job                         domain.JobRecord
			jobTypeID                   sql.NullString
			date, startDate, endDate    sql.NullString
			revenue, perDay, hoursTotal sql.NullFloat64
		)
		if err := rows.Scan(&job.ID, &job.Name, &jobTypeID, &revenue, &date, &startDate, &endDate, &perDay, &hoursTotal); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}

		if jobTypeID.Valid {
			job.JobTypeID = &jobTypeID.String
		}
		job.Revenue = floatPtr(revenue)
		job.HoursPerDay = floatPtr(perDay)
		job.HoursExpected = floatPtr(hoursTotal)
		if job.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse date of job %s: %w", job.ID, err)
		}
		if job.StartDate, err = parseDate(startDate); err != nil {
			return nil, fmt.Errorf("failed to parse start date of job %s: %w", job.ID, err)
		}
		if job.EndDate, err = parseDate(endDate); err != nil {
			return nil, fmt.Errorf("failed to parse end date of job %s: %w", job.ID, err)
		}

		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

func (r *Repository) loadTimeRecords(ctx context.Context, tenantID string) ([]domain.TimeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, worker_id, job_id, start_time, end_time, break_minutes, overtime
		FROM time_entries
		WHERE tenant_id = ?
		ORDER BY start_time, id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time records: %w", err)
	}
	defer rows.Close()

	records := []domain.TimeRecord{}
	for rows.Next() {
		var (
			record     domain.TimeRecord
			start, end int64
			overtime   int
		)
		if err := rows.Scan(&record.ID, &record.WorkerID, &record.JobID, &start, &end, &record.BreakMinutes, &overtime); err != nil {
			return nil, fmt.Errorf("failed to scan time record: %w", err)
		}
		record.Start = time.Unix(0, start).UTC()
		record.End = time.Unix(0, end).UTC()
		record.Overtime = overtime != 0
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time records: %w", err)
	}
	return records, nil
}

func nullString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullDate(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.UTC().Format(dateLayout)
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func parseDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
