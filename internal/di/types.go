// Package di provides dependency injection type definitions.
package di

import (
	"errors"

	"github.com/aristath/labourdash/internal/cache"
	"github.com/aristath/labourdash/internal/database"
	"github.com/aristath/labourdash/internal/modules/records"
	"github.com/aristath/labourdash/internal/modules/trends"
	"github.com/aristath/labourdash/internal/reliability"
	"github.com/aristath/labourdash/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire and handed to main for server construction.
type Container struct {
	// Databases
	RecordsDB *database.DB // Workers, job types, jobs and time entries per tenant

	// Repositories
	RecordsRepo *records.Repository

	// Services
	TrendsCache   *cache.Cache[trends.Payload]
	TrendsService *trends.Service
	BackupService *reliability.BackupService
	S3Client      *reliability.S3Client // nil when backups stay local

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	WarmCache           scheduler.Job
	PurgeCache          scheduler.Job
	Backup              scheduler.Job
	CheckWALCheckpoints scheduler.Job
	DailyMaintenance    scheduler.Job
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	databases := make(map[string]*database.DB)
	if c.RecordsDB != nil {
		databases[c.RecordsDB.Name()] = c.RecordsDB
	}
	return databases
}

// Close stops background work and closes all databases
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}

	var errs []error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
