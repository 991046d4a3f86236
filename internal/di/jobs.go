// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/config"
	"github.com/aristath/labourdash/internal/reliability"
	"github.com/aristath/labourdash/internal/scheduler"
)

// Fixed schedules (six fields, with seconds)
const (
	purgeCacheSchedule    = "0 */5 * * * *"
	walCheckpointSchedule = "0 0 * * * *"
)

// RegisterJobs creates the scheduler and registers all jobs.
// Jobs with an empty schedule are registered for manual triggering only.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if container.TrendsService == nil || container.BackupService == nil {
		return nil, fmt.Errorf("services not initialized")
	}

	sched := scheduler.New(log)
	container.Scheduler = sched

	instances := &JobInstances{
		WarmCache:           scheduler.NewWarmCacheJob(container.TrendsService, cfg.DefaultTenant, log),
		PurgeCache:          scheduler.NewPurgeCacheJob(container.TrendsCache, log),
		Backup:              scheduler.NewBackupJob(container.BackupService, log),
		CheckWALCheckpoints: scheduler.NewCheckWALCheckpointsJob(container.Databases(), log),
		DailyMaintenance:    reliability.NewDailyMaintenanceJob(container.Databases(), cfg.DataDir, log),
	}

	registrations := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Cache.WarmSchedule, instances.WarmCache},
		{purgeCacheSchedule, instances.PurgeCache},
		{cfg.Backup.Schedule, instances.Backup},
		{walCheckpointSchedule, instances.CheckWALCheckpoints},
		{cfg.Maintenance.Schedule, instances.DailyMaintenance},
	}

	for _, reg := range registrations {
		if err := sched.AddJob(reg.schedule, reg.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", reg.job.Name(), err)
		}
	}

	log.Info().Int("jobs", len(registrations)).Msg("Jobs registered")

	return instances, nil
}
