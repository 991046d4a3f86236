package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/database"
	"github.com/aristath/labourdash/internal/reliability"
)

// CacheWarmer precomputes trend payloads
type CacheWarmer interface {
	WarmCache(ctx context.Context, tenantID string) error
}

// Purger drops expired cache entries
type Purger interface {
	Purge() int
}

// BackupCreator creates database backups
type BackupCreator interface {
	CreateBackup(ctx context.Context) (*reliability.BackupInfo, error)
}

// WarmCacheJob precomputes the trends of a tenant for every supported range
type WarmCacheJob struct {
	warmer  CacheWarmer
	tenant  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewWarmCacheJob creates a new cache warm-up job
func NewWarmCacheJob(warmer CacheWarmer, tenant string, log zerolog.Logger) *WarmCacheJob {
	return &WarmCacheJob{
		warmer:  warmer,
		tenant:  tenant,
		timeout: 2 * time.Minute,
		log:     log.With().Str("job", "warm_trends_cache").Logger(),
	}
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "warm_trends_cache"
}

// Run executes the cache warm-up
func (j *WarmCacheJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.warmer.WarmCache(ctx, j.tenant); err != nil {
		return fmt.Errorf("failed to warm trends cache: %w", err)
	}
	return nil
}

// PurgeCacheJob drops expired payloads
type PurgeCacheJob struct {
	cache Purger
	log   zerolog.Logger
}

// NewPurgeCacheJob creates a new cache purge job
func NewPurgeCacheJob(cache Purger, log zerolog.Logger) *PurgeCacheJob {
	return &PurgeCacheJob{
		cache: cache,
		log:   log.With().Str("job", "purge_trends_cache").Logger(),
	}
}

// Name returns the job name
func (j *PurgeCacheJob) Name() string {
	return "purge_trends_cache"
}

// Run executes the purge
func (j *PurgeCacheJob) Run() error {
	removed := j.cache.Purge()
	j.log.Debug().Int("removed", removed).Msg("Purged expired cache entries")
	return nil
}

// BackupJob creates a database backup
type BackupJob struct {
	backups BackupCreator
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(backups BackupCreator, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups: backups,
		timeout: 10 * time.Minute,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.backups.CreateBackup(ctx); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

// CheckWALCheckpointsJob monitors WAL checkpoint status
type CheckWALCheckpointsJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewCheckWALCheckpointsJob creates a new CheckWALCheckpointsJob
func NewCheckWALCheckpointsJob(databases map[string]*database.DB, log zerolog.Logger) *CheckWALCheckpointsJob {
	return &CheckWALCheckpointsJob{
		databases: databases,
		log:       log.With().Str("job", "check_wal_checkpoints").Logger(),
	}
}

// Name returns the job name
func (j *CheckWALCheckpointsJob) Name() string {
	return "check_wal_checkpoints"
}

// Run executes the check WAL checkpoints job
func (j *CheckWALCheckpointsJob) Run() error {
	checkedCount := 0
	for name, db := range j.databases {
		if db == nil {
			continue
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, walFrames, checkpointed int
		err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &walFrames, &checkpointed)
		if err != nil {
			j.log.Warn().
				Err(err).
				Str("database", name).
				Msg("Failed to check WAL checkpoint")
			continue
		}

		if walFrames > 1000 {
			j.log.Warn().
				Str("database", name).
				Int("wal_frames", walFrames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, checkpoint may be needed")
		} else {
			j.log.Debug().
				Str("database", name).
				Int("wal_frames", walFrames).
				Msg("WAL checkpoint status OK")
		}

		checkedCount++
	}

	j.log.Info().
		Int("checked", checkedCount).
		Msg("WAL checkpoint check completed")

	return nil
}
