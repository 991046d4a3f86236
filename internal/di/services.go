// Package di provides dependency injection for service implementations.
package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/cache"
	"github.com/aristath/labourdash/internal/config"
	"github.com/aristath/labourdash/internal/modules/trends"
	"github.com/aristath/labourdash/internal/reliability"
)

// s3InitTimeout bounds credential resolution at startup
const s3InitTimeout = 30 * time.Second

// InitializeServices creates all services and stores them in the container
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.RecordsRepo == nil {
		return fmt.Errorf("records repository not initialized")
	}

	// Trends: payload cache in front of the pure engine
	container.TrendsCache = cache.New[trends.Payload](cfg.Cache.TTL)
	container.TrendsService = trends.NewService(
		container.RecordsRepo,
		container.TrendsCache,
		cfg.Currency,
		log,
	)

	// Backups: local archives, optionally shipped to S3
	if err := os.MkdirAll(cfg.Backup.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	var store reliability.ObjectStore
	if cfg.Backup.S3Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), s3InitTimeout)
		defer cancel()

		s3Client, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Bucket:   cfg.Backup.S3Bucket,
			Prefix:   cfg.Backup.S3Prefix,
			Region:   cfg.Backup.AWSRegion,
			Endpoint: cfg.Backup.S3Endpoint,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		container.S3Client = s3Client
		store = s3Client
	} else {
		log.Info().Msg("BACKUP_S3_BUCKET not set, backups stay local")
	}

	container.BackupService = reliability.NewBackupService(
		container.Databases(),
		cfg.Backup.Dir,
		cfg.Backup.Retain,
		store,
		log,
	)

	log.Info().Msg("All services initialized")

	return nil
}
