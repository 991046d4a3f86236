// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/config"
	"github.com/aristath/labourdash/internal/database"
)

// InitializeDatabases opens the databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// records.db - time-tracking source of truth; ledger profile for durability
	recordsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "records.db"),
		Profile: database.ProfileLedger,
		Name:    "records",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize records database: %w", err)
	}
	container.RecordsDB = recordsDB

	if err := recordsDB.Migrate(); err != nil {
		recordsDB.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", recordsDB.Name(), err)
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
