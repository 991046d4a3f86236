// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/labourdash/internal/modules/records"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.RecordsDB == nil {
		return fmt.Errorf("records database not initialized")
	}

	container.RecordsRepo = records.NewRepository(container.RecordsDB.Conn(), log)

	log.Info().Msg("All repositories initialized")

	return nil
}
