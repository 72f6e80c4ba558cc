package repository

import (
	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
)

// OutcomeRepository is the append-only deployment outcome ledger.
// Save is the only writer operation; entries are never updated or deleted.
type OutcomeRepository interface {
	WithQuerier(config.PgxIface) OutcomeRepository

	Save(*domain.DeploymentOutcome) error
	GetAll(*Page) ([]*domain.DeploymentOutcome, error)
	// GetRecent returns up to limit entries, most recent first by
	// recording time with insertion order as tie-break.
	GetRecent(limit int) ([]*domain.DeploymentOutcome, error)
	Statistics() (StrategyStatistics, error)
}
