package riskgate

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain/repository"
	"github.com/miltonvve/riskgate/src/infrastructure/persistence"
)

// NewOutcomeLedger opens the ledger backend selected on the command
// line. The returned closer releases the backend's resources.
func NewOutcomeLedger(kind, path string, logDb bool, logger *zerolog.Logger) (repository.OutcomeRepository, func(), error) {
	switch kind {
	case "postgres":
		db, err := config.DBConnection(logger, logDb)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "While connecting to the database")
		}
		return persistence.NewOutcomeDbRepository(db), db.Close, nil
	case "file":
		if path == "" {
			var err error
			if path, err = persistence.DefaultLedgerPath(); err != nil {
				return nil, nil, errors.WithMessage(err, "While resolving the default ledger path")
			}
		}
		ledger, err := persistence.NewOutcomeFileRepository(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("path", path).Msg("Using file ledger")
		return ledger, func() {}, nil
	case "memory":
		return persistence.NewOutcomeMemoryRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("Unknown ledger backend %q", kind)
	}
}
