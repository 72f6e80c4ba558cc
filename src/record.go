package riskgate

import (
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/application/service"
	"github.com/miltonvve/riskgate/src/domain"
)

// RecordCmd appends one completed deployment to the outcome ledger.
// Pipelines call this after the rollout settled, so the next decision
// sees an up-to-date failure rate.
type RecordCmd struct {
	Strategy   string  `arg:"--strategy,required" help:"blue_green, canary, manual_approval or rolling"`
	RiskScore  float64 `arg:"--risk-score,required" help:"score the deployment was decided at"`
	Succeeded  bool    `arg:"--succeeded" help:"the deployment completed successfully"`
	RolledBack bool    `arg:"--rolled-back" help:"the deployment was rolled back afterwards"`

	Ledger     string `arg:"--ledger,env:RISKGATE_LEDGER" default:"file" help:"outcome ledger backend: postgres, file or memory"`
	LedgerPath string `arg:"--ledger-path,env:RISKGATE_LEDGER_PATH"`
	LogDb      bool   `arg:"--log-db"`
}

func (cmd RecordCmd) Run(logger *zerolog.Logger) error {
	outcome := domain.DeploymentOutcome{
		RiskScore:  cmd.RiskScore,
		Succeeded:  cmd.Succeeded,
		RolledBack: cmd.RolledBack,
	}
	if err := outcome.Strategy.FromString(cmd.Strategy); err != nil {
		return err
	}

	outcomeRepository, closeLedger, err := NewOutcomeLedger(cmd.Ledger, cmd.LedgerPath, cmd.LogDb, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	if err := service.NewOutcomeService(outcomeRepository, nil, logger).Record(&outcome); err != nil {
		return err
	}

	logger.Info().
		Str("id", outcome.ID.String()).
		Str("strategy", cmd.Strategy).
		Bool("succeeded", cmd.Succeeded).
		Bool("rolledBack", cmd.RolledBack).
		Msg("Recorded deployment outcome")
	return nil
}
