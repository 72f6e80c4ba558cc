package persistence

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

type outcomeDbRepository struct {
	Db config.PgxIface
}

func NewOutcomeDbRepository(db config.PgxIface) repository.OutcomeRepository {
	return &outcomeDbRepository{db}
}

func (self outcomeDbRepository) WithQuerier(querier config.PgxIface) repository.OutcomeRepository {
	return &outcomeDbRepository{querier}
}

func (self outcomeDbRepository) Save(outcome *domain.DeploymentOutcome) error {
	strategy, err := outcome.Strategy.String()
	if err != nil {
		return err
	}
	return self.Db.QueryRow(
		context.Background(),
		`INSERT INTO outcome (strategy, risk_score, succeeded, rolled_back) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		strategy, outcome.RiskScore, outcome.Succeeded, outcome.RolledBack,
	).Scan(&outcome.ID, &outcome.CreatedAt)
}

func (self outcomeDbRepository) GetAll(page *repository.Page) ([]*domain.DeploymentOutcome, error) {
	outcomes := make([]*domain.DeploymentOutcome, page.Limit)
	return outcomes, fetchPage(
		self.Db, page, &outcomes,
		`id, strategy, risk_score, succeeded, rolled_back, created_at`,
		`outcome`,
		`created_at DESC, seq DESC`,
	)
}

func (self outcomeDbRepository) GetRecent(limit int) (outcomes []*domain.DeploymentOutcome, err error) {
	return outcomes, pgxscan.Select(
		context.Background(), self.Db, &outcomes,
		`SELECT id, strategy, risk_score, succeeded, rolled_back, created_at
		FROM outcome
		ORDER BY created_at DESC, seq DESC
		LIMIT $1`,
		limit,
	)
}

func (self outcomeDbRepository) Statistics() (repository.StrategyStatistics, error) {
	stats := repository.StrategyStatistics{}
	if err := pgxscan.Select(
		context.Background(), self.Db, &stats,
		`SELECT
			strategy                                          AS strategy,
			COUNT(*)                                          AS deployments,
			COUNT(NULLIF(succeeded, FALSE))                   AS succeeded,
			COUNT(NULLIF(NOT succeeded, FALSE))               AS failed,
			COUNT(NULLIF(rolled_back, FALSE))                 AS rolled_back,
			AVG(risk_score)                                   AS avg_risk_score
		FROM outcome
		GROUP BY strategy
		ORDER BY strategy`,
	); err != nil {
		return stats, err
	}
	return stats, nil
}
