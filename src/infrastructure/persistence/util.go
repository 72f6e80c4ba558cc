package persistence

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

func scanNextRow(rows pgx.Rows, dst ...interface{}) error {
	defer rows.Close()
	if err := rows.Err(); err != nil {
		return err
	} else if !rows.Next() {
		return errors.New("no row")
	} else if err := rows.Scan(dst...); err != nil {
		return err
	}
	return nil
}

func fetchPage(
	db config.PgxIface,
	page *repository.Page,
	items interface{},
	selects, from, orderBy string,
	queryArgs ...interface{},
) error {
	batch := &pgx.Batch{}
	batch.Queue(`SELECT count(*) FROM `+from, queryArgs...)
	batch.Queue(
		`SELECT `+selects+
			` FROM `+from+
			` ORDER BY `+orderBy+
			` LIMIT $`+strconv.Itoa(len(queryArgs)+1)+
			` OFFSET $`+strconv.Itoa(len(queryArgs)+2),
		append(queryArgs, page.Limit, page.Offset)...,
	)

	br := db.SendBatch(context.Background(), batch)
	defer br.Close()

	if rows, err := br.Query(); err != nil {
		return err
	} else if err := scanNextRow(rows, &page.Total); err != nil {
		return err
	}

	if rows, err := br.Query(); err != nil {
		return err
	} else if err := pgxscan.ScanAll(items, rows); err != nil {
		return err
	}

	return nil
}

// sortChronological orders entries oldest first by recording time,
// keeping insertion order for equal timestamps.
func sortChronological(outcomes []*domain.DeploymentOutcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].CreatedAt.Before(outcomes[j].CreatedAt)
	})
}

// recentTail returns up to limit entries, most recent first. The input
// must already be in chronological order.
func recentTail(outcomes []*domain.DeploymentOutcome, limit int) []*domain.DeploymentOutcome {
	if limit > len(outcomes) {
		limit = len(outcomes)
	}
	recent := make([]*domain.DeploymentOutcome, limit)
	for i := 0; i < limit; i += 1 {
		recent[i] = outcomes[len(outcomes)-1-i]
	}
	return recent
}

func aggregateStatistics(outcomes []*domain.DeploymentOutcome) (repository.StrategyStatistics, error) {
	byStrategy := map[string]*repository.StrategyStatistic{}
	scoreSums := map[string]float64{}

	for _, outcome := range outcomes {
		name, err := outcome.Strategy.String()
		if err != nil {
			return nil, err
		}

		stat, known := byStrategy[name]
		if !known {
			stat = &repository.StrategyStatistic{Strategy: name}
			byStrategy[name] = stat
		}

		stat.Deployments += 1
		if outcome.Succeeded {
			stat.Succeeded += 1
		} else {
			stat.Failed += 1
		}
		if outcome.RolledBack {
			stat.RolledBack += 1
		}
		scoreSums[name] += outcome.RiskScore
	}

	stats := make(repository.StrategyStatistics, 0, len(byStrategy))
	for name, stat := range byStrategy {
		stat.AvgRiskScore = scoreSums[name] / float64(stat.Deployments)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Strategy < stats[j].Strategy
	})

	return stats, nil
}
