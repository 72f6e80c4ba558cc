package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

func newFileLedger(t *testing.T) repository.OutcomeRepository {
	t.Helper()
	ledger, err := NewOutcomeFileRepository(filepath.Join(t.TempDir(), "history", "outcomes.jsonl"))
	require.NoError(t, err)
	return ledger
}

func appendEntry(t *testing.T, ledger repository.OutcomeRepository, strategy domain.Strategy, score float64, succeeded bool, at time.Time) {
	t.Helper()
	require.NoError(t, ledger.Save(&domain.DeploymentOutcome{
		Strategy:  strategy,
		RiskScore: score,
		Succeeded: succeeded,
		CreatedAt: at,
	}))
}

func TestFileLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	ledger := newFileLedger(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	appendEntry(t, ledger, domain.StrategyBlueGreen, 0.1, true, base)
	appendEntry(t, ledger, domain.StrategyCanary, 0.5, false, base.Add(time.Minute))

	outcomes, err := ledger.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// most recent first
	assert.Equal(t, domain.StrategyCanary, outcomes[0].Strategy)
	assert.Equal(t, 0.5, outcomes[0].RiskScore)
	assert.False(t, outcomes[0].Succeeded)
	assert.Equal(t, domain.StrategyBlueGreen, outcomes[1].Strategy)
	assert.NotEqual(t, outcomes[0].ID, outcomes[1].ID)
}

func TestFileLedgerGetRecentHonorsLimit(t *testing.T) {
	t.Parallel()

	ledger := newFileLedger(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i += 1 {
		appendEntry(t, ledger, domain.StrategyCanary, 0.5, i%2 == 0, base.Add(time.Duration(i)*time.Minute))
	}

	outcomes, err := ledger.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, base.Add(4*time.Minute), outcomes[0].CreatedAt)
	assert.Equal(t, base.Add(3*time.Minute), outcomes[1].CreatedAt)
}

func TestFileLedgerGetRecentOnMissingFile(t *testing.T) {
	t.Parallel()

	outcomes, err := newFileLedger(t).GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestFileLedgerGetAllPaging(t *testing.T) {
	t.Parallel()

	ledger := newFileLedger(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i += 1 {
		appendEntry(t, ledger, domain.StrategyRolling, 0.3, true, base.Add(time.Duration(i)*time.Minute))
	}

	page := repository.Page{Limit: 2, Offset: 2}
	outcomes, err := ledger.GetAll(&page)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, base.Add(2*time.Minute), outcomes[0].CreatedAt)

	page = repository.Page{Limit: 10, Offset: 10}
	outcomes, err = ledger.GetAll(&page)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestFileLedgerStatistics(t *testing.T) {
	t.Parallel()

	ledger := newFileLedger(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	appendEntry(t, ledger, domain.StrategyBlueGreen, 0.1, true, base)
	appendEntry(t, ledger, domain.StrategyBlueGreen, 0.3, false, base.Add(time.Minute))
	appendEntry(t, ledger, domain.StrategyCanary, 0.5, true, base.Add(2*time.Minute))

	stats, err := ledger.Statistics()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "blue_green", stats[0].Strategy)
	assert.Equal(t, uint64(2), stats[0].Deployments)
	assert.Equal(t, uint64(1), stats[0].Failed)
	assert.InDelta(t, 0.2, stats[0].AvgRiskScore, 1e-9)
	assert.Equal(t, "canary", stats[1].Strategy)
}
