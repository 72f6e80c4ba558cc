package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miltonvve/riskgate/src/domain"
)

func newTestAssessmentService(now time.Time) AssessmentService {
	logger := zerolog.Nop()
	return &assessmentService{
		logger: logger,
		now:    func() time.Time { return now },
	}
}

func TestAssessLowRiskScenario(t *testing.T) {
	t.Parallel()

	// 4 equal factors averaging 0.125 weighted, no history:
	// 0.8*0.125 + 0.2*0 = 0.1
	factors := domain.DefaultFactors(0.2, 0.1, 0.1, 0.1)

	assessment, err := newTestAssessmentService(time.Now()).Assess(factors, 0)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, assessment.Score, 1e-9)
	assert.Equal(t, float64(0), assessment.HistoricalFailureRate)

	require.Len(t, assessment.Breakdown, 4)
	assert.Equal(t, domain.FactorCodeComplexity, assessment.Breakdown[0].Name)
	assert.InDelta(t, 0.05, assessment.Breakdown[0].Contribution, 1e-9)
}

func TestAssessHighRiskScenario(t *testing.T) {
	t.Parallel()

	// all signals 0.9 with a 0.5 failure rate:
	// 0.8*0.9 + 0.2*0.5 = 0.82
	factors := domain.DefaultFactors(0.9, 0.9, 0.9, 0.9)

	assessment, err := newTestAssessmentService(time.Now()).Assess(factors, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.82, assessment.Score, 1e-9)
}

func TestAssessScoreStaysInRange(t *testing.T) {
	t.Parallel()

	service := newTestAssessmentService(time.Now())

	for _, scenario := range []struct {
		factors domain.Factors
		rate    float64
	}{
		{domain.DefaultFactors(0, 0, 0, 0), 0},
		{domain.DefaultFactors(1, 1, 1, 1), 1},
		{domain.Factors{{Name: "blast_radius", Value: 1, Weight: 1}}, 0},
		{domain.DefaultFactors(0.3, 0.7, 0.2, 0.9), 0.33},
	} {
		assessment, err := service.Assess(scenario.factors, scenario.rate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, assessment.Score, float64(0))
		assert.LessOrEqual(t, assessment.Score, float64(1))
	}
}

func TestAssessBoundaryRatesAreAccepted(t *testing.T) {
	t.Parallel()

	service := newTestAssessmentService(time.Now())
	factors := domain.Factors{{Name: "blast_radius", Value: 0, Weight: 1}}

	assessment, err := service.Assess(factors, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(0), assessment.Score)

	assessment, err = service.Assess(factors, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, assessment.Score, 1e-9)
}

func TestAssessRejectsBadWeightSumBeforeScoring(t *testing.T) {
	t.Parallel()

	factors := domain.Factors{
		{Name: domain.FactorCodeComplexity, Value: 0.2, Weight: 0.45},
		{Name: domain.FactorTestCoverage, Value: 0.1, Weight: 0.45},
	}

	_, err := newTestAssessmentService(time.Now()).Assess(factors, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestAssessRejectsOutOfRangeRate(t *testing.T) {
	t.Parallel()

	service := newTestAssessmentService(time.Now())
	factors := domain.DefaultFactors(0.2, 0.1, 0.1, 0.1)

	_, err := service.Assess(factors, -0.01)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Assess(factors, 1.01)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssessIsDeterministic(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service := newTestAssessmentService(now)
	factors := domain.DefaultFactors(0.3, 0.7, 0.2, 0.9)

	first, err := service.Assess(factors, 0.25)
	require.NoError(t, err)
	second, err := service.Assess(factors, 0.25)
	require.NoError(t, err)

	firstJson, err := json.Marshal(first)
	require.NoError(t, err)
	secondJson, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJson, secondJson)
}
