package service

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miltonvve/riskgate/src/domain"
)

func newTestStrategyService() StrategyService {
	logger := zerolog.Nop()
	return NewStrategyService(nil, &logger)
}

func selectFor(t *testing.T, score float64) domain.StrategyRecommendation {
	recommendation, err := newTestStrategyService().Select(
		domain.RiskAssessment{Score: score},
		domain.DefaultThresholds(),
	)
	require.NoError(t, err)
	return recommendation
}

func TestSelectBuckets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.StrategyBlueGreen, selectFor(t, 0).Strategy)
	assert.Equal(t, domain.StrategyBlueGreen, selectFor(t, 0.1).Strategy)
	assert.Equal(t, domain.StrategyCanary, selectFor(t, 0.5).Strategy)
	assert.Equal(t, domain.StrategyManualApproval, selectFor(t, 0.82).Strategy)
	assert.Equal(t, domain.StrategyManualApproval, selectFor(t, 1).Strategy)
}

func TestSelectBoundariesBelongToHigherRiskBucket(t *testing.T) {
	t.Parallel()

	low := selectFor(t, 0.3)
	assert.Equal(t, domain.StrategyCanary, low.Strategy)
	assert.Equal(t, domain.RiskLevelMedium, low.RiskLevel)

	high := selectFor(t, 0.7)
	assert.Equal(t, domain.StrategyManualApproval, high.Strategy)
	assert.Equal(t, domain.RiskLevelHigh, high.RiskLevel)
}

func TestSelectConfidence(t *testing.T) {
	t.Parallel()

	// deep inside the low bucket: midpoint of [0, 0.3) is 0.15
	assert.InDelta(t, 1, selectFor(t, 0.15).Confidence, 1e-9)

	// at a bucket edge the confidence collapses
	assert.InDelta(t, 0, selectFor(t, 0.3).Confidence, 1e-9)

	// midpoint of [0.3, 0.7) is 0.5
	assert.InDelta(t, 1, selectFor(t, 0.5).Confidence, 1e-9)
	assert.InDelta(t, 0.5, selectFor(t, 0.4).Confidence, 1e-9)

	for _, score := range []float64{0, 0.15, 0.3, 0.42, 0.7, 0.9, 1} {
		confidence := selectFor(t, score).Confidence
		assert.GreaterOrEqual(t, confidence, float64(0))
		assert.LessOrEqual(t, confidence, float64(1))
	}
}

func TestSelectLowRiskScenario(t *testing.T) {
	t.Parallel()

	recommendation := selectFor(t, 0.1)
	assert.Equal(t, domain.StrategyBlueGreen, recommendation.Strategy)
	assert.Equal(t, domain.RiskLevelLow, recommendation.RiskLevel)
	assert.Greater(t, recommendation.Confidence, 0.6)
	require.Len(t, recommendation.Reasoning, 1)
	assert.Contains(t, recommendation.Reasoning[0], "below low threshold")
}

func TestSelectRejectsBadThresholds(t *testing.T) {
	t.Parallel()

	service := newTestStrategyService()
	assessment := domain.RiskAssessment{Score: 0.5}

	for _, thresholds := range []domain.Thresholds{
		{Low: 0.7, High: 0.3},
		{Low: 0.5, High: 0.5},
		{Low: 0, High: 0.7},
		{Low: 0.3, High: 1},
	} {
		_, err := service.Select(assessment, thresholds)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	}
}

func TestSelectRejectsOutOfRangeScore(t *testing.T) {
	t.Parallel()

	_, err := newTestStrategyService().Select(domain.RiskAssessment{Score: 1.5}, domain.DefaultThresholds())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSelectIsDeterministic(t *testing.T) {
	t.Parallel()

	first := selectFor(t, 0.42)
	second := selectFor(t, 0.42)

	firstJson, err := json.Marshal(first)
	require.NoError(t, err)
	secondJson, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJson, secondJson)
}
