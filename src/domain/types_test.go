package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultThresholds().Validate())
	assert.ErrorIs(t, Thresholds{Low: 0.7, High: 0.3}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Thresholds{Low: 0.3, High: 0.3}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Thresholds{Low: 0, High: 0.7}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Thresholds{Low: 0.3, High: 1}.Validate(), ErrInvalidConfiguration)
}

func TestThresholdsLevel(t *testing.T) {
	t.Parallel()

	thresholds := DefaultThresholds()

	assert.Equal(t, RiskLevelLow, thresholds.Level(0))
	assert.Equal(t, RiskLevelLow, thresholds.Level(0.29))
	// boundary scores belong to the higher-risk bucket
	assert.Equal(t, RiskLevelMedium, thresholds.Level(0.3))
	assert.Equal(t, RiskLevelMedium, thresholds.Level(0.69))
	assert.Equal(t, RiskLevelHigh, thresholds.Level(0.7))
	assert.Equal(t, RiskLevelHigh, thresholds.Level(1))
}
