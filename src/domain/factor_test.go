package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorsValidate(t *testing.T) {
	t.Parallel()

	t.Run("canonical set is valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, DefaultFactors(0.2, 0.1, 0.1, 0.1).Validate())
	})

	t.Run("single factor with weight 1 is valid", func(t *testing.T) {
		t.Parallel()
		factors := Factors{{Name: FactorCodeComplexity, Value: 0.5, Weight: 1}}
		assert.NoError(t, factors.Validate())
	})

	t.Run("empty set is rejected", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, Factors{}.Validate(), ErrInvalidConfiguration)
	})

	t.Run("weights summing to 0.9 are rejected", func(t *testing.T) {
		t.Parallel()
		factors := Factors{
			{Name: FactorCodeComplexity, Value: 0.2, Weight: 0.45},
			{Name: FactorTestCoverage, Value: 0.1, Weight: 0.45},
		}
		assert.ErrorIs(t, factors.Validate(), ErrInvalidConfiguration)
	})

	t.Run("value out of range is rejected", func(t *testing.T) {
		t.Parallel()
		factors := Factors{{Name: FactorCodeComplexity, Value: 1.2, Weight: 1}}
		assert.ErrorIs(t, factors.Validate(), ErrInvalidInput)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		t.Parallel()
		factors := Factors{
			{Name: FactorCodeComplexity, Value: 0.2, Weight: 0.5},
			{Name: FactorCodeComplexity, Value: 0.3, Weight: 0.5},
		}
		assert.ErrorIs(t, factors.Validate(), ErrInvalidConfiguration)
	})
}

func TestFactorsNormalized(t *testing.T) {
	t.Parallel()

	factors := Factors{
		{Name: FactorCodeComplexity, Value: 0.2, Weight: 0.25},
		{Name: FactorTestCoverage, Value: 0.1, Weight: 0.25},
	}

	normalized := factors.Normalized()
	require.NoError(t, normalized.Validate())
	assert.InDelta(t, 0.5, normalized[0].Weight, WeightSumEpsilon)
	assert.InDelta(t, 0.5, normalized[1].Weight, WeightSumEpsilon)

	// the original is untouched
	assert.Equal(t, 0.25, factors[0].Weight)
}

func TestFactorsWith(t *testing.T) {
	t.Parallel()

	factors := DefaultFactors(0.2, 0.1, 0.1, 0.1).With(RiskFactor{
		Name:   FactorAdvisory,
		Value:  0.6,
		Weight: 0.2,
	})

	require.NoError(t, factors.Validate())
	require.Len(t, factors, 5)
	assert.Equal(t, FactorAdvisory, factors[4].Name)
	assert.InDelta(t, 0.2, factors[0].Weight, WeightSumEpsilon)
}
