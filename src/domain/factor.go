package domain

import (
	"fmt"
	"math"
)

// Canonical factor names as emitted by the usual CI signal collectors.
// The factor set itself is deployment configuration, not a contract;
// any bounded signal may be registered under any name.
const (
	FactorCodeComplexity    = "code_complexity"
	FactorDependencyChanges = "dependency_changes"
	FactorTestCoverage      = "test_coverage"
	FactorPerformanceImpact = "performance_impact"
	FactorAdvisory          = "advisory"
)

// WeightSumEpsilon is the tolerance when checking that weights sum to 1.
const WeightSumEpsilon = 1e-6

// RiskFactor is a single bounded signal about a proposed change.
// Value and Weight both lie in [0, 1].
type RiskFactor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Factors is an ordered factor set. Order is meaningful: the assessment
// breakdown preserves it.
type Factors []RiskFactor

// DefaultFactors returns the canonical four-factor set with equal weights
// and the given signal values, in collector order.
func DefaultFactors(complexity, dependencies, coverage, performance float64) Factors {
	return Factors{
		{Name: FactorCodeComplexity, Value: complexity, Weight: 0.25},
		{Name: FactorDependencyChanges, Value: dependencies, Weight: 0.25},
		{Name: FactorTestCoverage, Value: coverage, Weight: 0.25},
		{Name: FactorPerformanceImpact, Value: performance, Weight: 0.25},
	}
}

func (self Factors) Validate() error {
	if len(self) == 0 {
		return fmt.Errorf("%w: factor set is empty", ErrInvalidConfiguration)
	}

	seen := make(map[string]struct{}, len(self))
	sum := float64(0)
	for _, factor := range self {
		if factor.Name == "" {
			return fmt.Errorf("%w: factor without a name", ErrInvalidConfiguration)
		}
		if _, dup := seen[factor.Name]; dup {
			return fmt.Errorf("%w: duplicate factor %q", ErrInvalidConfiguration, factor.Name)
		}
		seen[factor.Name] = struct{}{}

		if factor.Weight < 0 || factor.Weight > 1 {
			return fmt.Errorf("%w: weight of factor %q is %g, must lie in [0, 1]", ErrInvalidConfiguration, factor.Name, factor.Weight)
		}
		if factor.Value < 0 || factor.Value > 1 {
			return fmt.Errorf("%w: value of factor %q is %g, must lie in [0, 1]", ErrInvalidInput, factor.Name, factor.Value)
		}

		sum += factor.Weight
	}

	if math.Abs(sum-1) > WeightSumEpsilon {
		return fmt.Errorf("%w: factor weights sum to %g, must sum to 1", ErrInvalidConfiguration, sum)
	}

	return nil
}

// Normalized returns a copy whose weights are scaled to sum to 1.
// Used after a factor had to be dropped, e.g. an unavailable advisory.
func (self Factors) Normalized() Factors {
	sum := float64(0)
	for _, factor := range self {
		sum += factor.Weight
	}
	if sum == 0 {
		return self
	}

	normalized := make(Factors, len(self))
	for i, factor := range self {
		factor.Weight /= sum
		normalized[i] = factor
	}
	return normalized
}

// With appends an additional factor at the given weight, scaling the
// existing weights down so the result sums to 1 again.
func (self Factors) With(factor RiskFactor) Factors {
	extended := make(Factors, len(self), len(self)+1)
	for i, existing := range self {
		existing.Weight *= 1 - factor.Weight
		extended[i] = existing
	}
	return append(extended, factor)
}
