package domain

import (
	"fmt"
	"math"
)

var BuildInfo = struct {
	Version string
	Commit  string
}{
	Version: "unknown",
	Commit:  "unknown",
}

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Thresholds split the score range into the three strategy buckets.
// A score below Low is low risk, a score of at least High is high risk.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.3, High: 0.7}
}

func (self Thresholds) Validate() error {
	if self.Low <= 0 || self.Low >= 1 || self.High <= 0 || self.High >= 1 {
		return fmt.Errorf("%w: thresholds must lie in (0, 1), got low=%g high=%g", ErrInvalidConfiguration, self.Low, self.High)
	}
	if self.Low >= self.High {
		return fmt.Errorf("%w: low threshold %g must be less than high threshold %g", ErrInvalidConfiguration, self.Low, self.High)
	}
	return nil
}

// Level returns the risk level of the bucket that score falls into.
// Boundary scores belong to the higher-risk bucket.
func (self Thresholds) Level(score float64) RiskLevel {
	switch {
	case score < self.Low:
		return RiskLevelLow
	case score < self.High:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
