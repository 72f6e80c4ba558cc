package domain

import "time"

// Blend coefficients between the current-change signals and the
// historical failure rate. They must sum to 1.
const (
	CurrentSignalWeight  = 0.8
	HistoricalRateWeight = 0.2
)

// FactorContribution is one factor's weighted share of the final score.
type FactorContribution struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// RiskAssessment is the result of scoring one proposed change.
// It is immutable once produced.
type RiskAssessment struct {
	Score                 float64              `json:"score"`
	HistoricalFailureRate float64              `json:"historical_failure_rate"`
	Breakdown             []FactorContribution `json:"breakdown"`
	CreatedAt             time.Time            `json:"created_at"`
}

// NewRiskAssessment computes the blended risk score. The factor set and
// the historical rate must already be validated; this only does arithmetic
// so that identical inputs always produce an identical assessment apart
// from the timestamp.
func NewRiskAssessment(factors Factors, historicalFailureRate float64, now time.Time) RiskAssessment {
	breakdown := make([]FactorContribution, len(factors))
	weighted := float64(0)
	for i, factor := range factors {
		contribution := factor.Value * factor.Weight
		weighted += contribution
		breakdown[i] = FactorContribution{
			Name:         factor.Name,
			Value:        factor.Value,
			Weight:       factor.Weight,
			Contribution: contribution,
		}
	}

	return RiskAssessment{
		Score:                 clamp01(CurrentSignalWeight*weighted + HistoricalRateWeight*historicalFailureRate),
		HistoricalFailureRate: historicalFailureRate,
		Breakdown:             breakdown,
		CreatedAt:             now,
	}
}
