package service

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
)

type StrategyService interface {
	Select(assessment domain.RiskAssessment, thresholds domain.Thresholds) (domain.StrategyRecommendation, error)
}

type strategyService struct {
	logger  zerolog.Logger
	metrics *config.Metrics
}

func NewStrategyService(metrics *config.Metrics, logger *zerolog.Logger) StrategyService {
	return &strategyService{
		logger:  logger.With().Str("component", "StrategyService").Logger(),
		metrics: metrics,
	}
}

func (self strategyService) Select(assessment domain.RiskAssessment, thresholds domain.Thresholds) (recommendation domain.StrategyRecommendation, err error) {
	if err = thresholds.Validate(); err != nil {
		err = errors.WithMessage(err, "While validating thresholds")
		return
	}
	if assessment.Score < 0 || assessment.Score > 1 {
		err = fmt.Errorf("%w: assessment score %g must lie in [0, 1]", domain.ErrInvalidInput, assessment.Score)
		return
	}

	score := assessment.Score

	// Boundary scores land in the higher-risk bucket.
	var bucketLow, bucketHigh float64
	switch {
	case score < thresholds.Low:
		recommendation.Strategy = domain.StrategyBlueGreen
		bucketLow, bucketHigh = 0, thresholds.Low
		recommendation.Reasoning = []string{
			fmt.Sprintf("score %.3f below low threshold %.2f", score, thresholds.Low),
		}
	case score < thresholds.High:
		recommendation.Strategy = domain.StrategyCanary
		bucketLow, bucketHigh = thresholds.Low, thresholds.High
		recommendation.Reasoning = []string{
			fmt.Sprintf("score %.3f at or above low threshold %.2f", score, thresholds.Low),
			fmt.Sprintf("score %.3f below high threshold %.2f", score, thresholds.High),
		}
	default:
		recommendation.Strategy = domain.StrategyManualApproval
		bucketLow, bucketHigh = thresholds.High, 1
		recommendation.Reasoning = []string{
			fmt.Sprintf("score %.3f at or above high threshold %.2f", score, thresholds.High),
		}
	}

	recommendation.RiskLevel = thresholds.Level(score)
	recommendation.Confidence = bucketConfidence(score, bucketLow, bucketHigh)

	strategy, err := recommendation.Strategy.String()
	if err != nil {
		return
	}
	if self.metrics != nil {
		self.metrics.Decisions.WithLabelValues(strategy).Inc()
	}
	self.logger.Debug().
		Str("strategy", strategy).
		Float64("score", score).
		Float64("confidence", recommendation.Confidence).
		Msg("Selected deployment strategy")

	return
}

// bucketConfidence rewards scores deep inside a bucket and penalizes
// boundary-adjacent ones: 1 at the midpoint, 0 at either edge.
func bucketConfidence(score, low, high float64) float64 {
	width := high - low
	if width <= 0 {
		return 0
	}
	midpoint := (low + high) / 2
	confidence := 1 - 2*abs(score-midpoint)/width
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
