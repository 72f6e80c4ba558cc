package service

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
)

type AssessmentService interface {
	Assess(factors domain.Factors, historicalFailureRate float64) (domain.RiskAssessment, error)
}

type assessmentService struct {
	logger  zerolog.Logger
	metrics *config.Metrics
	now     func() time.Time
}

func NewAssessmentService(metrics *config.Metrics, logger *zerolog.Logger) AssessmentService {
	return &assessmentService{
		logger:  logger.With().Str("component", "AssessmentService").Logger(),
		metrics: metrics,
		now:     time.Now,
	}
}

func (self assessmentService) Assess(factors domain.Factors, historicalFailureRate float64) (assessment domain.RiskAssessment, err error) {
	if err = factors.Validate(); err != nil {
		err = errors.WithMessage(err, "While validating the factor set")
		return
	}
	if historicalFailureRate < 0 || historicalFailureRate > 1 {
		err = fmt.Errorf("%w: historical failure rate %g must lie in [0, 1]", domain.ErrInvalidInput, historicalFailureRate)
		return
	}

	assessment = domain.NewRiskAssessment(factors, historicalFailureRate, self.now().UTC())

	if self.metrics != nil {
		self.metrics.RiskScores.Observe(assessment.Score)
	}
	self.logger.Debug().
		Float64("score", assessment.Score).
		Float64("historicalFailureRate", historicalFailureRate).
		Int("factors", len(factors)).
		Msg("Assessed deployment risk")

	return
}
