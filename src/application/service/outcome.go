package service

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

type OutcomeService interface {
	WithQuerier(config.PgxIface) OutcomeService

	Record(*domain.DeploymentOutcome) error
	// FailureRate computes (failed + rolled back) / n over the most
	// recent windowSize ledger entries; n shrinks when the ledger holds
	// fewer entries than the window asks for.
	FailureRate(windowSize int) (float64, error)
	GetAll(*repository.Page) ([]*domain.DeploymentOutcome, error)
	Statistics() (repository.StrategyStatistics, error)
}

type outcomeService struct {
	logger            zerolog.Logger
	outcomeRepository repository.OutcomeRepository
	metrics           *config.Metrics

	// serializes in-process appends so ledger order matches call order
	appendLock *sync.Mutex
}

func NewOutcomeService(outcomeRepository repository.OutcomeRepository, metrics *config.Metrics, logger *zerolog.Logger) OutcomeService {
	return &outcomeService{
		logger:            logger.With().Str("component", "OutcomeService").Logger(),
		outcomeRepository: outcomeRepository,
		metrics:           metrics,
		appendLock:        &sync.Mutex{},
	}
}

func (self outcomeService) WithQuerier(querier config.PgxIface) OutcomeService {
	return &outcomeService{
		logger:            self.logger,
		outcomeRepository: self.outcomeRepository.WithQuerier(querier),
		metrics:           self.metrics,
		appendLock:        self.appendLock,
	}
}

func (self outcomeService) Record(outcome *domain.DeploymentOutcome) error {
	if outcome.RiskScore < 0 || outcome.RiskScore > 1 {
		return fmt.Errorf("%w: risk score %g must lie in [0, 1]", domain.ErrInvalidInput, outcome.RiskScore)
	}
	if _, err := outcome.Strategy.String(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	self.logger.Debug().Msg("Recording deployment outcome")

	self.appendLock.Lock()
	defer self.appendLock.Unlock()

	if err := self.outcomeRepository.Save(outcome); err != nil {
		return errors.WithMessage(err, "Could not append outcome to ledger")
	}

	if self.metrics != nil {
		result := "success"
		if outcome.Failed() {
			result = "failure"
		}
		self.metrics.Outcomes.WithLabelValues(result).Inc()
	}
	self.logger.Debug().Str("id", outcome.ID.String()).Msg("Recorded deployment outcome")
	return nil
}

func (self outcomeService) FailureRate(windowSize int) (float64, error) {
	if windowSize <= 0 {
		return 0, fmt.Errorf("%w: window size %d must be positive", domain.ErrInvalidInput, windowSize)
	}

	outcomes, err := self.outcomeRepository.GetRecent(windowSize)
	if err != nil {
		return 0, errors.WithMessagef(err, "Could not read the %d most recent outcomes", windowSize)
	}
	if len(outcomes) == 0 {
		return 0, fmt.Errorf("%w: outcome ledger is empty", domain.ErrInsufficientData)
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failed += 1
		}
	}

	rate := float64(failed) / float64(len(outcomes))
	self.logger.Debug().
		Int("window", windowSize).
		Int("entries", len(outcomes)).
		Float64("failureRate", rate).
		Msg("Computed historical failure rate")
	return rate, nil
}

func (self outcomeService) GetAll(page *repository.Page) (outcomes []*domain.DeploymentOutcome, err error) {
	outcomes, err = self.outcomeRepository.GetAll(page)
	err = errors.WithMessage(err, "Could not select outcomes")
	return
}

func (self outcomeService) Statistics() (stats repository.StrategyStatistics, err error) {
	stats, err = self.outcomeRepository.Statistics()
	err = errors.WithMessage(err, "Could not compute ledger statistics")
	return
}
