package persistence

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

// outcomeMemoryRepository is a process-local ledger. Readers get a
// snapshot taken at call time and never block appends for long.
type outcomeMemoryRepository struct {
	mutex    *sync.RWMutex
	outcomes []*domain.DeploymentOutcome
}

func NewOutcomeMemoryRepository() repository.OutcomeRepository {
	return &outcomeMemoryRepository{mutex: &sync.RWMutex{}}
}

func (self *outcomeMemoryRepository) WithQuerier(config.PgxIface) repository.OutcomeRepository {
	return self
}

func (self *outcomeMemoryRepository) Save(outcome *domain.DeploymentOutcome) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	if outcome.ID == uuid.Nil {
		outcome.ID = uuid.New()
	}
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = time.Now().UTC()
	}

	entry := *outcome
	self.outcomes = append(self.outcomes, &entry)
	return nil
}

func (self *outcomeMemoryRepository) snapshot() []*domain.DeploymentOutcome {
	self.mutex.RLock()
	defer self.mutex.RUnlock()

	outcomes := make([]*domain.DeploymentOutcome, len(self.outcomes))
	copy(outcomes, self.outcomes)
	sortChronological(outcomes)
	return outcomes
}

func (self *outcomeMemoryRepository) GetAll(page *repository.Page) ([]*domain.DeploymentOutcome, error) {
	outcomes := self.snapshot()
	page.Total = len(outcomes)

	recent := recentTail(outcomes, len(outcomes))
	if page.Offset >= len(recent) {
		return []*domain.DeploymentOutcome{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(recent) {
		end = len(recent)
	}
	return recent[page.Offset:end], nil
}

func (self *outcomeMemoryRepository) GetRecent(limit int) ([]*domain.DeploymentOutcome, error) {
	return recentTail(self.snapshot(), limit), nil
}

func (self *outcomeMemoryRepository) Statistics() (repository.StrategyStatistics, error) {
	return aggregateStatistics(self.snapshot())
}
