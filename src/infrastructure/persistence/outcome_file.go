package persistence

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

// outcomeFileRepository keeps the ledger as one JSON document per line,
// appended under a lock. This is the backend for one-shot CLI runs in CI
// jobs that have no database at hand.
type outcomeFileRepository struct {
	path  string
	mutex *sync.Mutex
}

// DefaultLedgerPath resolves the ledger file in the XDG data directory.
func DefaultLedgerPath() (string, error) {
	return xdg.DataFile("riskgate/outcomes.jsonl")
}

func NewOutcomeFileRepository(path string) (repository.OutcomeRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WithMessagef(err, "While creating ledger directory for %q", path)
	}
	return &outcomeFileRepository{path: path, mutex: &sync.Mutex{}}, nil
}

func (self *outcomeFileRepository) WithQuerier(config.PgxIface) repository.OutcomeRepository {
	return self
}

func (self *outcomeFileRepository) Save(outcome *domain.DeploymentOutcome) error {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	if outcome.ID == uuid.Nil {
		outcome.ID = uuid.New()
	}
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = time.Now().UTC()
	}

	line, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(self.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.WithMessagef(err, "While opening ledger %q", self.path)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errors.WithMessagef(err, "While appending to ledger %q", self.path)
	}
	return file.Sync()
}

func (self *outcomeFileRepository) load() ([]*domain.DeploymentOutcome, error) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	file, err := os.Open(self.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithMessagef(err, "While opening ledger %q", self.path)
	}
	defer file.Close()

	var outcomes []*domain.DeploymentOutcome
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		outcome := &domain.DeploymentOutcome{}
		if err := json.Unmarshal(scanner.Bytes(), outcome); err != nil {
			return nil, errors.WithMessagef(err, "While decoding ledger entry in %q", self.path)
		}
		outcomes = append(outcomes, outcome)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sortChronological(outcomes)
	return outcomes, nil
}

func (self *outcomeFileRepository) GetAll(page *repository.Page) ([]*domain.DeploymentOutcome, error) {
	outcomes, err := self.load()
	if err != nil {
		return nil, err
	}
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

func (self *outcomeFileRepository) GetRecent(limit int) ([]*domain.DeploymentOutcome, error) {
	outcomes, err := self.load()
	if err != nil {
		return nil, err
	}
	return recentTail(outcomes, limit), nil
}

func (self *outcomeFileRepository) Statistics() (repository.StrategyStatistics, error) {
	outcomes, err := self.load()
	if err != nil {
		return nil, err
	}
	return aggregateStatistics(outcomes)
}
