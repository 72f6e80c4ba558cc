package riskgate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/application/service"
	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
)

// DecideCmd is the one-shot pipeline entry point: compute the historical
// failure rate from the ledger, assess the change, select a strategy and
// leave the result where the surrounding CI job picks it up.
type DecideCmd struct {
	FactorsFile string `arg:"--factors" help:"JSON file holding the factor set"`

	Complexity   *float64 `arg:"--complexity" help:"code complexity signal in [0,1]"`
	Dependencies *float64 `arg:"--dependencies" help:"dependency churn signal in [0,1]"`
	Coverage     *float64 `arg:"--coverage" help:"test coverage risk signal in [0,1]"`
	Performance  *float64 `arg:"--performance" help:"performance impact signal in [0,1]"`

	Window        int     `arg:"--window" default:"10" help:"ledger entries to derive the historical failure rate from"`
	ThresholdLow  float64 `arg:"--threshold-low,env:RISKGATE_THRESHOLD_LOW" default:"0.3"`
	ThresholdHigh float64 `arg:"--threshold-high,env:RISKGATE_THRESHOLD_HIGH" default:"0.7"`

	Ledger     string `arg:"--ledger,env:RISKGATE_LEDGER" default:"file" help:"outcome ledger backend: postgres, file or memory"`
	LedgerPath string `arg:"--ledger-path,env:RISKGATE_LEDGER_PATH"`
	LogDb      bool   `arg:"--log-db"`

	Advisor         bool `arg:"--advisor" help:"fold an LLM advisory into the factor set"`
	AdvisorOptional bool `arg:"--advisor-optional" help:"proceed with re-normalized weights when the advisory is unavailable"`

	OutputDir string `arg:"--output-dir" default:"." help:"directory for strategy and assessment output files"`
}

func (cmd DecideCmd) Run(logger *zerolog.Logger) error {
	ctx := context.Background()

	thresholds := domain.Thresholds{Low: cmd.ThresholdLow, High: cmd.ThresholdHigh}
	if err := thresholds.Validate(); err != nil {
		return err
	}

	factors, err := cmd.factors()
	if err != nil {
		return err
	}

	outcomeRepository, closeLedger, err := NewOutcomeLedger(cmd.Ledger, cmd.LedgerPath, cmd.LogDb, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	outcomeService := service.NewOutcomeService(outcomeRepository, nil, logger)

	historicalFailureRate, err := outcomeService.FailureRate(cmd.Window)
	if errors.Is(err, domain.ErrInsufficientData) {
		logger.Warn().Msg("Outcome ledger is empty, defaulting historical failure rate to 0")
		historicalFailureRate = 0
	} else if err != nil {
		return err
	}

	if cmd.Advisor {
		advisorConfig := config.NewAdvisorConfig()
		advisorService := service.NewAdvisorService(config.NewAdvisorClient(advisorConfig, logger), advisorConfig.Model, logger)

		if advisory, err := advisorService.Consult(ctx, factors, historicalFailureRate); err != nil {
			if !cmd.AdvisorOptional {
				return errors.WithMessage(err, "While consulting the advisory service")
			}
			logger.Warn().Err(err).Msg("Advisory unavailable, proceeding with the reduced factor set")
			factors = factors.Normalized()
		} else {
			factors = factors.With(advisory)
		}
	}

	assessment, err := service.NewAssessmentService(nil, logger).Assess(factors, historicalFailureRate)
	if err != nil {
		return err
	}

	recommendation, err := service.NewStrategyService(nil, logger).Select(assessment, thresholds)
	if err != nil {
		return err
	}

	strategy, err := recommendation.Strategy.String()
	if err != nil {
		return err
	}

	logger.Info().
		Str("strategy", strategy).
		Float64("score", assessment.Score).
		Float64("confidence", recommendation.Confidence).
		Str("riskLevel", string(recommendation.RiskLevel)).
		Strs("reasoning", recommendation.Reasoning).
		Msg("Deployment decision")

	return cmd.writeOutputs(assessment, recommendation, strategy)
}

func (cmd DecideCmd) factors() (domain.Factors, error) {
	if cmd.FactorsFile != "" {
		content, err := os.ReadFile(cmd.FactorsFile)
		if err != nil {
			return nil, errors.WithMessagef(err, "While reading factor file %q", cmd.FactorsFile)
		}
		factors := domain.Factors{}
		if err := json.Unmarshal(content, &factors); err != nil {
			return nil, errors.WithMessagef(err, "While decoding factor file %q", cmd.FactorsFile)
		}
		return factors, nil
	}

	if cmd.Complexity == nil || cmd.Dependencies == nil || cmd.Coverage == nil || cmd.Performance == nil {
		return nil, fmt.Errorf("%w: pass either --factors or all of --complexity, --dependencies, --coverage and --performance", domain.ErrInvalidConfiguration)
	}

	return domain.DefaultFactors(*cmd.Complexity, *cmd.Dependencies, *cmd.Coverage, *cmd.Performance), nil
}

// writeOutputs leaves the decision in the files and GitHub Actions
// outputs the surrounding workflow expects.
func (cmd DecideCmd) writeOutputs(assessment domain.RiskAssessment, recommendation domain.StrategyRecommendation, strategy string) error {
	score := strconv.FormatFloat(assessment.Score, 'f', -1, 64)

	if err := os.WriteFile(filepath.Join(cmd.OutputDir, "deployment-strategy.txt"), []byte(strategy+"\n"), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cmd.OutputDir, "risk-score.txt"), []byte(score+"\n"), 0o644); err != nil {
		return err
	}

	report, err := json.MarshalIndent(struct {
		Assessment     domain.RiskAssessment         `json:"assessment"`
		Recommendation domain.StrategyRecommendation `json:"recommendation"`
	}{assessment, recommendation}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cmd.OutputDir, "deployment-assessment.json"), append(report, '\n'), 0o644); err != nil {
		return err
	}

	if githubOutput := os.Getenv("GITHUB_OUTPUT"); githubOutput != "" {
		file, err := os.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.WithMessage(err, "While opening GITHUB_OUTPUT")
		}
		defer file.Close()

		if _, err := fmt.Fprintf(
			file,
			"deployment-strategy=%s\nrisk-score=%s\nrisk-level=%s\n",
			strategy, score, recommendation.RiskLevel,
		); err != nil {
			return errors.WithMessage(err, "While writing GITHUB_OUTPUT")
		}
	}

	return nil
}
