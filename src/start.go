package riskgate

import (
	"context"
	"time"

	"cirello.io/oversight"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/application/component/web"
	"github.com/miltonvve/riskgate/src/application/service"
	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
)

type StartCmd struct {
	WebListen string `arg:"--web-listen,env:RISKGATE_WEB_LISTEN" default:":8080"`

	Ledger     string `arg:"--ledger,env:RISKGATE_LEDGER" default:"postgres" help:"outcome ledger backend: postgres, file or memory"`
	LedgerPath string `arg:"--ledger-path,env:RISKGATE_LEDGER_PATH" help:"path of the file ledger, defaults to the XDG data directory"`

	ThresholdLow  float64 `arg:"--threshold-low,env:RISKGATE_THRESHOLD_LOW" default:"0.3"`
	ThresholdHigh float64 `arg:"--threshold-high,env:RISKGATE_THRESHOLD_HIGH" default:"0.7"`

	LogDb bool `arg:"--log-db"`
}

func (cmd StartCmd) Run(logger *zerolog.Logger) error {
	instance, err := NewInstance(cmd, logger)
	if err != nil {
		return err
	}
	defer instance.Close()
	return instance.Run(context.Background())
}

func NewInstance(cmd StartCmd, logger *zerolog.Logger) (Instance, error) {
	instance := Instance{logger: logger}

	thresholds := domain.Thresholds{Low: cmd.ThresholdLow, High: cmd.ThresholdHigh}
	if err := thresholds.Validate(); err != nil {
		return instance, err
	}

	outcomeRepository, closeLedger, err := NewOutcomeLedger(cmd.Ledger, cmd.LedgerPath, cmd.LogDb, logger)
	if err != nil {
		logger.Fatal().Err(err).Send()
		return instance, err
	}
	instance.closeLedger = closeLedger

	metrics := config.NewMetrics()

	assessmentService := service.NewAssessmentService(metrics, logger)
	strategyService := service.NewStrategyService(metrics, logger)
	outcomeService := service.NewOutcomeService(outcomeRepository, metrics, logger)

	instance.Web = &web.Web{
		Listen:            cmd.WebListen,
		Logger:            logger.With().Str("component", "Web").Logger(),
		AssessmentService: assessmentService,
		StrategyService:   strategyService,
		OutcomeService:    outcomeService,
		Thresholds:        thresholds,
		Metrics:           metrics,
	}

	return instance, nil
}

type Instance struct {
	Web *web.Web

	logger      *zerolog.Logger
	closeLedger func()
}

func (self Instance) Close() {
	if self.closeLedger != nil {
		self.closeLedger()
	}
}

func (self Instance) Run(ctx context.Context) error {
	self.logger.Info().Msg("Starting components")

	supervisor := oversight.New(
		oversight.WithLogger(&config.SupervisorLogger{Logger: self.logger}),
		oversight.WithSpecification(
			10,                    // number of restarts
			1*time.Minute,         // within this time period
			oversight.OneForOne(), // restart every task on its own
		),
	)

	if err := supervisor.Add(self.Web.Start); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := supervisor.Start(ctx); err != nil {
		return errors.WithMessage(err, "While starting supervisor")
	}

	<-ctx.Done()
	return nil
}
