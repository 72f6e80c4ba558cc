package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/miltonvve/riskgate/src/application/service"
	"github.com/miltonvve/riskgate/src/config"
	"github.com/miltonvve/riskgate/src/domain"
	"github.com/miltonvve/riskgate/src/domain/repository"
)

// defaultFailureRateWindow is used when an assessment request does not
// pin the window itself.
const defaultFailureRateWindow = 10

type Web struct {
	Listen string

	Logger            zerolog.Logger
	AssessmentService service.AssessmentService
	StrategyService   service.StrategyService
	OutcomeService    service.OutcomeService
	Thresholds        domain.Thresholds
	Metrics           *config.Metrics
}

func (self *Web) Start(ctx context.Context) error {
	self.Logger.Info().Str("listen", self.Listen).Msg("Starting")

	muxRouter := mux.NewRouter().StrictSlash(true)
	muxRouter.NotFoundHandler = http.NotFoundHandler()

	// sorted alphabetically, please keep it this way
	muxRouter.HandleFunc("/api/assessment", self.ApiAssessmentPost).Methods(http.MethodPost)
	muxRouter.HandleFunc("/api/outcome/failure-rate", self.ApiOutcomeFailureRateGet).Methods(http.MethodGet)
	muxRouter.HandleFunc("/api/outcome", self.ApiOutcomeGet).Methods(http.MethodGet)
	muxRouter.HandleFunc("/api/outcome", self.ApiOutcomePost).Methods(http.MethodPost)
	muxRouter.HandleFunc("/api/statistics", self.ApiStatisticsGet).Methods(http.MethodGet)
	muxRouter.HandleFunc("/health", self.HealthGet).Methods(http.MethodGet)
	if self.Metrics != nil {
		muxRouter.Handle("/metrics", promhttp.HandlerFor(self.Metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	server := &http.Server{
		Addr:         self.Listen,
		Handler:      muxRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			self.Logger.Error().Err(err).Msg("Failed to shut down web server")
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithMessage(err, "While serving HTTP")
	}
	return nil
}

type HandlerError struct {
	error
	StatusCode int
}

func (self *Web) Error(w http.ResponseWriter, err error) {
	status := 500

	if handlerErr, ok := err.(HandlerError); ok {
		status = handlerErr.StatusCode
	}

	var e *zerolog.Event
	if status >= 500 {
		e = self.Logger.Error()
	} else {
		e = self.Logger.Debug()
	}
	e.Err(err).Int("status", status).Msg("Handler error")

	var msg string
	if err != nil {
		msg = err.Error()
	}

	http.Error(w, msg, status)
}

func (self *Web) ServerError(w http.ResponseWriter, err error) {
	self.Error(w, HandlerError{err, http.StatusInternalServerError})
}

func (self *Web) ClientError(w http.ResponseWriter, err error) {
	self.Error(w, HandlerError{err, http.StatusBadRequest})
}

// domainError picks the HTTP status that matches the sentinel wrapped
// inside err, falling back to 500.
func (self *Web) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidConfiguration), errors.Is(err, domain.ErrInvalidInput):
		self.ClientError(w, err)
	case errors.Is(err, domain.ErrInsufficientData):
		self.Error(w, HandlerError{err, http.StatusUnprocessableEntity})
	default:
		self.ServerError(w, err)
	}
}

func (self *Web) json(w http.ResponseWriter, obj any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		self.ServerError(w, err)
		return
	}
}

func getPage(req *http.Request) (*repository.Page, error) {
	page := repository.Page{}

	if offsetStr := req.FormValue("offset"); offsetStr == "" {
		page.Offset = 0
	} else if offset, err := strconv.Atoi(offsetStr); err != nil {
		return nil, errors.WithMessage(err, "offset parameter is invalid, should be positive integer")
	} else if offset < 0 {
		return nil, errors.New("offset parameter is invalid, should be positive integer")
	} else {
		page.Offset = offset
	}

	if limitStr := req.FormValue("limit"); limitStr == "" {
		page.Limit = 10
	} else if limit, err := strconv.Atoi(limitStr); err != nil {
		return nil, errors.WithMessage(err, "limit parameter is invalid, should be positive integer")
	} else if limit <= 0 {
		return nil, errors.New("limit parameter is invalid, should be positive integer")
	} else {
		page.Limit = limit
	}

	return &page, nil
}

func (self *Web) HealthGet(w http.ResponseWriter, req *http.Request) {
	self.json(w, map[string]string{
		"status":  "healthy",
		"version": domain.BuildInfo.Version,
	}, http.StatusOK)
}

type apiAssessmentRequest struct {
	Factors domain.Factors `json:"factors"`

	// When absent the rate is computed from the ledger over Window
	// entries; an empty ledger defaults the rate to 0.
	HistoricalFailureRate *float64 `json:"historical_failure_rate"`
	Window                int      `json:"window"`

	Thresholds *domain.Thresholds `json:"thresholds"`
}

type apiAssessmentResponse struct {
	Assessment     domain.RiskAssessment         `json:"assessment"`
	Recommendation domain.StrategyRecommendation `json:"recommendation"`
}

func (self *Web) ApiAssessmentPost(w http.ResponseWriter, req *http.Request) {
	request := apiAssessmentRequest{}
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		self.ClientError(w, errors.WithMessage(err, "Could not unmarshal request body"))
		return
	}

	historicalFailureRate := float64(0)
	switch {
	case request.HistoricalFailureRate != nil:
		historicalFailureRate = *request.HistoricalFailureRate
	default:
		window := request.Window
		if window <= 0 {
			window = defaultFailureRateWindow
		}
		if rate, err := self.OutcomeService.FailureRate(window); err == nil {
			historicalFailureRate = rate
		} else if !errors.Is(err, domain.ErrInsufficientData) {
			self.domainError(w, err)
			return
		}
	}

	thresholds := self.Thresholds
	if request.Thresholds != nil {
		thresholds = *request.Thresholds
	}

	assessment, err := self.AssessmentService.Assess(request.Factors, historicalFailureRate)
	if err != nil {
		self.domainError(w, err)
		return
	}

	recommendation, err := self.StrategyService.Select(assessment, thresholds)
	if err != nil {
		self.domainError(w, err)
		return
	}

	self.json(w, apiAssessmentResponse{assessment, recommendation}, http.StatusOK)
}

// apiOutcomeRequest keeps the strategy a pointer so that a body
// omitting the key is told apart from one naming the zero-value
// strategy.
type apiOutcomeRequest struct {
	Strategy   *domain.Strategy `json:"strategy"`
	RiskScore  float64          `json:"risk_score"`
	Succeeded  bool             `json:"succeeded"`
	RolledBack bool             `json:"rolled_back"`
}

func (self *Web) ApiOutcomePost(w http.ResponseWriter, req *http.Request) {
	request := apiOutcomeRequest{}
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		self.ClientError(w, errors.WithMessage(err, "Could not unmarshal request body"))
		return
	}
	if request.Strategy == nil {
		self.ClientError(w, errors.New("strategy is required"))
		return
	}

	outcome := domain.DeploymentOutcome{
		Strategy:   *request.Strategy,
		RiskScore:  request.RiskScore,
		Succeeded:  request.Succeeded,
		RolledBack: request.RolledBack,
	}
	if err := self.OutcomeService.Record(&outcome); err != nil {
		self.domainError(w, err)
		return
	}

	self.json(w, outcome, http.StatusCreated)
}

func (self *Web) ApiOutcomeGet(w http.ResponseWriter, req *http.Request) {
	if page, err := getPage(req); err != nil {
		self.ClientError(w, err)
	} else if outcomes, err := self.OutcomeService.GetAll(page); err != nil {
		self.ServerError(w, errors.WithMessage(err, "Failed to get outcomes"))
	} else {
		self.json(w, struct {
			Outcomes []*domain.DeploymentOutcome `json:"outcomes"`
			Page     *repository.Page            `json:"page"`
		}{outcomes, page}, http.StatusOK)
	}
}

func (self *Web) ApiOutcomeFailureRateGet(w http.ResponseWriter, req *http.Request) {
	window := defaultFailureRateWindow
	if windowStr := req.FormValue("window"); windowStr != "" {
		if parsed, err := strconv.Atoi(windowStr); err != nil {
			self.ClientError(w, errors.WithMessage(err, "window parameter is invalid, should be positive integer"))
			return
		} else {
			window = parsed
		}
	}

	rate, err := self.OutcomeService.FailureRate(window)
	if err != nil {
		self.domainError(w, err)
		return
	}

	self.json(w, map[string]any{
		"window":       window,
		"failure_rate": rate,
	}, http.StatusOK)
}

func (self *Web) ApiStatisticsGet(w http.ResponseWriter, req *http.Request) {
	if stats, err := self.OutcomeService.Statistics(); err != nil {
		self.ServerError(w, errors.WithMessage(err, "Failed to compute statistics"))
	} else {
		self.json(w, stats, http.StatusOK)
	}
}
