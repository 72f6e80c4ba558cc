package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/miltonvve/riskgate/src/domain"
)

// AdvisoryFactorWeight is the share of the blended signal the advisory
// gets when it is folded into a factor set.
const AdvisoryFactorWeight = 0.2

// AdvisorService asks an OpenAI-compatible endpoint for a second opinion
// on a factor set. The answer is returned as one more bounded RiskFactor
// and never overrides the deterministic selection policy. Unavailability
// is surfaced as an error so the caller can decide how to proceed.
type AdvisorService interface {
	Consult(ctx context.Context, factors domain.Factors, historicalFailureRate float64) (domain.RiskFactor, error)
}

type advisorService struct {
	logger zerolog.Logger
	client *openai.Client
	model  string
}

func NewAdvisorService(client *openai.Client, model string, logger *zerolog.Logger) AdvisorService {
	return &advisorService{
		logger: logger.With().Str("component", "AdvisorService").Logger(),
		client: client,
		model:  model,
	}
}

type advisoryAnswer struct {
	Risk    float64 `json:"risk"`
	Summary string  `json:"summary"`
}

func (self advisorService) Consult(ctx context.Context, factors domain.Factors, historicalFailureRate float64) (factor domain.RiskFactor, err error) {
	prompt := buildAdvisoryPrompt(factors, historicalFailureRate)

	self.logger.Debug().Str("model", self.model).Msg("Consulting advisory service")
	response, err := self.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       self.model,
		Temperature: 0,
		MaxTokens:   200,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a DevOps engineer estimating deployment risk. Answer with a single JSON object and nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		err = errors.WithMessage(err, "While requesting an advisory assessment")
		return
	}
	if len(response.Choices) == 0 {
		err = errors.New("Advisory response contains no choices")
		return
	}

	answer := advisoryAnswer{}
	if err = json.Unmarshal([]byte(extractJsonObject(response.Choices[0].Message.Content)), &answer); err != nil {
		err = errors.WithMessage(err, "While decoding the advisory answer")
		return
	}
	if answer.Risk < 0 || answer.Risk > 1 {
		err = fmt.Errorf("%w: advisory risk %g must lie in [0, 1]", domain.ErrInvalidInput, answer.Risk)
		return
	}

	self.logger.Info().
		Float64("risk", answer.Risk).
		Str("summary", answer.Summary).
		Msg("Received advisory assessment")

	factor = domain.RiskFactor{
		Name:   domain.FactorAdvisory,
		Value:  answer.Risk,
		Weight: AdvisoryFactorWeight,
	}
	return
}

func buildAdvisoryPrompt(factors domain.Factors, historicalFailureRate float64) string {
	var sb strings.Builder
	sb.WriteString("Estimate the overall deployment risk for a change with these bounded signals (0 = none, 1 = maximal):\n")
	for _, factor := range factors {
		fmt.Fprintf(&sb, "- %s: %.2f\n", factor.Name, factor.Value)
	}
	fmt.Fprintf(&sb, "- historical_failure_rate: %.2f\n", historicalFailureRate)
	sb.WriteString(`Answer as {"risk": <0.0-1.0>, "summary": "<one sentence>"}.`)
	return sb.String()
}

// Models occasionally wrap their answer in prose or a code fence.
// Take the outermost JSON object if one is present.
func extractJsonObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
