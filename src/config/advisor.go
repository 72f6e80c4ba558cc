package config

import (
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// AdvisorConfig configures the optional LLM advisory service. The advisory
// never decides anything itself, its answer only enters the factor set as
// one more bounded value.
type AdvisorConfig struct {
	Url   string
	Token string
	Model string
}

func NewAdvisorConfig() AdvisorConfig {
	conf := AdvisorConfig{
		Url:   GetenvStr("RISKGATE_ADVISOR_URL"),
		Token: GetenvStr("RISKGATE_ADVISOR_TOKEN"),
		Model: GetenvStr("RISKGATE_ADVISOR_MODEL"),
	}
	if conf.Model == "" {
		conf.Model = openai.GPT4
	}
	return conf
}

func (self AdvisorConfig) Enabled() bool {
	return self.Token != "" || self.Url != ""
}

// NewAdvisorClient builds an OpenAI-compatible client on top of a
// retrying HTTP client. The retry policy lives here, at the collaborator
// boundary, not in the decision core.
func NewAdvisorClient(conf AdvisorConfig, logger *zerolog.Logger) *openai.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.HTTPClient.Timeout = 30 * time.Second
	contextualLogger := logger.With().Str("client", "advisor").Logger()
	retryClient.Logger = &SupervisorLogger{Logger: &contextualLogger}

	clientConfig := openai.DefaultConfig(conf.Token)
	if conf.Url != "" {
		clientConfig.BaseURL = conf.Url
	}
	clientConfig.HTTPClient = retryClient.StandardClient()

	return openai.NewClientWithConfig(clientConfig)
}
