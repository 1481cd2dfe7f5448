package meta

import (
	"github.com/songquanpeng/apitest/common/config"
	"github.com/songquanpeng/apitest/relay/channeltype"
)

// Meta carries everything a completion backend needs to draft one plan.
type Meta struct {
	Provider string
	// BaseURL is the root of an OpenAI-compatible service, without the /v1 suffix
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64

	// Region, AK and SK are only used by the Bedrock backend. Empty keys mean the
	// default AWS credential chain.
	Region string
	AK     string
	SK     string
}

// FromConfig builds a Meta for provider using the process configuration. An empty
// provider falls back to LLM_PROVIDER.
func FromConfig(provider string) *Meta {
	if provider == "" {
		provider = config.LLMProvider
	}
	m := &Meta{
		Provider:     channeltype.NormalizeProvider(provider),
		BaseURL:      config.OpenAIAPIBase,
		APIKey:       config.OpenAIAPIKey,
		Model:        config.LLMModel,
		SystemPrompt: config.SystemPrompt,
		MaxTokens:    config.LLMMaxTokens,
		Temperature:  config.LLMTemperature,
		Region:       config.AWSRegion,
		AK:           config.AWSAccessKeyID,
		SK:           config.AWSSecretAccessKey,
	}
	if m.Provider == channeltype.AwsBedrock {
		m.Model = config.BedrockModelID
	}
	return m
}
