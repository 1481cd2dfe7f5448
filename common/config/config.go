package config

import (
	"strings"
	"time"

	"github.com/songquanpeng/apitest/common/env"
)

var (
	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))
	// ShutdownTimeout bounds the graceful drain of in-flight tasks on SIGTERM.
	ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", 30*time.Second)

	// TaskAllowedSubnets restricts POST /task to clients from these comma separated CIDRs.
	// Empty allows every client.
	TaskAllowedSubnets = strings.TrimSpace(env.String("TASK_ALLOWED_SUBNETS", ""))

	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", false)
)

var (
	// LLMProvider selects the completion backend used to draft test plans: openai, aws or none.
	LLMProvider = strings.ToLower(strings.TrimSpace(env.String("LLM_PROVIDER", "openai")))
	// OpenAIAPIBase is the base URL of an OpenAI-compatible chat completion service.
	OpenAIAPIBase = strings.TrimSpace(env.String("OPENAI_API_BASE", "https://api.openai.com"))
	// OpenAIAPIKey authenticates chat completion requests.
	OpenAIAPIKey = strings.TrimSpace(env.String("OPENAI_API_KEY", ""))
	// LLMModel names the model used for plan drafting.
	LLMModel = strings.TrimSpace(env.String("LLM_MODEL", "gpt-4o-mini"))
	// LLMMaxTokens caps the completion length of a plan draft.
	LLMMaxTokens = env.Int("LLM_MAX_TOKENS", 500)
	// LLMTemperature is the sampling temperature of a plan draft.
	LLMTemperature = env.Float64("LLM_TEMPERATURE", 0.7)
	// LLMTimeout bounds one completion call; on expiry the planner falls back to prompt parsing.
	LLMTimeout = env.Duration("LLM_TIMEOUT", 60*time.Second)

	// AWSRegion is the Bedrock region used when LLM_PROVIDER=aws.
	AWSRegion = strings.TrimSpace(env.String("AWS_REGION", "us-east-1"))
	// AWSAccessKeyID and AWSSecretAccessKey are optional static credentials; when empty the
	// default AWS credential chain is used.
	AWSAccessKeyID     = strings.TrimSpace(env.String("AWS_ACCESS_KEY_ID", ""))
	AWSSecretAccessKey = strings.TrimSpace(env.String("AWS_SECRET_ACCESS_KEY", ""))
	// BedrockModelID is the Converse model id used when LLM_PROVIDER=aws.
	BedrockModelID = strings.TrimSpace(env.String("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"))
)

var (
	// Concurrency bounds how many endpoints of one plan are in flight at once. 1 keeps the
	// sequential behaviour.
	Concurrency = func() int {
		v := env.Int("APITEST_CONCURRENCY", 1)
		if v < 1 {
			return 1
		}
		return v
	}()
)

// SystemPrompt is the system message sent along with every plan-drafting request.
const SystemPrompt = "You are a helpful AI assistant. Provide concise and accurate responses."
