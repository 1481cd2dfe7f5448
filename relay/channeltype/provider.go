package channeltype

import "strings"

const (
	// OpenAI is any upstream speaking the OpenAI chat completion protocol.
	OpenAI = "openai"
	// AwsBedrock drafts plans through the Bedrock Converse API.
	AwsBedrock = "aws"
	// None disables plan drafting; every prompt goes straight to the fallback parser.
	None = "none"
)

// NormalizeProvider trims and normalizes a configured provider name. Unknown or empty
// values default to OpenAI.
func NormalizeProvider(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "aws", "bedrock", "aws_bedrock", "aws-bedrock":
		return AwsBedrock
	case "none", "off", "disabled", "fallback":
		return None
	case "openai", "openai_compatible", "openai-compatible", "":
		return OpenAI
	default:
		return OpenAI
	}
}
