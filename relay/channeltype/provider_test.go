package channeltype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeProvider(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                  OpenAI,
		"OpenAI":            OpenAI,
		"openai-compatible": OpenAI,
		" aws ":             AwsBedrock,
		"Bedrock":           AwsBedrock,
		"none":              None,
		"disabled":          None,
		"something-else":    OpenAI,
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeProvider(in), "input %q", in)
	}
}
