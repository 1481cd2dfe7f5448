package meta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/songquanpeng/apitest/common/config"
	"github.com/songquanpeng/apitest/relay/channeltype"
)

func TestFromConfig(t *testing.T) {
	m := FromConfig("openai")
	require.Equal(t, channeltype.OpenAI, m.Provider)
	require.Equal(t, config.LLMModel, m.Model)
	require.Equal(t, config.SystemPrompt, m.SystemPrompt)

	m = FromConfig("bedrock")
	require.Equal(t, channeltype.AwsBedrock, m.Provider)
	require.Equal(t, config.BedrockModelID, m.Model)
	require.Equal(t, config.AWSRegion, m.Region)
}
