package aws

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/songquanpeng/apitest/relay/adaptor"
	"github.com/songquanpeng/apitest/relay/meta"
)

var _ adaptor.Adaptor = new(Adaptor)

// converseClient is the part of *bedrockruntime.Client the adaptor calls.
type converseClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Adaptor drafts plans through the Bedrock Converse API.
type Adaptor struct {
	Config    aws.Config
	Meta      *meta.Meta
	AwsClient converseClient
}

func (a *Adaptor) Init(meta *meta.Meta) error {
	if meta == nil {
		return errors.New("meta is nil")
	}
	a.Meta = meta
	if a.AwsClient != nil {
		return nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(meta.Region)}
	if meta.AK != "" && meta.SK != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(meta.AK, meta.SK, "")))
	}

	defaultConfig, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return errors.Wrap(err, "load aws config")
	}
	a.Config = defaultConfig
	a.AwsClient = bedrockruntime.NewFromConfig(defaultConfig)
	return nil
}

func (a *Adaptor) GetChannelName() string {
	return "aws"
}

func (a *Adaptor) Complete(ctx context.Context, prompt string) (string, error) {
	if a.Meta == nil || a.AwsClient == nil {
		return "", errors.New("adaptor not initialized")
	}

	awsResp, err := a.AwsClient.Converse(ctx, convertRequest(a.Meta, prompt))
	if err != nil {
		return "", errors.Wrap(err, "Converse")
	}

	text := extractText(awsResp)
	if text == "" {
		return "", errors.New("converse response has no text content")
	}
	return text, nil
}

func convertRequest(m *meta.Meta, prompt string) *bedrockruntime.ConverseInput {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(m.Model),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(float32(m.Temperature)),
		},
	}
	if m.MaxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(int32(m.MaxTokens))
	}
	if m.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: m.SystemPrompt},
		}
	}
	return input
}

func extractText(resp *bedrockruntime.ConverseOutput) string {
	if resp == nil {
		return ""
	}
	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	return sb.String()
}
