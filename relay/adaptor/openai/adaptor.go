package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/songquanpeng/apitest/relay/adaptor"
	"github.com/songquanpeng/apitest/relay/meta"
	"github.com/songquanpeng/apitest/relay/model"
)

var _ adaptor.Adaptor = new(Adaptor)

const maxResponseBodySize = 1 << 20 // 1 MiB

// Adaptor drafts plans through an OpenAI-compatible /v1/chat/completions endpoint.
type Adaptor struct {
	Meta   *meta.Meta
	Client *http.Client
}

func (a *Adaptor) Init(meta *meta.Meta) error {
	if meta == nil {
		return errors.New("meta is nil")
	}
	if strings.TrimSpace(meta.BaseURL) == "" {
		return errors.New("openai base url is empty")
	}
	a.Meta = meta
	if a.Client == nil {
		a.Client = &http.Client{}
	}
	return nil
}

func (a *Adaptor) GetChannelName() string {
	return "openai"
}

// Complete sends prompt as the user message and returns the first choice's content.
// Cancellation and deadlines come from ctx.
func (a *Adaptor) Complete(ctx context.Context, prompt string) (string, error) {
	if a.Meta == nil {
		return "", errors.New("adaptor not initialized")
	}

	request := model.NewPlanRequest(a.Meta.Model, a.Meta.SystemPrompt, prompt, a.Meta.MaxTokens, a.Meta.Temperature)
	payload, err := json.Marshal(request)
	if err != nil {
		return "", errors.Wrap(err, "marshal completion request")
	}

	resp, err := adaptor.DoRequestHelper(ctx, a.Client, GetFullRequestURL(a.Meta.BaseURL), payload, func(req *http.Request) {
		if a.Meta.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+a.Meta.APIKey)
		}
	})
	if err != nil {
		return "", errors.Wrap(err, "send completion request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return "", errors.Wrap(err, "read completion response")
	}

	var textResponse model.TextResponse
	if err = json.Unmarshal(body, &textResponse); err != nil {
		if resp.StatusCode/100 != 2 {
			return "", ErrorWrapper(errors.Errorf("status %s: %s", resp.Status, snippet(body)), "bad_response_status_code", resp.StatusCode).ToError()
		}
		return "", errors.Wrap(err, "unmarshal completion response")
	}

	if textResponse.Error != nil && textResponse.Error.Message != "" {
		return "", ErrorWrapper(errors.New(textResponse.Error.Message), fmt.Sprint(textResponse.Error.Code), resp.StatusCode).ToError()
	}
	if resp.StatusCode/100 != 2 {
		return "", ErrorWrapper(errors.Errorf("status %s", resp.Status), "bad_response_status_code", resp.StatusCode).ToError()
	}
	if len(textResponse.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	return textResponse.Choices[0].Message.Content, nil
}

func snippet(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
