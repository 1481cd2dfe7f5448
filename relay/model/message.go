package model

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GeneralOpenAIRequest is the subset of the chat completion request used to draft test plans.
type GeneralOpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type TextResponseChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type TextResponse struct {
	Id      string               `json:"id"`
	Model   string               `json:"model,omitempty"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Choices []TextResponseChoice `json:"choices"`
	Usage   Usage                `json:"usage"`
	Error   *Error               `json:"error,omitempty"`
}

// NewPlanRequest builds the two-message conversation sent for every plan draft.
func NewPlanRequest(model, system, prompt string, maxTokens int, temperature float64) *GeneralOpenAIRequest {
	return &GeneralOpenAIRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
}
