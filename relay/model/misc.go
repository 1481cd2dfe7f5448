package model

import "github.com/Laisky/errors/v2"

// Usage is the token usage information returned by OpenAI API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    any    `json:"code"`
}

type ErrorWithStatusCode struct {
	Error
	StatusCode int `json:"status_code"`
}

// ToError flattens the upstream error into a plain error value.
func (e *ErrorWithStatusCode) ToError() error {
	if e == nil {
		return nil
	}
	return errors.Errorf("upstream error (status %d): %s", e.StatusCode, e.Message)
}
