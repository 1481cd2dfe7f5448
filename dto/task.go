package dto

import (
	"strings"

	"github.com/Laisky/errors/v2"
)

// TaskTypeAPI is the only task type served here. Browser, file and database tasks
// are handled by other agents.
const TaskTypeAPI = "api"

// TaskRequest is the body of POST /task. Either Prompt, or Method plus URL, must be set.
type TaskRequest struct {
	Type   string `json:"type" binding:"required"`
	Prompt string `json:"prompt,omitempty"`
	Method string `json:"method,omitempty"`
	URL    string `json:"url,omitempty"`
}

// TaskPrompt returns the free-text prompt for the task. A request that only carries a
// method and URL becomes "<METHOD> <url>".
func (r *TaskRequest) TaskPrompt() (string, error) {
	if p := strings.TrimSpace(r.Prompt); p != "" {
		return p, nil
	}

	url := strings.TrimSpace(r.URL)
	if url == "" {
		return "", errors.New("either prompt or url is required")
	}
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		method = "GET"
	}
	return method + " " + url, nil
}

// TaskResponse is returned for every accepted task. Result holds the report text or a
// single failure line.
type TaskResponse struct {
	Type      string `json:"type"`
	Result    string `json:"result"`
	RequestId string `json:"request_id,omitempty"`
}
