package openai

import (
	"strings"

	"github.com/songquanpeng/apitest/relay/model"
)

// ErrorWrapper tags err with an upstream status code.
func ErrorWrapper(err error, code string, statusCode int) *model.ErrorWithStatusCode {
	return &model.ErrorWithStatusCode{
		Error: model.Error{
			Message: err.Error(),
			Type:    "apitest_error",
			Code:    code,
		},
		StatusCode: statusCode,
	}
}

// GetFullRequestURL joins the configured base with the chat completion path, avoiding a
// duplicated /v1 segment when the base already ends with it.
func GetFullRequestURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}
