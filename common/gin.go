package common

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

const KeyRequestBody = "key_request_body"

// GetRequestBody reads the request body once and caches it on the context so later
// readers (handlers, panic logging) see the same bytes.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	if cached, ok := c.Get(KeyRequestBody); ok {
		if body, ok := cached.([]byte); ok {
			return body, nil
		}
	}
	if c.Request == nil || c.Request.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}
	_ = c.Request.Body.Close()
	c.Set(KeyRequestBody, body)
	return body, nil
}

// UnmarshalBodyReusable decodes the JSON body into v and restores the body for
// later readers.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	body, err := GetRequestBody(c)
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if err = json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "unmarshal request body")
	}
	return nil
}
