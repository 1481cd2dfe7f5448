package helper

import (
	"fmt"

	"github.com/songquanpeng/apitest/common/ctxkey"
	"github.com/songquanpeng/apitest/common/random"
)

// RequestIdKey is both the gin context key and the response header carrying the request id.
const RequestIdKey = ctxkey.RequestId

// GenRequestID returns a compact unique id for an inbound task request.
func GenRequestID() string {
	return random.GetUUID()
}

// MessageWithRequestId appends the request id to a user facing error message.
func MessageWithRequestId(message string, id string) string {
	if id == "" {
		return message
	}
	return fmt.Sprintf("%s (request id: %s)", message, id)
}
