package middleware

import (
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/common/helper"
)

// RequestId tags every request with an id, echoed back in the response header and
// attached to the request-scoped logger.
func RequestId() func(c *gin.Context) {
	return func(c *gin.Context) {
		id := c.GetHeader(helper.RequestIdKey)
		if id == "" {
			id = helper.GenRequestID()
		}
		c.Set(helper.RequestIdKey, id)
		c.Header(helper.RequestIdKey, id)
		gmw.SetLogger(c, gmw.GetLogger(c).With(zap.String("request_id", id)))
		c.Next()
	}
}
