package middleware

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/common/network"
)

// AllowSubnets only lets clients from subnets (comma separated CIDRs) through. An
// empty list allows everyone.
func AllowSubnets(subnets string) gin.HandlerFunc {
	nets, err := network.ParseSubnets(subnets)
	if err != nil {
		logger.Logger.Fatal("invalid TASK_ALLOWED_SUBNETS: " + err.Error())
	}

	return func(c *gin.Context) {
		if len(nets) == 0 || network.IsIpInSubnets(c.ClientIP(), nets) {
			c.Next()
			return
		}
		AbortWithError(c, http.StatusForbidden, errors.Errorf("client ip %s is not allowed to submit tasks", c.ClientIP()))
	}
}
