package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/common"
	"github.com/songquanpeng/apitest/common/graceful"
)

// GetHealth reports liveness. A draining server answers 503.
func GetHealth(c *gin.Context) {
	status := http.StatusOK
	if graceful.IsDraining() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success": status == http.StatusOK,
		"data": gin.H{
			"version":    common.Version,
			"start_time": common.StartTime,
			"in_flight":  graceful.InFlight(),
		},
	})
}
