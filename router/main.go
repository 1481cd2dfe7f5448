package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/songquanpeng/apitest/common/config"
	"github.com/songquanpeng/apitest/controller"
	"github.com/songquanpeng/apitest/middleware"
)

// SetRouter registers every route of the agent server.
func SetRouter(router *gin.Engine) {
	router.GET("/healthz", controller.GetHealth)

	taskRouter := router.Group("/task")
	taskRouter.Use(middleware.AllowSubnets(config.TaskAllowedSubnets), middleware.TaskPanicRecover())
	{
		taskRouter.POST("", controller.RunTask)
		taskRouter.POST("/", controller.RunTask)
	}

	if config.EnablePrometheusMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
