package main

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/controllers"
	"go.uber.org/zap"
)

// SetupRestAPI initializes the REST API and starts listening
func SetupRestAPI(accounts gin.Accounts, listenAddress string) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// Healthcheck
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "online")
	})

	var api *gin.RouterGroup
	if len(accounts) > 0 {
		api = router.Group("/api/v1/oee", gin.BasicAuth(accounts))
	} else {
		api = router.Group("/api/v1/oee")
	}
	{
		api.POST("/calculate/:equipmentId", controllers.CalculateOeeHandler)
		api.GET("/calculations/:equipmentId", controllers.GetCalculationsHandler)
		api.GET("/breakdown/:equipmentId", controllers.GetOeeBreakdownHandler)
		api.GET("/trends/:equipmentId", controllers.GetTrendsHandler)
		api.GET("/benchmark/:equipmentId", controllers.GetBenchmarkComparisonHandler)
		api.GET("/target-vs-actual/:equipmentId", controllers.GetTargetVsActualHandler)

		api.GET("/targets", controllers.ListTargetsHandler)
		api.GET("/equipment/:equipmentId/targets", controllers.ListTargetsForEquipmentHandler)
		api.POST("/targets", controllers.CreateTargetHandler)
		api.PUT("/targets/:targetId", controllers.UpdateTargetHandler)
		api.DELETE("/targets/:targetId", controllers.DeleteTargetHandler)
	}

	err := router.Run(listenAddress)
	if err != nil {
		zap.S().Fatalf("Failed to start REST API: %s", err)
	}
}
