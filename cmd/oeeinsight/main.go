package main

/*
Important principles: stateless as much as possible
*/

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/controllers"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/helpers"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/postgresql"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/scheduler"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/services"
	"github.com/shopfloor-insight/shopfloor-insight/internal"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"go.uber.org/zap"
)

var buildtime string

func main() {
	logLevel, _ := env.GetAsString("LOGGING_LEVEL", false, "PRODUCTION")
	helpers.InitLogging(logLevel)

	zap.S().Infof("This is oeeinsight build date: %s", buildtime)

	// Cache
	redisURI, err := env.GetAsString("REDIS_URI", false, "")
	if err != nil {
		zap.S().Fatalf("Failed to get REDIS_URI from env: %s", err)
	}
	redisPassword, err := env.GetAsString("REDIS_PASSWORD", false, "")
	if err != nil {
		zap.S().Fatalf("Failed to get REDIS_PASSWORD from env: %s", err)
	}
	redisDB, err := env.GetAsInt("REDIS_DB", false, 0)
	if err != nil {
		zap.S().Fatalf("Failed to get REDIS_DB from env: %s", err)
	}
	dryRun, err := env.GetAsBool("DRY_RUN", false, false)
	if err != nil {
		zap.S().Fatalf("Failed to get DRY_RUN from env: %s", err)
	}
	internal.InitCache(redisURI, redisPassword, redisDB, dryRun)
	zap.S().Debugf("Cache initialized")

	// Healthcheck
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	health.AddReadinessCheck("database", postgresql.GetHealthCheck())
	go func() {
		healthErr := http.ListenAndServe("0.0.0.0:8086", health)
		if healthErr != nil {
			zap.S().Errorf("Failed to start healthcheck endpoint: %s", healthErr)
		}
	}()
	zap.S().Debugf("Healthcheck initialized")

	// Prometheus metrics
	metricsPort, err := env.GetAsString("METRICS_PORT", false, "2112")
	if err != nil {
		zap.S().Fatalf("Failed to get METRICS_PORT from env: %s", err)
	}
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsErr := http.ListenAndServe("0.0.0.0:"+metricsPort, metricsMux)
		if metricsErr != nil {
			zap.S().Errorf("Failed to start metrics endpoint: %s", metricsErr)
		}
	}()

	// Database and services
	connection := postgresql.GetOrInit()
	service := services.NewService(connection)
	controllers.Init(service)

	// Scheduled trend batch
	cronSchedule, err := env.GetAsString("TREND_CRON_SCHEDULE", false, "0 0 * * *")
	if err != nil {
		zap.S().Fatalf("Failed to get TREND_CRON_SCHEDULE from env: %s", err)
	}
	batchWorkers, err := env.GetAsInt("TREND_BATCH_WORKERS", false, 4)
	if err != nil {
		zap.S().Fatalf("Failed to get TREND_BATCH_WORKERS from env: %s", err)
	}
	trendScheduler := scheduler.NewTrendScheduler(service, batchWorkers)
	err = trendScheduler.Start(cronSchedule)
	if err != nil {
		zap.S().Fatalf("Failed to start trend scheduler: %s", err)
	}

	// Optional basic auth accounts
	accounts := gin.Accounts{}
	apiUser, _ := env.GetAsString("API_USER", false, "")
	apiPassword, _ := env.GetAsString("API_PASSWORD", false, "")
	if apiUser != "" && apiPassword != "" {
		zap.S().Infof("Added account for %s", apiUser)
		accounts[apiUser] = apiPassword
	}

	listenAddress, err := env.GetAsString("LISTEN_ADDRESS", false, ":80")
	if err != nil {
		zap.S().Fatalf("Failed to get LISTEN_ADDRESS from env: %s", err)
	}

	shutdown := internal.NewGracefulShutdown(func() error {
		trendScheduler.Stop()
		return connection.Shutdown()
	})

	go SetupRestAPI(accounts, listenAddress)
	zap.S().Infof("Ready to serve requests on %s", listenAddress)

	shutdown.Wait()
}
