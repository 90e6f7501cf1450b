package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/helpers"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/services"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

// CalculateOeeHandler computes and stores one OEE record for the equipment
// over the requested window.
func CalculateOeeHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	start, end, err := parseWindow(c)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	calculation, err := svc.CalculateRealTimeOee(c.Request.Context(), equipmentID, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, calculation)
}

// GetCalculationsHandler returns the stored calculation history, newest first
func GetCalculationsHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	calculations, err := svc.GetCalculations(c.Request.Context(), equipmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if calculations == nil {
		calculations = []datamodel.OeeCalculation{}
	}
	c.JSON(http.StatusOK, calculations)
}

// GetOeeBreakdownHandler returns the averaged component view over the window
func GetOeeBreakdownHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	start, end, err := parseWindow(c)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	breakdown, err := svc.GetOeeBreakdown(c.Request.Context(), equipmentID, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// GetTrendsHandler returns the stored trend records for the window
func GetTrendsHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	period := c.Query("period")
	switch period {
	case datamodel.TrendPeriodDaily, datamodel.TrendPeriodWeekly, datamodel.TrendPeriodMonthly:
	default:
		helpers.HandleInvalidInputError(c, errors.New("period must be DAILY, WEEKLY or MONTHLY"))
		return
	}
	start, end, err := parseWindow(c)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	trends, err := svc.GetTrends(c.Request.Context(), equipmentID, period, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if trends == nil {
		trends = []datamodel.OeeTrend{}
	}
	c.JSON(http.StatusOK, trends)
}

// GetBenchmarkComparisonHandler returns the latest calculation next to the
// active target
func GetBenchmarkComparisonHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	comparison, err := svc.GetBenchmarkComparison(c.Request.Context(), equipmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// GetTargetVsActualHandler returns the calculations of the window projected
// onto the target timeline
func GetTargetVsActualHandler(c *gin.Context) {
	equipmentID, err := parseID(c, "equipmentId")
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	start, end, err := parseWindow(c)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}

	result, err := svc.GetTargetVsActual(c.Request.Context(), equipmentID, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, datamodel.ErrEquipmentNotFound), errors.Is(err, datamodel.ErrTargetNotFound):
		helpers.HandleNotFoundError(c, err)
	case errors.Is(err, services.ErrInvalidWindow), errors.Is(err, services.ErrInvalidTarget):
		helpers.HandleInvalidInputError(c, err)
	default:
		helpers.HandleInternalServerError(c, err)
	}
}
