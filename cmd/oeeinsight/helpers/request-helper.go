package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfloor-insight/shopfloor-insight/internal"
	"go.uber.org/zap"
)

func HandleInternalServerError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInternalServerError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}

	erx := internal.SanitizeString(err.Error())
	zap.S().Errorw(
		"Internal server error",
		"error", erx,
	)

	c.JSON(
		http.StatusInternalServerError,
		gin.H{
			"error":   erx,
			"status":  http.StatusInternalServerError,
			"message": "The server had an internal error.",
		})
}

func HandleInvalidInputError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInvalidInputError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}
	erx := internal.SanitizeString(err.Error())
	zap.S().Errorw(
		"Invalid input error",
		"error", erx,
	)

	c.JSON(
		http.StatusBadRequest,
		gin.H{
			"error":   erx,
			"status":  http.StatusBadRequest,
			"message": "You have provided a wrong input. Please check your parameters.",
		})
}

func HandleNotFoundError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleNotFoundError: c is nil")
	}
	if err == nil {
		err = errors.New("not found")
	}
	erx := internal.SanitizeString(err.Error())
	zap.S().Infow(
		"Resource not found",
		"error", erx,
		"route", c.FullPath(),
	)

	c.JSON(
		http.StatusNotFound,
		gin.H{
			"error":   erx,
			"status":  http.StatusNotFound,
			"message": "The requested resource was not found.",
		})
}
