package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rung/go-safecast"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/services"
)

var svc *services.Service

// Init wires the shared service instance into the handlers. Must run before
// the router starts serving.
func Init(service *services.Service) {
	svc = service
}

// parseID converts a numeric path parameter into an id, rejecting values
// that do not fit or are not positive.
func parseID(c *gin.Context, name string) (uint32, error) {
	raw := c.Param(name)
	id, err := safecast.Atoi32(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return uint32(id), nil
}

// parseTimeQuery reads a required timestamp query parameter. RFC3339 is
// canonical; a timestamp without offset is taken as UTC.
func parseTimeQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, errors.New("missing required query parameter " + name)
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return parsed, nil
	}
	parsed, err = time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return parsed.UTC(), nil
}

// parseWindow reads the start/end query parameters of a calculation window
func parseWindow(c *gin.Context) (start, end time.Time, err error) {
	start, err = parseTimeQuery(c, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = parseTimeQuery(c, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
