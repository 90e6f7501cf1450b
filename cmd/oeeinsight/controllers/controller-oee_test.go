package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/helpers"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/services"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"github.com/stretchr/testify/assert"
)

// handlerStore implements just enough of services.Store for the handler
// tests. The embedded interface panics on anything else.
type handlerStore struct {
	services.Store

	equipment map[uint32]datamodel.Equipment
	saved     []datamodel.OeeCalculation
}

func (h *handlerStore) GetEquipment(_ context.Context, equipmentID uint32) (datamodel.Equipment, error) {
	equipment, ok := h.equipment[equipmentID]
	if !ok {
		return datamodel.Equipment{}, datamodel.ErrEquipmentNotFound
	}
	return equipment, nil
}

func (h *handlerStore) GetDowntimeEvents(context.Context, uint32, time.Time, time.Time) ([]datamodel.DowntimeEvent, error) {
	return nil, nil
}

func (h *handlerStore) GetProductionOrders(context.Context, uint32, time.Time, time.Time) ([]datamodel.ProductionOrder, error) {
	return nil, nil
}

func (h *handlerStore) GetQualityChecks(context.Context, uint32, time.Time, time.Time) ([]datamodel.QualityCheck, error) {
	return nil, nil
}

func (h *handlerStore) GetActiveTarget(context.Context, uint32, time.Time) (datamodel.OeeTarget, error) {
	return datamodel.OeeTarget{}, datamodel.ErrTargetNotFound
}

func (h *handlerStore) SaveCalculation(_ context.Context, calculation *datamodel.OeeCalculation) error {
	calculation.ID = uint32(len(h.saved) + 1)
	h.saved = append(h.saved, *calculation)
	return nil
}

func setupTestRouter(t *testing.T, store services.Store) *gin.Engine {
	t.Helper()
	helpers.InitTestLogging()
	Init(services.NewService(store))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/oee/calculate/:equipmentId", CalculateOeeHandler)
	return router
}

func TestCalculateOeeHandler(t *testing.T) {
	store := &handlerStore{
		equipment: map[uint32]datamodel.Equipment{1: {ID: 1, Name: "CNC-01"}},
	}
	router := setupTestRouter(t, store)

	t.Run("ok", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(
			http.MethodPost,
			"/api/v1/oee/calculate/1?start=2026-08-01T08:00:00Z&end=2026-08-01T16:00:00Z",
			nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		var calculation datamodel.OeeCalculation
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &calculation))
		assert.Equal(t, 480.0, calculation.PlannedProductionTime)
		assert.Equal(t, 100.0, calculation.AvailabilityPercentage)
		assert.Len(t, store.saved, 1)
	})

	t.Run("non numeric id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(
			http.MethodPost,
			"/api/v1/oee/calculate/abc?start=2026-08-01T08:00:00Z&end=2026-08-01T16:00:00Z",
			nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("missing window", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/v1/oee/calculate/1", nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("inverted window", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(
			http.MethodPost,
			"/api/v1/oee/calculate/1?start=2026-08-01T16:00:00Z&end=2026-08-01T08:00:00Z",
			nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown equipment", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(
			http.MethodPost,
			"/api/v1/oee/calculate/99?start=2026-08-01T08:00:00Z&end=2026-08-01T16:00:00Z",
			nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
