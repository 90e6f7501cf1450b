package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTrend(t *testing.T) {
	periodStart := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 0, 1)

	t.Run("aggregates the window", func(t *testing.T) {
		store := newFakeStore()
		store.addEquipment(datamodel.Equipment{ID: 1})
		store.calculations = []datamodel.OeeCalculation{
			{
				EquipmentID:            1,
				CalculationPeriodStart: periodStart,
				OeePercentage:          70,
				AvailabilityPercentage: 90,
				PerformancePercentage:  80,
				QualityPercentage:      97,
				PlannedProductionTime:  480,
				Downtime:               30,
				TotalPiecesProduced:    350,
				GoodPieces:             340,
			},
			{
				EquipmentID:            1,
				CalculationPeriodStart: periodStart.Add(8 * time.Hour),
				OeePercentage:          76,
				AvailabilityPercentage: 94,
				PerformancePercentage:  84,
				QualityPercentage:      99,
				PlannedProductionTime:  480,
				Downtime:               10,
				TotalPiecesProduced:    400,
				GoodPieces:             396,
			},
		}
		service := newTestService(store)

		trend, computed, err := service.CalculateTrend(context.Background(), 1, datamodel.TrendPeriodDaily, periodStart, periodEnd)
		assert.NoError(t, err)
		assert.True(t, computed)
		assert.Equal(t, 73.0, trend.AvgOee)
		assert.Equal(t, 92.0, trend.AvgAvailability)
		assert.Equal(t, 82.0, trend.AvgPerformance)
		assert.Equal(t, 98.0, trend.AvgQuality)
		assert.Equal(t, 70.0, trend.MinOee)
		assert.Equal(t, 76.0, trend.MaxOee)
		assert.Equal(t, 960.0, trend.TotalProductionTime)
		assert.Equal(t, 40.0, trend.TotalDowntime)
		assert.Equal(t, 750, trend.TotalPiecesProduced)
		assert.Equal(t, 736, trend.TotalGoodPieces)
		assert.Equal(t, datamodel.TrendImproving, trend.TrendDirection)
		// (76 - 70) / 70 * 100
		assert.Equal(t, 8.57, trend.TrendPercentage)
		assert.Equal(t, datamodel.TrendPeriodDaily, trend.TrendPeriod)
		assert.NotZero(t, trend.ID)
		assert.Len(t, store.trends, 1)
	})

	t.Run("empty window stores nothing", func(t *testing.T) {
		store := newFakeStore()
		store.addEquipment(datamodel.Equipment{ID: 1})
		service := newTestService(store)

		_, computed, err := service.CalculateTrend(context.Background(), 1, datamodel.TrendPeriodDaily, periodStart, periodEnd)
		assert.NoError(t, err)
		assert.False(t, computed)
		assert.Empty(t, store.trends)
	})

	t.Run("single calculation is stable", func(t *testing.T) {
		store := newFakeStore()
		store.addEquipment(datamodel.Equipment{ID: 1})
		store.calculations = []datamodel.OeeCalculation{
			{EquipmentID: 1, CalculationPeriodStart: periodStart, OeePercentage: 70},
		}
		service := newTestService(store)

		trend, computed, err := service.CalculateTrend(context.Background(), 1, datamodel.TrendPeriodDaily, periodStart, periodEnd)
		assert.NoError(t, err)
		assert.True(t, computed)
		assert.Equal(t, datamodel.TrendStable, trend.TrendDirection)
		assert.Equal(t, 0.0, trend.TrendPercentage)
		assert.Equal(t, 70.0, trend.MinOee)
		assert.Equal(t, 70.0, trend.MaxOee)
	})

	t.Run("unknown equipment", func(t *testing.T) {
		service := newTestService(newFakeStore())

		_, _, err := service.CalculateTrend(context.Background(), 9, datamodel.TrendPeriodDaily, periodStart, periodEnd)
		assert.ErrorIs(t, err, datamodel.ErrEquipmentNotFound)
	})

	t.Run("invalid window", func(t *testing.T) {
		store := newFakeStore()
		store.addEquipment(datamodel.Equipment{ID: 1})
		service := newTestService(store)

		_, _, err := service.CalculateTrend(context.Background(), 1, datamodel.TrendPeriodDaily, periodEnd, periodStart)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestGetTrends(t *testing.T) {
	store := newFakeStore()
	store.addEquipment(datamodel.Equipment{ID: 1})
	dayOne := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	dayTwo := dayOne.AddDate(0, 0, 1)
	store.trends = []datamodel.OeeTrend{
		{EquipmentID: 1, TrendPeriod: datamodel.TrendPeriodDaily, PeriodStart: dayOne, AvgOee: 70},
		{EquipmentID: 1, TrendPeriod: datamodel.TrendPeriodDaily, PeriodStart: dayTwo, AvgOee: 75},
		{EquipmentID: 1, TrendPeriod: datamodel.TrendPeriodWeekly, PeriodStart: dayOne, AvgOee: 71},
	}
	service := newTestService(store)

	trends, err := service.GetTrends(context.Background(), 1, datamodel.TrendPeriodDaily, dayOne, dayTwo.AddDate(0, 0, 1))
	assert.NoError(t, err)
	if assert.Len(t, trends, 2) {
		// newest first
		assert.Equal(t, 75.0, trends[0].AvgOee)
	}

	_, err = service.GetTrends(context.Background(), 42, datamodel.TrendPeriodDaily, dayOne, dayTwo)
	assert.ErrorIs(t, err, datamodel.ErrEquipmentNotFound)
}
