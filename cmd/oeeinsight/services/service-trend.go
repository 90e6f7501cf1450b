package services

import (
	"context"
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"go.uber.org/zap"
)

// CalculateTrend aggregates the equipment's calculations inside the window
// into one trend record and persists it. computed is false when the window
// holds no calculations; nothing is stored then.
func (s *Service) CalculateTrend(
	ctx context.Context,
	equipmentID uint32,
	trendPeriod string,
	periodStart, periodEnd time.Time) (trend datamodel.OeeTrend, computed bool, err error) {
	if !periodEnd.After(periodStart) {
		return datamodel.OeeTrend{}, false, ErrInvalidWindow
	}
	if _, err = s.store.GetEquipment(ctx, equipmentID); err != nil {
		return datamodel.OeeTrend{}, false, err
	}

	calculations, err := s.store.GetCalculationHistory(ctx, equipmentID, periodStart, periodEnd)
	if err != nil {
		return datamodel.OeeTrend{}, false, err
	}
	if len(calculations) == 0 {
		zap.S().Debugf("[CalculateTrend] no calculations for equipment %d in window, skipping", equipmentID)
		return datamodel.OeeTrend{}, false, nil
	}

	var sumOee, sumAvailability, sumPerformance, sumQuality float64
	var totalProductionTime, totalDowntime float64
	var totalPieces, totalGoodPieces int
	minOee := calculations[0].OeePercentage
	maxOee := calculations[0].OeePercentage
	for _, calculation := range calculations {
		sumOee += calculation.OeePercentage
		sumAvailability += calculation.AvailabilityPercentage
		sumPerformance += calculation.PerformancePercentage
		sumQuality += calculation.QualityPercentage
		totalProductionTime += calculation.PlannedProductionTime
		totalDowntime += calculation.Downtime
		totalPieces += calculation.TotalPiecesProduced
		totalGoodPieces += calculation.GoodPieces
		if calculation.OeePercentage < minOee {
			minOee = calculation.OeePercentage
		}
		if calculation.OeePercentage > maxOee {
			maxOee = calculation.OeePercentage
		}
	}
	count := float64(len(calculations))

	trend = datamodel.OeeTrend{
		EquipmentID:         equipmentID,
		TrendPeriod:         trendPeriod,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		AvgOee:              Round2(sumOee / count),
		AvgAvailability:     Round2(sumAvailability / count),
		AvgPerformance:      Round2(sumPerformance / count),
		AvgQuality:          Round2(sumQuality / count),
		MinOee:              minOee,
		MaxOee:              maxOee,
		TotalProductionTime: totalProductionTime,
		TotalDowntime:       totalDowntime,
		TotalPiecesProduced: totalPieces,
		TotalGoodPieces:     totalGoodPieces,
		TrendDirection:      DetermineTrendDirection(calculations),
		TrendPercentage:     CalculateTrendPercentage(calculations),
	}

	err = s.store.SaveTrend(ctx, &trend)
	if err != nil {
		return datamodel.OeeTrend{}, false, err
	}
	return trend, true, nil
}

// GetTrends returns the stored trend records for the equipment, period label
// and window, newest first.
func (s *Service) GetTrends(
	ctx context.Context,
	equipmentID uint32,
	trendPeriod string,
	start, end time.Time) ([]datamodel.OeeTrend, error) {
	if _, err := s.store.GetEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.store.GetTrends(ctx, equipmentID, trendPeriod, start, end)
}

// ListEquipment exposes the equipment master data, mainly for the scheduled
// trend batch.
func (s *Service) ListEquipment(ctx context.Context) ([]datamodel.Equipment, error) {
	return s.store.ListEquipment(ctx)
}
