package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/metrics"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/models"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"go.uber.org/zap"
)

// CalculateRealTimeOee computes and persists one OEE record for the
// equipment over [start, end]. The three fact sets are fetched in parallel.
func (s *Service) CalculateRealTimeOee(
	ctx context.Context,
	equipmentID uint32,
	start, end time.Time) (calculation datamodel.OeeCalculation, err error) {
	return s.calculateOee(ctx, equipmentID, start, end, datamodel.CalculationTypeRealTime)
}

func (s *Service) calculateOee(
	ctx context.Context,
	equipmentID uint32,
	start, end time.Time,
	calculationType string) (calculation datamodel.OeeCalculation, err error) {
	if !end.After(start) {
		return datamodel.OeeCalculation{}, ErrInvalidWindow
	}

	equipment, err := s.store.GetEquipment(ctx, equipmentID)
	if err != nil {
		return datamodel.OeeCalculation{}, err
	}

	downtimeChannel := make(chan datamodel.ChannelResult, 1)
	ordersChannel := make(chan datamodel.ChannelResult, 1)
	checksChannel := make(chan datamodel.ChannelResult, 1)

	go func() {
		events, fetchErr := s.store.GetDowntimeEvents(ctx, equipmentID, start, end)
		downtimeChannel <- datamodel.ChannelResult{Err: fetchErr, ReturnValue: events}
	}()
	go func() {
		orders, fetchErr := s.store.GetProductionOrders(ctx, equipmentID, start, end)
		ordersChannel <- datamodel.ChannelResult{Err: fetchErr, ReturnValue: orders}
	}()
	go func() {
		checks, fetchErr := s.store.GetQualityChecks(ctx, equipmentID, start, end)
		checksChannel <- datamodel.ChannelResult{Err: fetchErr, ReturnValue: checks}
	}()

	downtimeResult := <-downtimeChannel
	ordersResult := <-ordersChannel
	checksResult := <-checksChannel
	if downtimeResult.Err != nil {
		return datamodel.OeeCalculation{}, downtimeResult.Err
	}
	if ordersResult.Err != nil {
		return datamodel.OeeCalculation{}, ordersResult.Err
	}
	if checksResult.Err != nil {
		return datamodel.OeeCalculation{}, checksResult.Err
	}
	downtimeEvents := downtimeResult.ReturnValue.([]datamodel.DowntimeEvent)
	orders := ordersResult.ReturnValue.([]datamodel.ProductionOrder)
	qualityChecks := checksResult.ReturnValue.([]datamodel.QualityCheck)

	plannedMinutes := minutesBetween(start, end)
	downtimeMinutes := CalculateDowntime(downtimeEvents, end)
	operatingMinutes := plannedMinutes - downtimeMinutes
	if operatingMinutes < 0 {
		operatingMinutes = 0
	}
	availability := CalculateAvailability(operatingMinutes, plannedMinutes)

	var totalProduced int
	for _, order := range orders {
		totalProduced += order.ProducedQuantity
	}

	idealCycleTime := datamodel.DefaultIdealCycleTime
	if equipment.IdealCycleTime != nil {
		idealCycleTime = *equipment.IdealCycleTime
	}
	idealQuantity := CalculateIdealQuantity(operatingMinutes, idealCycleTime)
	performance := CalculatePerformance(totalProduced, idealQuantity)

	goodPieces, rejectedPieces := CountPieces(qualityChecks, totalProduced)
	quality := CalculateQuality(goodPieces, totalProduced)

	oee := CalculateOee(availability, performance, quality)

	calculation = datamodel.OeeCalculation{
		EquipmentID:             equipmentID,
		CalculationPeriodStart:  start,
		CalculationPeriodEnd:    end,
		PlannedProductionTime:   plannedMinutes,
		Downtime:                downtimeMinutes,
		OperatingTime:           operatingMinutes,
		AvailabilityPercentage:  availability,
		IdealCycleTime:          idealCycleTime,
		TotalPiecesProduced:     totalProduced,
		IdealProductionQuantity: idealQuantity,
		PerformancePercentage:   performance,
		GoodPieces:              goodPieces,
		RejectedPieces:          rejectedPieces,
		QualityPercentage:       quality,
		OeePercentage:           oee,
		CalculationType:         calculationType,
	}

	target, err := s.store.GetActiveTarget(ctx, equipmentID, s.now())
	if err != nil {
		if !errors.Is(err, datamodel.ErrTargetNotFound) {
			return datamodel.OeeCalculation{}, err
		}
	} else {
		targetOee := target.TargetOee
		variance := Round2(oee - targetOee)
		calculation.TargetOeePercentage = &targetOee
		calculation.VarianceFromTarget = &variance
	}

	err = s.store.SaveCalculation(ctx, &calculation)
	if err != nil {
		return datamodel.OeeCalculation{}, err
	}

	metrics.CalculationsTotal.WithLabelValues(calculationType).Inc()
	zap.S().Infof(
		"[CalculateOee] equipment %d window %s - %s oee %.2f",
		equipmentID, start.Format(time.RFC3339), end.Format(time.RFC3339), oee)
	return calculation, nil
}

// GetOeeBreakdown averages the calculation components over the window. If no
// calculation exists yet, one is computed on demand so the caller always gets
// a populated breakdown.
func (s *Service) GetOeeBreakdown(
	ctx context.Context,
	equipmentID uint32,
	start, end time.Time) (breakdown models.OeeBreakdown, err error) {
	calculations, err := s.store.GetCalculationHistory(ctx, equipmentID, start, end)
	if err != nil {
		return models.OeeBreakdown{}, err
	}
	if len(calculations) == 0 {
		var calculation datamodel.OeeCalculation
		calculation, err = s.calculateOee(ctx, equipmentID, start, end, datamodel.CalculationTypeRealTime)
		if err != nil {
			return models.OeeBreakdown{}, err
		}
		calculations = []datamodel.OeeCalculation{calculation}
	}

	var sumOee, sumAvailability, sumPerformance, sumQuality float64
	for _, calculation := range calculations {
		sumOee += calculation.OeePercentage
		sumAvailability += calculation.AvailabilityPercentage
		sumPerformance += calculation.PerformancePercentage
		sumQuality += calculation.QualityPercentage
	}
	count := float64(len(calculations))

	return models.OeeBreakdown{
		Oee:          Round2(sumOee / count),
		Availability: Round2(sumAvailability / count),
		Performance:  Round2(sumPerformance / count),
		Quality:      Round2(sumQuality / count),
		Calculations: calculations,
		Period:       models.Period{Start: start, End: end},
	}, nil
}

// GetBenchmarkComparison puts the latest calculation next to the active
// target. A side without data stays unset instead of reporting zeros.
func (s *Service) GetBenchmarkComparison(ctx context.Context, equipmentID uint32) (comparison models.BenchmarkComparison, err error) {
	latest, found, err := s.store.GetLatestCalculation(ctx, equipmentID)
	if err != nil {
		return models.BenchmarkComparison{}, err
	}
	if found {
		comparison.Current = &latest.OeePercentage
		comparison.Availability = &latest.AvailabilityPercentage
		comparison.Performance = &latest.PerformancePercentage
		comparison.Quality = &latest.QualityPercentage
	}

	target, err := s.store.GetActiveTarget(ctx, equipmentID, s.now())
	if err != nil {
		if !errors.Is(err, datamodel.ErrTargetNotFound) {
			return models.BenchmarkComparison{}, err
		}
		return comparison, nil
	}
	comparison.Target = &target.TargetOee
	comparison.WorldClass = &target.WorldClassOee
	comparison.IndustryBenchmark = target.IndustryBenchmarkOee
	comparison.CompanyAverage = target.CompanyAverageOee
	return comparison, nil
}

// GetTargetVsActual projects the window's calculations onto the target
// timeline for charting.
func (s *Service) GetTargetVsActual(
	ctx context.Context,
	equipmentID uint32,
	start, end time.Time) (result models.TargetVsActual, err error) {
	calculations, err := s.store.GetCalculationHistory(ctx, equipmentID, start, end)
	if err != nil {
		return models.TargetVsActual{}, err
	}

	dataPoints := make([]models.TargetVsActualPoint, 0, len(calculations))
	for _, calculation := range calculations {
		dataPoints = append(dataPoints, models.TargetVsActualPoint{
			Timestamp: calculation.CalculationPeriodEnd,
			Actual:    calculation.OeePercentage,
			Target:    calculation.TargetOeePercentage,
			Variance:  calculation.VarianceFromTarget,
		})
	}

	result = models.TargetVsActual{
		DataPoints: dataPoints,
		Period:     models.Period{Start: start, End: end},
	}

	target, err := s.store.GetActiveTarget(ctx, equipmentID, s.now())
	if err != nil {
		if !errors.Is(err, datamodel.ErrTargetNotFound) {
			return models.TargetVsActual{}, err
		}
		return result, nil
	}
	result.Target = &target.TargetOee
	return result, nil
}

// GetCalculations returns the stored calculation history, newest first.
func (s *Service) GetCalculations(ctx context.Context, equipmentID uint32) ([]datamodel.OeeCalculation, error) {
	if _, err := s.store.GetEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.store.GetCalculations(ctx, equipmentID)
}
