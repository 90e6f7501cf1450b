package services

import (
	"math"
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

// Round2 rounds half away from zero to two decimals. All stored percentages
// go through this.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// minutesBetween returns whole minutes between start and end, truncated.
// A 90 second window counts as 1 minute.
func minutesBetween(start, end time.Time) float64 {
	return float64(end.Sub(start) / time.Minute)
}

// CalculateDowntime sums the downtime minutes of the events against the
// window. Open-ended events and events reaching past the window are clamped
// to the window end; a contribution can never be negative.
func CalculateDowntime(events []datamodel.DowntimeEvent, windowEnd time.Time) (downtimeMinutes float64) {
	for _, event := range events {
		eventEnd := windowEnd
		if event.EndTime != nil && event.EndTime.Before(windowEnd) {
			eventEnd = *event.EndTime
		}
		minutes := minutesBetween(event.StartTime, eventEnd)
		if minutes > 0 {
			downtimeMinutes += minutes
		}
	}
	return downtimeMinutes
}

// CalculateAvailability returns operating/planned as a percentage. Zero when
// there is no planned time.
func CalculateAvailability(operatingMinutes, plannedMinutes float64) float64 {
	if plannedMinutes <= 0 {
		return 0
	}
	return Round2(operatingMinutes / plannedMinutes * 100)
}

// CalculateIdealQuantity returns how many units the equipment could have
// produced in the operating time at its ideal cycle time, rounded down.
func CalculateIdealQuantity(operatingMinutes, idealCycleTimeSeconds float64) int {
	if idealCycleTimeSeconds <= 0 {
		return 0
	}
	return int(math.Floor(operatingMinutes * 60 / idealCycleTimeSeconds))
}

// CalculatePerformance returns produced/ideal as a percentage. The result is
// deliberately not capped at 100; better-than-ideal output stays visible.
func CalculatePerformance(totalProduced, idealQuantity int) float64 {
	if idealQuantity <= 0 {
		return 0
	}
	return Round2(float64(totalProduced) / float64(idealQuantity) * 100)
}

// CountPieces derives good and rejected piece counts from the quality checks.
// A check without a sample size counts as one unit. Without any checks all
// produced pieces count as good.
func CountPieces(checks []datamodel.QualityCheck, totalProduced int) (goodPieces, rejectedPieces int) {
	for _, check := range checks {
		sampleSize := 1
		if check.SampleSize != nil {
			sampleSize = *check.SampleSize
		}
		switch check.Status {
		case datamodel.QualityCheckPassed:
			goodPieces += sampleSize
		case datamodel.QualityCheckFailed:
			rejectedPieces += sampleSize
		}
	}
	if len(checks) == 0 && totalProduced > 0 {
		goodPieces = totalProduced
	}
	return goodPieces, rejectedPieces
}

// CalculateQuality returns good/produced as a percentage. An idle window
// without production counts as 100.
func CalculateQuality(goodPieces, totalProduced int) float64 {
	if totalProduced <= 0 {
		return 100
	}
	return Round2(float64(goodPieces) / float64(totalProduced) * 100)
}

// CalculateOee combines the three components. Performance is capped at 100
// here so that overproduction cannot push OEE beyond its bounds.
func CalculateOee(availability, performance, quality float64) float64 {
	performanceCapped := math.Min(performance, 100)
	return Round2(availability * performanceCapped * quality / 10000)
}

// averageOee returns the mean OEE of the calculations, rounded to 2 decimals
func averageOee(calculations []datamodel.OeeCalculation) float64 {
	if len(calculations) == 0 {
		return 0
	}
	var sum float64
	for _, calculation := range calculations {
		sum += calculation.OeePercentage
	}
	return Round2(sum / float64(len(calculations)))
}

// DetermineTrendDirection splits the chronologically ordered calculations at
// the midpoint and compares the half means. A difference below 2 points
// counts as stable.
func DetermineTrendDirection(calculations []datamodel.OeeCalculation) string {
	if len(calculations) < 2 {
		return datamodel.TrendStable
	}
	midPoint := len(calculations) / 2
	firstAvg := averageOee(calculations[:midPoint])
	secondAvg := averageOee(calculations[midPoint:])

	difference := secondAvg - firstAvg
	switch {
	case math.Abs(difference) < 2:
		return datamodel.TrendStable
	case difference > 0:
		return datamodel.TrendImproving
	default:
		return datamodel.TrendDeclining
	}
}

// CalculateTrendPercentage returns the relative change of the second half
// mean against the first half mean, in percent. Zero when there is too
// little data or the first half mean is zero.
func CalculateTrendPercentage(calculations []datamodel.OeeCalculation) float64 {
	if len(calculations) < 2 {
		return 0
	}
	midPoint := len(calculations) / 2
	firstAvg := averageOee(calculations[:midPoint])
	secondAvg := averageOee(calculations[midPoint:])

	if firstAvg == 0 {
		return 0
	}
	return Round2((secondAvg - firstAvg) / firstAvg * 100)
}
