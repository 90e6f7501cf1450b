package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/shopfloor-insight/shopfloor-insight/internal"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"go.uber.org/zap"
)

// GetActiveTarget returns the active target for the equipment whose validity
// interval covers date. Results are held in the tiered cache keyed by
// equipment and day, so repeated calculations inside one day hit the cache.
func (c *Connection) GetActiveTarget(ctx context.Context, equipmentID uint32, date time.Time) (target datamodel.OeeTarget, err error) {
	cacheKey := fmt.Sprintf("active-target-%d-%s", equipmentID, date.UTC().Format("2006-01-02"))
	if c.cacheEnabled {
		cached, value := internal.GetTiered(cacheKey)
		if cached {
			if raw, isBytes := value.([]byte); isBytes {
				err = json.Unmarshal(raw, &target)
				if err == nil {
					return target, nil
				}
				zap.S().Warnf("[GetActiveTarget] failed to unmarshal cached target: %s", err)
			}
		}
	}

	qctx, cncl := queryContext(ctx)
	defer cncl()
	err = c.Db.QueryRow(qctx, `
		SELECT id, equipment_id, target_availability, target_performance, target_quality,
		       target_oee, industry_benchmark_oee, world_class_oee, company_average_oee,
		       effective_from, effective_to, is_active, created_at
		FROM oee_target
		WHERE equipment_id = $1
		  AND is_active
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY effective_from DESC
		LIMIT 1
	`, equipmentID, date).Scan(
		&target.ID,
		&target.EquipmentID,
		&target.TargetAvailability,
		&target.TargetPerformance,
		&target.TargetQuality,
		&target.TargetOee,
		&target.IndustryBenchmarkOee,
		&target.WorldClassOee,
		&target.CompanyAverageOee,
		&target.EffectiveFrom,
		&target.EffectiveTo,
		&target.IsActive,
		&target.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return datamodel.OeeTarget{}, datamodel.ErrTargetNotFound
		}
		return datamodel.OeeTarget{}, err
	}

	if c.cacheEnabled {
		raw, marshalErr := json.Marshal(target)
		if marshalErr == nil {
			internal.SetTieredShortTerm(cacheKey, raw)
		}
	}
	return target, nil
}

// SaveCalculation inserts a new OEE calculation record and fills in the
// generated id and timestamp. Records are append-only.
func (c *Connection) SaveCalculation(ctx context.Context, calculation *datamodel.OeeCalculation) error {
	calculation.CalculatedAt = time.Now().UTC()

	qctx, cncl := queryContext(ctx)
	defer cncl()
	err := c.Db.QueryRow(qctx, `
		INSERT INTO oee_calculation
			(equipment_id, calculation_period_start, calculation_period_end,
			 planned_production_time, downtime, operating_time, availability_percentage,
			 ideal_cycle_time, total_pieces_produced, ideal_production_quantity,
			 performance_percentage, good_pieces, rejected_pieces, quality_percentage,
			 oee_percentage, target_oee_percentage, variance_from_target,
			 calculation_type, calculated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`,
		calculation.EquipmentID,
		calculation.CalculationPeriodStart,
		calculation.CalculationPeriodEnd,
		calculation.PlannedProductionTime,
		calculation.Downtime,
		calculation.OperatingTime,
		calculation.AvailabilityPercentage,
		calculation.IdealCycleTime,
		calculation.TotalPiecesProduced,
		calculation.IdealProductionQuantity,
		calculation.PerformancePercentage,
		calculation.GoodPieces,
		calculation.RejectedPieces,
		calculation.QualityPercentage,
		calculation.OeePercentage,
		calculation.TargetOeePercentage,
		calculation.VarianceFromTarget,
		calculation.CalculationType,
		calculation.CalculatedAt,
	).Scan(&calculation.ID)
	if err != nil {
		return err
	}
	zap.S().Debugf("[SaveCalculation] saved calculation %d for equipment %d", calculation.ID, calculation.EquipmentID)
	return nil
}

const calculationColumns = `
		id, equipment_id, calculation_period_start, calculation_period_end,
		planned_production_time, downtime, operating_time, availability_percentage,
		ideal_cycle_time, total_pieces_produced, ideal_production_quantity,
		performance_percentage, good_pieces, rejected_pieces, quality_percentage,
		oee_percentage, target_oee_percentage, variance_from_target,
		calculation_type, calculated_at`

func scanCalculation(row pgx.Row, calculation *datamodel.OeeCalculation) error {
	return row.Scan(
		&calculation.ID,
		&calculation.EquipmentID,
		&calculation.CalculationPeriodStart,
		&calculation.CalculationPeriodEnd,
		&calculation.PlannedProductionTime,
		&calculation.Downtime,
		&calculation.OperatingTime,
		&calculation.AvailabilityPercentage,
		&calculation.IdealCycleTime,
		&calculation.TotalPiecesProduced,
		&calculation.IdealProductionQuantity,
		&calculation.PerformancePercentage,
		&calculation.GoodPieces,
		&calculation.RejectedPieces,
		&calculation.QualityPercentage,
		&calculation.OeePercentage,
		&calculation.TargetOeePercentage,
		&calculation.VarianceFromTarget,
		&calculation.CalculationType,
		&calculation.CalculatedAt,
	)
}

// GetCalculations returns all calculations for the equipment, newest first.
func (c *Connection) GetCalculations(ctx context.Context, equipmentID uint32) (calculations []datamodel.OeeCalculation, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT `+calculationColumns+`
		FROM oee_calculation
		WHERE equipment_id = $1
		ORDER BY calculation_period_start DESC
	`, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var calculation datamodel.OeeCalculation
		if err = scanCalculation(rows, &calculation); err != nil {
			return nil, err
		}
		calculations = append(calculations, calculation)
	}
	return calculations, rows.Err()
}

// GetCalculationHistory returns the calculations whose period start lies
// inside the window, ordered oldest first. This is the trend aggregation input.
func (c *Connection) GetCalculationHistory(ctx context.Context, equipmentID uint32, start, end time.Time) (calculations []datamodel.OeeCalculation, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT `+calculationColumns+`
		FROM oee_calculation
		WHERE equipment_id = $1
		  AND calculation_period_start >= $2
		  AND calculation_period_start <= $3
		ORDER BY calculation_period_start ASC
	`, equipmentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var calculation datamodel.OeeCalculation
		if err = scanCalculation(rows, &calculation); err != nil {
			return nil, err
		}
		calculations = append(calculations, calculation)
	}
	return calculations, rows.Err()
}

// GetLatestCalculation returns the most recent calculation for the equipment.
func (c *Connection) GetLatestCalculation(ctx context.Context, equipmentID uint32) (calculation datamodel.OeeCalculation, found bool, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	row := c.Db.QueryRow(qctx, `
		SELECT `+calculationColumns+`
		FROM oee_calculation
		WHERE equipment_id = $1
		ORDER BY calculation_period_start DESC
		LIMIT 1
	`, equipmentID)
	err = scanCalculation(row, &calculation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return datamodel.OeeCalculation{}, false, nil
		}
		return datamodel.OeeCalculation{}, false, err
	}
	return calculation, true, nil
}

// SaveTrend inserts a new trend record and fills in the generated id.
// Newer trends supersede older ones; nothing is updated in place.
func (c *Connection) SaveTrend(ctx context.Context, trend *datamodel.OeeTrend) error {
	trend.CalculatedAt = time.Now().UTC()

	qctx, cncl := queryContext(ctx)
	defer cncl()
	err := c.Db.QueryRow(qctx, `
		INSERT INTO oee_trend
			(equipment_id, trend_period, period_start, period_end,
			 avg_oee, avg_availability, avg_performance, avg_quality,
			 min_oee, max_oee, total_production_time, total_downtime,
			 total_pieces_produced, total_good_pieces,
			 trend_direction, trend_percentage, calculated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`,
		trend.EquipmentID,
		trend.TrendPeriod,
		trend.PeriodStart,
		trend.PeriodEnd,
		trend.AvgOee,
		trend.AvgAvailability,
		trend.AvgPerformance,
		trend.AvgQuality,
		trend.MinOee,
		trend.MaxOee,
		trend.TotalProductionTime,
		trend.TotalDowntime,
		trend.TotalPiecesProduced,
		trend.TotalGoodPieces,
		trend.TrendDirection,
		trend.TrendPercentage,
		trend.CalculatedAt,
	).Scan(&trend.ID)
	return err
}

// GetTrends returns the stored trend records for the equipment and period
// label whose period start lies inside the window, newest first.
func (c *Connection) GetTrends(ctx context.Context, equipmentID uint32, trendPeriod string, start, end time.Time) (trends []datamodel.OeeTrend, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT id, equipment_id, trend_period, period_start, period_end,
		       avg_oee, avg_availability, avg_performance, avg_quality,
		       min_oee, max_oee, total_production_time, total_downtime,
		       total_pieces_produced, total_good_pieces,
		       trend_direction, trend_percentage, calculated_at
		FROM oee_trend
		WHERE equipment_id = $1 AND trend_period = $2
		  AND period_start >= $3 AND period_start <= $4
		ORDER BY period_start DESC
	`, equipmentID, trendPeriod, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var trend datamodel.OeeTrend
		err = rows.Scan(
			&trend.ID,
			&trend.EquipmentID,
			&trend.TrendPeriod,
			&trend.PeriodStart,
			&trend.PeriodEnd,
			&trend.AvgOee,
			&trend.AvgAvailability,
			&trend.AvgPerformance,
			&trend.AvgQuality,
			&trend.MinOee,
			&trend.MaxOee,
			&trend.TotalProductionTime,
			&trend.TotalDowntime,
			&trend.TotalPiecesProduced,
			&trend.TotalGoodPieces,
			&trend.TrendDirection,
			&trend.TrendPercentage,
			&trend.CalculatedAt,
		)
		if err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

const targetColumns = `
		id, equipment_id, target_availability, target_performance, target_quality,
		target_oee, industry_benchmark_oee, world_class_oee, company_average_oee,
		effective_from, effective_to, is_active, created_at`

func scanTarget(row pgx.Row, target *datamodel.OeeTarget) error {
	return row.Scan(
		&target.ID,
		&target.EquipmentID,
		&target.TargetAvailability,
		&target.TargetPerformance,
		&target.TargetQuality,
		&target.TargetOee,
		&target.IndustryBenchmarkOee,
		&target.WorldClassOee,
		&target.CompanyAverageOee,
		&target.EffectiveFrom,
		&target.EffectiveTo,
		&target.IsActive,
		&target.CreatedAt,
	)
}

// GetTarget returns one target record by id.
func (c *Connection) GetTarget(ctx context.Context, targetID uint32) (target datamodel.OeeTarget, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	row := c.Db.QueryRow(qctx, `
		SELECT `+targetColumns+`
		FROM oee_target
		WHERE id = $1
	`, targetID)
	err = scanTarget(row, &target)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return datamodel.OeeTarget{}, datamodel.ErrTargetNotFound
		}
		return datamodel.OeeTarget{}, err
	}
	return target, nil
}

// ListTargets returns all target records.
func (c *Connection) ListTargets(ctx context.Context) (targets []datamodel.OeeTarget, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT `+targetColumns+`
		FROM oee_target
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var target datamodel.OeeTarget
		if err = scanTarget(rows, &target); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// ListTargetsForEquipment returns the target records for one equipment unit.
func (c *Connection) ListTargetsForEquipment(ctx context.Context, equipmentID uint32) (targets []datamodel.OeeTarget, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT `+targetColumns+`
		FROM oee_target
		WHERE equipment_id = $1
		ORDER BY effective_from DESC
	`, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var target datamodel.OeeTarget
		if err = scanTarget(rows, &target); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// CreateTarget inserts a new target record and fills in id and timestamp.
func (c *Connection) CreateTarget(ctx context.Context, target *datamodel.OeeTarget) error {
	target.CreatedAt = time.Now().UTC()

	qctx, cncl := queryContext(ctx)
	defer cncl()
	return c.Db.QueryRow(qctx, `
		INSERT INTO oee_target
			(equipment_id, target_availability, target_performance, target_quality,
			 target_oee, industry_benchmark_oee, world_class_oee, company_average_oee,
			 effective_from, effective_to, is_active, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		target.EquipmentID,
		target.TargetAvailability,
		target.TargetPerformance,
		target.TargetQuality,
		target.TargetOee,
		target.IndustryBenchmarkOee,
		target.WorldClassOee,
		target.CompanyAverageOee,
		target.EffectiveFrom,
		target.EffectiveTo,
		target.IsActive,
		target.CreatedAt,
	).Scan(&target.ID)
}

// UpdateTarget overwrites an existing target record.
func (c *Connection) UpdateTarget(ctx context.Context, target *datamodel.OeeTarget) error {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	tag, err := c.Db.Exec(qctx, `
		UPDATE oee_target SET
			equipment_id = $2,
			target_availability = $3,
			target_performance = $4,
			target_quality = $5,
			target_oee = $6,
			industry_benchmark_oee = $7,
			world_class_oee = $8,
			company_average_oee = $9,
			effective_from = $10,
			effective_to = $11,
			is_active = $12
		WHERE id = $1
	`,
		target.ID,
		target.EquipmentID,
		target.TargetAvailability,
		target.TargetPerformance,
		target.TargetQuality,
		target.TargetOee,
		target.IndustryBenchmarkOee,
		target.WorldClassOee,
		target.CompanyAverageOee,
		target.EffectiveFrom,
		target.EffectiveTo,
		target.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return datamodel.ErrTargetNotFound
	}
	return nil
}

// DeleteTarget removes a target record by id.
func (c *Connection) DeleteTarget(ctx context.Context, targetID uint32) error {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	tag, err := c.Db.Exec(qctx, `DELETE FROM oee_target WHERE id = $1`, targetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return datamodel.ErrTargetNotFound
	}
	return nil
}
