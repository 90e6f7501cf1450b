package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"go.uber.org/zap"
)

// GetEquipment returns the equipment row for the given id. Rows are cached in
// the ARC cache since equipment master data changes rarely.
func (c *Connection) GetEquipment(ctx context.Context, equipmentID uint32) (equipment datamodel.Equipment, err error) {
	if c.cacheEnabled {
		if cached, ok := c.equipmentCache.Get(equipmentID); ok {
			return cached.(datamodel.Equipment), nil
		}
	}

	qctx, cncl := queryContext(ctx)
	defer cncl()
	err = c.Db.QueryRow(qctx, `
		SELECT id, name, code, status, location, ideal_cycle_time_seconds
		FROM equipment
		WHERE id = $1
	`, equipmentID).Scan(
		&equipment.ID,
		&equipment.Name,
		&equipment.Code,
		&equipment.Status,
		&equipment.Location,
		&equipment.IdealCycleTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return datamodel.Equipment{}, datamodel.ErrEquipmentNotFound
		}
		return datamodel.Equipment{}, err
	}

	if c.cacheEnabled {
		c.equipmentCache.Add(equipmentID, equipment)
	}
	return equipment, nil
}

// ListEquipment returns all equipment rows. Used by the scheduled trend batch.
func (c *Connection) ListEquipment(ctx context.Context) (equipments []datamodel.Equipment, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT id, name, code, status, location, ideal_cycle_time_seconds
		FROM equipment
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var equipment datamodel.Equipment
		err = rows.Scan(
			&equipment.ID,
			&equipment.Name,
			&equipment.Code,
			&equipment.Status,
			&equipment.Location,
			&equipment.IdealCycleTime,
		)
		if err != nil {
			return nil, err
		}
		equipments = append(equipments, equipment)
	}
	return equipments, rows.Err()
}

// GetDowntimeEvents returns the downtime events for the equipment that
// started inside the window. Still-open events come back with a nil EndTime.
func (c *Connection) GetDowntimeEvents(ctx context.Context, equipmentID uint32, start, end time.Time) (events []datamodel.DowntimeEvent, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT id, equipment_id, start_time, end_time, reason_code
		FROM downtime_event
		WHERE equipment_id = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time
	`, equipmentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event datamodel.DowntimeEvent
		err = rows.Scan(
			&event.ID,
			&event.EquipmentID,
			&event.StartTime,
			&event.EndTime,
			&event.ReasonCode,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// GetProductionOrders returns the production orders for the equipment whose
// run overlaps the window. Orders still running have a nil EndTime.
func (c *Connection) GetProductionOrders(ctx context.Context, equipmentID uint32, start, end time.Time) (orders []datamodel.ProductionOrder, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT id, equipment_id, order_number, product_name, produced_quantity, start_time, end_time
		FROM production_order
		WHERE equipment_id = $1
		  AND start_time <= $3
		  AND (end_time IS NULL OR end_time >= $2)
		ORDER BY start_time
	`, equipmentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var order datamodel.ProductionOrder
		err = rows.Scan(
			&order.ID,
			&order.EquipmentID,
			&order.OrderNumber,
			&order.ProductName,
			&order.ProducedQuantity,
			&order.StartTime,
			&order.EndTime,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// GetQualityChecks returns the quality checks recorded against the
// equipment's production orders inside the window.
func (c *Connection) GetQualityChecks(ctx context.Context, equipmentID uint32, start, end time.Time) (checks []datamodel.QualityCheck, err error) {
	qctx, cncl := queryContext(ctx)
	defer cncl()
	rows, err := c.Db.Query(qctx, `
		SELECT q.id, p.equipment_id, q.status, q.check_time, q.sample_size
		FROM quality_check q
		JOIN production_order p ON p.id = q.production_order_id
		WHERE p.equipment_id = $1 AND q.check_time >= $2 AND q.check_time <= $3
		ORDER BY q.check_time
	`, equipmentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var check datamodel.QualityCheck
		err = rows.Scan(
			&check.ID,
			&check.EquipmentID,
			&check.Status,
			&check.CheckTime,
			&check.SampleSize,
		)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	zap.S().Debugf("[GetQualityChecks] fetched %d checks for equipment %d", len(checks), equipmentID)
	return checks, nil
}
