package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

var ErrInvalidWindow = errors.New("window end must be after window start")

// Store is the persistence surface the services need. *postgresql.Connection
// implements it; tests substitute an in-memory fake.
type Store interface {
	GetEquipment(ctx context.Context, equipmentID uint32) (datamodel.Equipment, error)
	ListEquipment(ctx context.Context) ([]datamodel.Equipment, error)
	GetDowntimeEvents(ctx context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.DowntimeEvent, error)
	GetProductionOrders(ctx context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.ProductionOrder, error)
	GetQualityChecks(ctx context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.QualityCheck, error)

	GetActiveTarget(ctx context.Context, equipmentID uint32, date time.Time) (datamodel.OeeTarget, error)
	SaveCalculation(ctx context.Context, calculation *datamodel.OeeCalculation) error
	GetCalculations(ctx context.Context, equipmentID uint32) ([]datamodel.OeeCalculation, error)
	GetCalculationHistory(ctx context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.OeeCalculation, error)
	GetLatestCalculation(ctx context.Context, equipmentID uint32) (datamodel.OeeCalculation, bool, error)

	SaveTrend(ctx context.Context, trend *datamodel.OeeTrend) error
	GetTrends(ctx context.Context, equipmentID uint32, trendPeriod string, start, end time.Time) ([]datamodel.OeeTrend, error)

	GetTarget(ctx context.Context, targetID uint32) (datamodel.OeeTarget, error)
	ListTargets(ctx context.Context) ([]datamodel.OeeTarget, error)
	ListTargetsForEquipment(ctx context.Context, equipmentID uint32) ([]datamodel.OeeTarget, error)
	CreateTarget(ctx context.Context, target *datamodel.OeeTarget) error
	UpdateTarget(ctx context.Context, target *datamodel.OeeTarget) error
	DeleteTarget(ctx context.Context, targetID uint32) error
}

// Service bundles the OEE computations on top of a Store
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}
