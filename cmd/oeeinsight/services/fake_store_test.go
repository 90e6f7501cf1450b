package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

// fakeStore is an in-memory Store used by the service tests
type fakeStore struct {
	mu sync.Mutex

	equipment    map[uint32]datamodel.Equipment
	downtime     []datamodel.DowntimeEvent
	orders       []datamodel.ProductionOrder
	checks       []datamodel.QualityCheck
	targets      []datamodel.OeeTarget
	calculations []datamodel.OeeCalculation
	trends       []datamodel.OeeTrend
	nextID       uint32

	// historyErr fails GetCalculationHistory for one equipment id
	historyErr map[uint32]error
	// saveErr fails every SaveCalculation / SaveTrend
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		equipment:  make(map[uint32]datamodel.Equipment),
		historyErr: make(map[uint32]error),
	}
}

func (f *fakeStore) addEquipment(equipment datamodel.Equipment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.equipment[equipment.ID] = equipment
}

func (f *fakeStore) GetEquipment(_ context.Context, equipmentID uint32) (datamodel.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	equipment, ok := f.equipment[equipmentID]
	if !ok {
		return datamodel.Equipment{}, datamodel.ErrEquipmentNotFound
	}
	return equipment, nil
}

func (f *fakeStore) ListEquipment(_ context.Context) ([]datamodel.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	equipments := make([]datamodel.Equipment, 0, len(f.equipment))
	for _, equipment := range f.equipment {
		equipments = append(equipments, equipment)
	}
	sort.Slice(equipments, func(i, j int) bool { return equipments[i].ID < equipments[j].ID })
	return equipments, nil
}

func (f *fakeStore) GetDowntimeEvents(_ context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.DowntimeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []datamodel.DowntimeEvent
	for _, event := range f.downtime {
		if event.EquipmentID == equipmentID && !event.StartTime.Before(start) && !event.StartTime.After(end) {
			events = append(events, event)
		}
	}
	return events, nil
}

func (f *fakeStore) GetProductionOrders(_ context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.ProductionOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []datamodel.ProductionOrder
	for _, order := range f.orders {
		if order.EquipmentID != equipmentID || order.StartTime.After(end) {
			continue
		}
		if order.EndTime != nil && order.EndTime.Before(start) {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (f *fakeStore) GetQualityChecks(_ context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.QualityCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var checks []datamodel.QualityCheck
	for _, check := range f.checks {
		if check.EquipmentID == equipmentID && !check.CheckTime.Before(start) && !check.CheckTime.After(end) {
			checks = append(checks, check)
		}
	}
	return checks, nil
}

func (f *fakeStore) GetActiveTarget(_ context.Context, equipmentID uint32, date time.Time) (datamodel.OeeTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *datamodel.OeeTarget
	for i := range f.targets {
		target := f.targets[i]
		if target.EquipmentID != equipmentID || !target.IsActive {
			continue
		}
		if target.EffectiveFrom.After(date) {
			continue
		}
		if target.EffectiveTo != nil && target.EffectiveTo.Before(date) {
			continue
		}
		if best == nil || target.EffectiveFrom.After(best.EffectiveFrom) {
			best = &f.targets[i]
		}
	}
	if best == nil {
		return datamodel.OeeTarget{}, datamodel.ErrTargetNotFound
	}
	return *best, nil
}

func (f *fakeStore) SaveCalculation(_ context.Context, calculation *datamodel.OeeCalculation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	calculation.ID = f.nextID
	calculation.CalculatedAt = time.Now().UTC()
	f.calculations = append(f.calculations, *calculation)
	return nil
}

func (f *fakeStore) GetCalculations(_ context.Context, equipmentID uint32) ([]datamodel.OeeCalculation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calculations []datamodel.OeeCalculation
	for _, calculation := range f.calculations {
		if calculation.EquipmentID == equipmentID {
			calculations = append(calculations, calculation)
		}
	}
	sort.Slice(calculations, func(i, j int) bool {
		return calculations[i].CalculationPeriodStart.After(calculations[j].CalculationPeriodStart)
	})
	return calculations, nil
}

func (f *fakeStore) GetCalculationHistory(_ context.Context, equipmentID uint32, start, end time.Time) ([]datamodel.OeeCalculation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.historyErr[equipmentID]; ok {
		return nil, err
	}
	var calculations []datamodel.OeeCalculation
	for _, calculation := range f.calculations {
		if calculation.EquipmentID != equipmentID {
			continue
		}
		if calculation.CalculationPeriodStart.Before(start) || calculation.CalculationPeriodStart.After(end) {
			continue
		}
		calculations = append(calculations, calculation)
	}
	sort.Slice(calculations, func(i, j int) bool {
		return calculations[i].CalculationPeriodStart.Before(calculations[j].CalculationPeriodStart)
	})
	return calculations, nil
}

func (f *fakeStore) GetLatestCalculation(_ context.Context, equipmentID uint32) (datamodel.OeeCalculation, bool, error) {
	calculations, err := f.GetCalculations(context.Background(), equipmentID)
	if err != nil || len(calculations) == 0 {
		return datamodel.OeeCalculation{}, false, err
	}
	return calculations[0], true, nil
}

func (f *fakeStore) SaveTrend(_ context.Context, trend *datamodel.OeeTrend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	trend.ID = f.nextID
	trend.CalculatedAt = time.Now().UTC()
	f.trends = append(f.trends, *trend)
	return nil
}

func (f *fakeStore) GetTrends(_ context.Context, equipmentID uint32, trendPeriod string, start, end time.Time) ([]datamodel.OeeTrend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var trends []datamodel.OeeTrend
	for _, trend := range f.trends {
		if trend.EquipmentID != equipmentID || trend.TrendPeriod != trendPeriod {
			continue
		}
		if trend.PeriodStart.Before(start) || trend.PeriodStart.After(end) {
			continue
		}
		trends = append(trends, trend)
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].PeriodStart.After(trends[j].PeriodStart)
	})
	return trends, nil
}

func (f *fakeStore) GetTarget(_ context.Context, targetID uint32) (datamodel.OeeTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, target := range f.targets {
		if target.ID == targetID {
			return target, nil
		}
	}
	return datamodel.OeeTarget{}, datamodel.ErrTargetNotFound
}

func (f *fakeStore) ListTargets(_ context.Context) ([]datamodel.OeeTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]datamodel.OeeTarget(nil), f.targets...), nil
}

func (f *fakeStore) ListTargetsForEquipment(_ context.Context, equipmentID uint32) ([]datamodel.OeeTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var targets []datamodel.OeeTarget
	for _, target := range f.targets {
		if target.EquipmentID == equipmentID {
			targets = append(targets, target)
		}
	}
	return targets, nil
}

func (f *fakeStore) CreateTarget(_ context.Context, target *datamodel.OeeTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	target.ID = f.nextID
	target.CreatedAt = time.Now().UTC()
	f.targets = append(f.targets, *target)
	return nil
}

func (f *fakeStore) UpdateTarget(_ context.Context, target *datamodel.OeeTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.targets {
		if f.targets[i].ID == target.ID {
			f.targets[i] = *target
			return nil
		}
	}
	return datamodel.ErrTargetNotFound
}

func (f *fakeStore) DeleteTarget(_ context.Context, targetID uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.targets {
		if f.targets[i].ID == targetID {
			f.targets = append(f.targets[:i], f.targets[i+1:]...)
			return nil
		}
	}
	return datamodel.ErrTargetNotFound
}
