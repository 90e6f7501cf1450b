package services

import (
	"context"
	"errors"

	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
)

var ErrInvalidTarget = errors.New("invalid target")

func validateTarget(target *datamodel.OeeTarget) error {
	if target.EquipmentID == 0 {
		return errors.Join(ErrInvalidTarget, errors.New("equipmentId is required"))
	}
	percentages := []float64{
		target.TargetAvailability,
		target.TargetPerformance,
		target.TargetQuality,
		target.TargetOee,
	}
	for _, percentage := range percentages {
		if percentage <= 0 || percentage > 100 {
			return errors.Join(ErrInvalidTarget, errors.New("target percentages must be in (0, 100]"))
		}
	}
	if target.EffectiveFrom.IsZero() {
		return errors.Join(ErrInvalidTarget, errors.New("effectiveFrom is required"))
	}
	if target.EffectiveTo != nil && !target.EffectiveTo.After(target.EffectiveFrom) {
		return errors.Join(ErrInvalidTarget, errors.New("effectiveTo must be after effectiveFrom"))
	}
	return nil
}

// ListTargets returns all stored targets.
func (s *Service) ListTargets(ctx context.Context) ([]datamodel.OeeTarget, error) {
	return s.store.ListTargets(ctx)
}

// ListTargetsForEquipment returns the targets of one equipment unit.
func (s *Service) ListTargetsForEquipment(ctx context.Context, equipmentID uint32) ([]datamodel.OeeTarget, error) {
	if _, err := s.store.GetEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.store.ListTargetsForEquipment(ctx, equipmentID)
}

// CreateTarget validates and persists a new target. Missing world class OEE
// defaults to the common benchmark value.
func (s *Service) CreateTarget(ctx context.Context, target *datamodel.OeeTarget) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if _, err := s.store.GetEquipment(ctx, target.EquipmentID); err != nil {
		return err
	}
	if target.WorldClassOee == 0 {
		target.WorldClassOee = datamodel.WorldClassOee
	}
	return s.store.CreateTarget(ctx, target)
}

// UpdateTarget applies the updatable fields onto the stored target. The
// equipment assignment and creation timestamp stay untouched.
func (s *Service) UpdateTarget(ctx context.Context, targetID uint32, updates datamodel.OeeTarget) (datamodel.OeeTarget, error) {
	target, err := s.store.GetTarget(ctx, targetID)
	if err != nil {
		return datamodel.OeeTarget{}, err
	}

	target.TargetAvailability = updates.TargetAvailability
	target.TargetPerformance = updates.TargetPerformance
	target.TargetQuality = updates.TargetQuality
	target.TargetOee = updates.TargetOee
	target.IndustryBenchmarkOee = updates.IndustryBenchmarkOee
	target.CompanyAverageOee = updates.CompanyAverageOee
	target.EffectiveFrom = updates.EffectiveFrom
	target.EffectiveTo = updates.EffectiveTo
	target.IsActive = updates.IsActive

	if err = validateTarget(&target); err != nil {
		return datamodel.OeeTarget{}, err
	}
	if err = s.store.UpdateTarget(ctx, &target); err != nil {
		return datamodel.OeeTarget{}, err
	}
	return target, nil
}

// DeleteTarget removes a target by id.
func (s *Service) DeleteTarget(ctx context.Context, targetID uint32) error {
	return s.store.DeleteTarget(ctx, targetID)
}
