// Package scheduler runs the nightly trend batch: one DAILY trend per
// equipment unit over the previous day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/metrics"
	"github.com/shopfloor-insight/shopfloor-insight/cmd/oeeinsight/services"
	"github.com/shopfloor-insight/shopfloor-insight/pkg/datamodel"
	"go.uber.org/zap"
)

// TrendScheduler owns the cron instance and the batch execution
type TrendScheduler struct {
	service  *services.Service
	cron     *cron.Cron
	workers  int
	inFlight sync.Map
	now      func() time.Time
}

// NewTrendScheduler creates a scheduler with the given worker count. Workers
// bound how many equipment units are processed concurrently.
func NewTrendScheduler(service *services.Service, workers int) *TrendScheduler {
	if workers < 1 {
		workers = 1
	}
	return &TrendScheduler{
		service: service,
		cron:    cron.New(),
		workers: workers,
		now:     time.Now,
	}
}

// Start registers the batch under the cron schedule and starts the cron loop
func (t *TrendScheduler) Start(schedule string) error {
	_, err := t.cron.AddFunc(schedule, func() {
		t.RunDailyBatch(context.Background())
	})
	if err != nil {
		return err
	}
	t.cron.Start()
	zap.S().Infof("[TrendScheduler] started with schedule %s and %d workers", schedule, t.workers)
	return nil
}

// Stop stops the cron loop and waits for a running batch to finish
func (t *TrendScheduler) Stop() {
	stopCtx := t.cron.Stop()
	<-stopCtx.Done()
	zap.S().Infof("[TrendScheduler] stopped")
}

// RunDailyBatch computes yesterday's DAILY trend for every equipment unit.
// One failing unit does not stop the others. Units whose previous run is
// still in flight are skipped instead of being processed twice.
func (t *TrendScheduler) RunDailyBatch(ctx context.Context) {
	start := t.now()
	metrics.TrendBatchRuns.Inc()

	today := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	yesterday := today.AddDate(0, 0, -1)

	equipments, err := t.service.ListEquipment(ctx)
	if err != nil {
		zap.S().Errorw(
			"Failed to list equipment for trend batch",
			"error", err,
		)
		metrics.TrendBatchFailures.Inc()
		return
	}

	equipmentChannel := make(chan datamodel.Equipment)
	var wg sync.WaitGroup
	for i := 0; i < t.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for equipment := range equipmentChannel {
				t.computeTrendFor(ctx, equipment, yesterday, today)
			}
		}()
	}
	for _, equipment := range equipments {
		equipmentChannel <- equipment
	}
	close(equipmentChannel)
	wg.Wait()

	elapsed := t.now().Sub(start)
	metrics.TrendBatchDuration.Observe(elapsed.Seconds())
	zap.S().Infof("[RunDailyBatch] processed %d equipment units in %s", len(equipments), elapsed)
}

func (t *TrendScheduler) computeTrendFor(ctx context.Context, equipment datamodel.Equipment, periodStart, periodEnd time.Time) {
	if _, loaded := t.inFlight.LoadOrStore(equipment.ID, struct{}{}); loaded {
		zap.S().Warnf("[RunDailyBatch] equipment %d still in flight, skipping", equipment.ID)
		return
	}
	defer t.inFlight.Delete(equipment.ID)

	_, computed, err := t.service.CalculateTrend(ctx, equipment.ID, datamodel.TrendPeriodDaily, periodStart, periodEnd)
	if err != nil {
		zap.S().Errorw(
			"Failed to calculate daily trend",
			"equipmentID", equipment.ID,
			"error", err,
		)
		metrics.TrendBatchFailures.Inc()
		return
	}
	if !computed {
		zap.S().Debugf("[RunDailyBatch] no calculations for equipment %d, nothing to aggregate", equipment.ID)
	}
}
