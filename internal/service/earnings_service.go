package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"salonms-backend/internal/domain"
	"salonms-backend/internal/repository"
)

var ErrWorkerInactive = errors.New("worker is not active")

type WorkerStore interface {
	Get(ctx context.Context, id int64) (*domain.Worker, error)
	List(ctx context.Context, limit int) ([]domain.Worker, error)
	ApplyService(ctx context.Context, id int64, commission int64) error
	ReplaceEarnings(ctx context.Context, id int64, total, currentMonth, services int64) error
}

type ServiceRecordStore interface {
	Create(ctx context.Context, in repository.CreateServiceRecordInput) (*domain.ServiceRecord, error)
	History(ctx context.Context) ([]domain.ServiceRecord, error)
}

// EarningsService keeps worker earnings counters in step with the service
// history. The counters are a derived cache: RecordService maintains them
// additively, RecalculateAll rebuilds them from scratch.
type EarningsService struct {
	Workers  WorkerStore
	Services ServiceRecordStore
	Logger   *slog.Logger
	Now      func() time.Time // defaults to time.Now
}

type RecordServiceInput struct {
	WorkerID     int64
	ProductID    *int64
	ServiceName  string
	ServicePrice int64
	PerformedAt  time.Time
}

type RecalcSummary struct {
	WorkersUpdated int
	ServicesSeen   int
}

// CommissionAmount computes price × rate / 100 in minor units, rounded half
// away from zero.
func CommissionAmount(price int64, rate float64) int64 {
	return int64(math.Round(float64(price) * rate / 100))
}

// RecordService inserts the history row and bumps the worker's counters.
// Fixed-salary workers accrue no commission but still count the service.
func (s EarningsService) RecordService(ctx context.Context, in RecordServiceInput) (*domain.ServiceRecord, error) {
	worker, err := s.Workers.Get(ctx, in.WorkerID)
	if err != nil {
		return nil, err
	}
	if !worker.Active {
		return nil, ErrWorkerInactive
	}

	var commission int64
	if worker.PaymentType == domain.PaymentCommission {
		commission = CommissionAmount(in.ServicePrice, worker.CommissionRate)
	}

	performedAt := in.PerformedAt
	if performedAt.IsZero() {
		performedAt = s.now()
	}
	rec, err := s.Services.Create(ctx, repository.CreateServiceRecordInput{
		WorkerID:       in.WorkerID,
		ProductID:      in.ProductID,
		ServiceName:    in.ServiceName,
		ServicePrice:   in.ServicePrice,
		CommissionPaid: commission,
		PerformedAt:    performedAt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Workers.ApplyService(ctx, in.WorkerID, commission); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecalculateAll rebuilds every worker's counters from the full service
// history, recomputing each commission with the worker's current rate. The
// same rounding as RecordService is applied per service, so with unchanged
// rates the rebuilt totals equal the incrementally accumulated ones.
func (s EarningsService) RecalculateAll(ctx context.Context) (RecalcSummary, error) {
	var summary RecalcSummary

	workers, err := s.Workers.List(ctx, 10000)
	if err != nil {
		return summary, err
	}
	history, err := s.Services.History(ctx)
	if err != nil {
		return summary, err
	}
	summary.ServicesSeen = len(history)

	byWorker := make(map[int64][]domain.ServiceRecord, len(workers))
	for _, rec := range history {
		byWorker[rec.WorkerID] = append(byWorker[rec.WorkerID], rec)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, w := range workers {
		var total, currentMonth, services int64
		for _, rec := range byWorker[w.ID] {
			var commission int64
			if w.PaymentType == domain.PaymentCommission {
				commission = CommissionAmount(rec.ServicePrice, w.CommissionRate)
			}
			total += commission
			if !rec.PerformedAt.Before(monthStart) {
				currentMonth += commission
			}
			services++
		}
		if err := s.Workers.ReplaceEarnings(ctx, w.ID, total, currentMonth, services); err != nil {
			return summary, err
		}
		summary.WorkersUpdated++
	}

	s.Logger.Info("earnings recalculated",
		"workers", summary.WorkersUpdated,
		"services", summary.ServicesSeen,
	)
	return summary, nil
}

func (s EarningsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
