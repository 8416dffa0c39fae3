package scheduler

import (
	"fmt"
	"time"

	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ReservationCompleter is satisfied by service.ReservationService
type ReservationCompleter interface {
	CompletePastReservations() (int64, error)
}

// CompletionScheduler periodically marks confirmed reservations whose slot has passed as completed
type CompletionScheduler struct {
	cron      *cron.Cron
	spec      string
	completer ReservationCompleter
}

// NewCompletionScheduler evaluates spec in loc
func NewCompletionScheduler(completer ReservationCompleter, spec string, loc *time.Location) *CompletionScheduler {
	return &CompletionScheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		spec:      spec,
		completer: completer,
	}
}

func (s *CompletionScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce() }); err != nil {
		logger.Error("Failed to add cron job for reservation completion", err, map[string]interface{}{
			"spec": s.spec,
		})
		return fmt.Errorf("invalid completion schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	logger.Info("Reservation completion scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce performs a single completion sweep
func (s *CompletionScheduler) RunOnce() int64 {
	completed, err := s.completer.CompletePastReservations()
	if err != nil {
		logger.Error("Failed to complete past reservations", err)
		return 0
	}
	if completed > 0 {
		logger.Info("Completed past reservations", map[string]interface{}{
			"count": completed,
		})
	}
	return completed
}

// Stop waits for a running sweep to finish
func (s *CompletionScheduler) Stop() {
	logger.Info("Stopping reservation completion scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Reservation completion scheduler stopped")
}
