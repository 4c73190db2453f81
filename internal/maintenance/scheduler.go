// Package maintenance runs periodic housekeeping against the contact store.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RunTimeout bounds a single maintenance run
const RunTimeout = 5 * time.Minute

// Optimizer is the part of the database the scheduler needs
type Optimizer interface {
	Optimize(ctx context.Context) error
}

// Scheduler runs Optimize on a cron schedule
type Scheduler struct {
	db          Optimizer
	cron        *cron.Cron
	cronEntryID cron.EntryID
	mu          sync.Mutex
	running     bool
	lastRun     time.Time
	lastErr     error
}

// Status is a snapshot of the scheduler state
type Status struct {
	Running bool
	LastRun *time.Time
	NextRun *time.Time
	LastErr error
}

// New creates a scheduler for db
func New(db Optimizer) *Scheduler {
	return &Scheduler{
		db:   db,
		cron: cron.New(),
	}
}

// Start schedules maintenance and starts the cron loop. An empty schedule
// disables maintenance and reports false.
func (s *Scheduler) Start(schedule string) (bool, error) {
	if schedule == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return true, nil
	}

	id, err := s.cron.AddFunc(schedule, s.scheduledRun)
	if err != nil {
		return false, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}
	s.cronEntryID = id

	s.cron.Start()
	s.running = true

	log.Info().Str("schedule", schedule).Msg("Maintenance scheduler started")
	return true, nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()

	log.Info().Msg("Maintenance scheduler stopped")
}

// Status returns the last and next run times
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Running: s.running, LastErr: s.lastErr}
	if !s.lastRun.IsZero() {
		lastRun := s.lastRun
		status.LastRun = &lastRun
	}
	if s.cronEntryID != 0 {
		entry := s.cron.Entry(s.cronEntryID)
		if !entry.Next.IsZero() {
			status.NextRun = &entry.Next
		}
	}
	return status
}

// RunNow performs one maintenance run immediately
func (s *Scheduler) RunNow(ctx context.Context) error {
	start := time.Now()
	err := s.db.Optimize(ctx)

	s.mu.Lock()
	s.lastRun = start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		return err
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("Database maintenance completed")
	return nil
}

// scheduledRun is called by cron
func (s *Scheduler) scheduledRun() {
	log.Info().Msg("Running scheduled database maintenance")

	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	if err := s.RunNow(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled database maintenance failed")
	}
}
