// Package scheduler drives the periodic billing pass: reap stale sessions,
// then generate bills for every active mentor. A single goroutine processes
// mentors sequentially so there is never more than one writer per mentor.
package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"mentorbill/services/mentoring"
)

var (
	sessionsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorbill_sessions_reaped_total",
		Help: "Sessions closed automatically because they went stale.",
	})
	billsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorbill_bills_generated_total",
		Help: "Bills created by the periodic billing pass.",
	})
	billingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorbill_billing_errors_total",
		Help: "Errors encountered while reaping sessions or generating bills.",
	})
)

// Generator produces billing cycles for a single mentor.
type Generator interface {
	GenerateBills(ctx context.Context, mentor *mentoring.Mentor, reset bool) ([]*mentoring.Bill, error)
}

// Reaper closes sessions whose scheduled end is long past.
type Reaper interface {
	Run(ctx context.Context) (int, error)
}

// MentorSource lists the mentors that should be billed.
type MentorSource interface {
	ActiveMentors(ctx context.Context) ([]*mentoring.Mentor, error)
}

// Scheduler runs the billing pass on a fixed interval.
type Scheduler struct {
	generator Generator
	reaper    Reaper
	mentors   MentorSource
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a Scheduler. Intervals below a minute are raised to a minute.
func New(generator Generator, reaper Reaper, mentors MentorSource, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Scheduler{
		generator: generator,
		reaper:    reaper,
		mentors:   mentors,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start launches the scheduler loop. It returns immediately; the loop stops
// when ctx is cancelled. The first pass runs after one full interval so a
// crash-looping process does not hammer the database.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single reap-then-bill pass. Failures on one mentor are
// logged and counted but never stop the rest of the pass.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()

	closed, err := s.reaper.Run(ctx)
	if err != nil {
		billingErrors.Inc()
		s.log.Error().Err(err).Msg("reaper pass failed")
	} else {
		sessionsReaped.Add(float64(closed))
		if closed > 0 {
			s.log.Info().Int("closed", closed).Msg("stale sessions reaped")
		}
	}

	mentors, err := s.mentors.ActiveMentors(ctx)
	if err != nil {
		billingErrors.Inc()
		s.log.Error().Err(err).Msg("listing active mentors failed")
		return
	}

	var generated int
	for _, mentor := range mentors {
		if ctx.Err() != nil {
			return
		}

		bills, err := s.generator.GenerateBills(ctx, mentor, false)
		if err != nil {
			billingErrors.Inc()
			s.log.Error().Err(err).Stringer("mentor", mentor.ID).Msg("billing pass failed for mentor")
			continue
		}
		generated += len(bills)
	}

	billsGenerated.Add(float64(generated))
	s.log.Info().
		Int("mentors", len(mentors)).
		Int("bills", generated).
		Dur("took", time.Since(start)).
		Msg("billing pass finished")
}
