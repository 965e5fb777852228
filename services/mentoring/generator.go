package mentoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CycleGenerator partitions a mentor's unbilled session backlog into
// successive calendar-month billing windows and aggregates totals per window.
//
// It assumes a single concurrent run per mentor; callers serialize invocations
// (the scheduler iterates mentors sequentially on one goroutine).
type CycleGenerator struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewCycleGenerator wires a generator to its repository.
func NewCycleGenerator(repo Repository, log zerolog.Logger) (*CycleGenerator, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	return &CycleGenerator{repo: repo, log: log, now: time.Now}, nil
}

// GenerateBills opens monthly bill windows for every unbilled session of the
// mentor, carrying on from wherever the previous bill left off. With reset set,
// human overrides of accounted durations are discarded and recomputed.
//
// If a DUE bill whose window still reaches into the future exists, the mentor
// is already billed up to date and the run is a no-op.
func (g *CycleGenerator) GenerateBills(ctx context.Context, mentor *Mentor, reset bool) ([]*Bill, error) {
	if mentor == nil {
		return nil, errors.New("mentor is required")
	}

	open, err := g.repo.OpenBill(ctx, mentor.ID)
	if err != nil {
		return nil, err
	}
	if open != nil && open.EndedAt.After(g.now()) {
		return nil, nil
	}

	var cursor *time.Time
	latest, err := g.repo.LatestBill(ctx, mentor.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		next := latest.EndedAt.Add(time.Second)
		cursor = &next
	}

	var bills []*Bill
	for {
		unbilled, err := g.repo.UnbilledSessions(ctx, mentor.ID)
		if err != nil {
			return bills, err
		}

		windowStart, pending := nextWindow(unbilled, cursor)
		if len(pending) == 0 {
			return bills, nil
		}
		windowEnd := EndOfMonth(windowStart)

		bill := &Bill{
			ID:        uuid.New(),
			MentorID:  mentor.ID,
			AcademyID: mentor.AcademyID,
			Status:    BillStatusDue,
			StartedAt: windowStart,
			EndedAt:   windowEnd,
		}
		// Persisted before member assignment so a crash mid-window leaves a
		// resumable DUE bill rather than orphaned sessions.
		if err := g.repo.SaveBill(ctx, bill); err != nil {
			return bills, err
		}

		var totalMinutes, overtimeMinutes float64
		for _, s := range pending {
			if s.StartedAt.After(windowEnd) {
				continue
			}
			policy, err := g.repo.PolicyFor(ctx, s)
			if err != nil {
				g.log.Error().Err(err).
					Str("session", s.ID.String()).
					Str("mentor", mentor.ID.String()).
					Msg("skipping session during bill generation")
				continue
			}

			suggested, message := ComputeAccountedTime(s, policy)
			s.SuggestedAccountedDuration = &suggested
			s.StatusMessage = message
			if s.AccountedDuration == nil || reset {
				accounted := suggested
				s.AccountedDuration = &accounted
			}

			accounted := *s.AccountedDuration
			extra := accounted - policy.StandardDuration
			if extra < 0 {
				extra = 0
			}
			totalMinutes += accounted.Minutes()
			overtimeMinutes += extra.Minutes()

			s.BillID = &bill.ID
			if err := g.repo.SaveSession(ctx, s); err != nil {
				return bills, fmt.Errorf("assign session %s to bill: %w", s.ID, err)
			}
		}

		bill.TotalMinutes = round2(totalMinutes)
		bill.OvertimeMinutes = round2(overtimeMinutes)
		bill.TotalHours = round2(totalMinutes / 60)
		bill.TotalPrice = round2(bill.TotalHours * mentor.PricePerHour)
		if err := g.repo.SaveBill(ctx, bill); err != nil {
			return bills, err
		}

		bills = append(bills, bill)

		next := windowEnd.Add(time.Second)
		cursor = &next
	}
}

// ReleaseBill reverses billing for one bill: totals are zeroed, member
// sessions return to the unbilled pool with their accounted duration cleared,
// and the bill itself is marked IGNORED so it no longer anchors the cursor of
// future runs. Suggested durations stay put so a later regeneration reproduces
// the same totals.
func (g *CycleGenerator) ReleaseBill(ctx context.Context, bill *Bill) error {
	if bill == nil {
		return errors.New("bill is required")
	}

	sessions, err := g.repo.SessionsForBill(ctx, bill.ID)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		s.BillID = nil
		s.AccountedDuration = nil
		if err := g.repo.SaveSession(ctx, s); err != nil {
			return fmt.Errorf("release session %s: %w", s.ID, err)
		}
	}

	bill.TotalMinutes = 0
	bill.TotalHours = 0
	bill.TotalPrice = 0
	bill.OvertimeMinutes = 0
	bill.Status = BillStatusIgnored
	return g.repo.SaveBill(ctx, bill)
}

// nextWindow picks the window start for this iteration and the sessions still
// eligible for it or any later window. Sessions starting before the cursor can
// never fall inside a future window and are left alone; without this filter a
// stale leftover would spin the loop forever.
func nextWindow(unbilled []*Session, cursor *time.Time) (time.Time, []*Session) {
	var windowStart time.Time
	if cursor != nil {
		windowStart = *cursor
	} else {
		for _, s := range unbilled {
			if s.StartedAt == nil {
				continue
			}
			if windowStart.IsZero() || s.StartedAt.Before(windowStart) {
				windowStart = *s.StartedAt
			}
		}
	}
	if windowStart.IsZero() {
		return windowStart, nil
	}

	var pending []*Session
	for _, s := range unbilled {
		if s.StartedAt == nil || s.StartedAt.Before(windowStart) {
			continue
		}
		pending = append(pending, s)
	}
	return windowStart, pending
}

// EndOfMonth returns the last second of the month containing t: anchor on day
// 28 at 23:59:59, step four days into the next month, then walk back by the
// resulting day of month. Robust across 28/29/30/31-day months.
func EndOfMonth(t time.Time) time.Time {
	anchor := time.Date(t.Year(), t.Month(), 28, 23, 59, 59, 0, t.Location())
	next := anchor.AddDate(0, 0, 4)
	return next.AddDate(0, 0, -next.Day())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
