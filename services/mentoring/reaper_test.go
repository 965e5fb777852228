package mentoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestReaperClosesStaleSessions(t *testing.T) {
	repo := newMemoryRepo()
	reaper, err := NewReaper(repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewReaper: %v", err)
	}
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	reaper.now = func() time.Time { return now }

	mentorID := uuid.New()
	add := func(status SessionStatus, scheduledEndsAt *time.Time) uuid.UUID {
		s := Session{
			ID:              uuid.New(),
			MentorID:        mentorID,
			Status:          status,
			AllowBilling:    true,
			ScheduledEndsAt: scheduledEndsAt,
		}
		if err := repo.SaveSession(context.Background(), &s); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
		return s.ID
	}

	stalePending := add(StatusPending, timeRef(now.Add(-3*time.Hour)))
	staleStarted := add(StatusStarted, timeRef(now.Add(-2*time.Hour)))
	fresh := add(StatusStarted, timeRef(now.Add(-90*time.Minute)))
	unscheduled := add(StatusPending, nil)
	done := add(StatusCompleted, timeRef(now.Add(-5*time.Hour)))

	closed, err := reaper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if closed != 2 {
		t.Fatalf("closed %d sessions, want 2", closed)
	}

	for _, id := range []uuid.UUID{stalePending, staleStarted} {
		got := repo.sessions[id]
		if got.Status != StatusFailed {
			t.Fatalf("session %s status = %s, want FAILED", id, got.Status)
		}
		if got.StatusMessage != ReapedMessage {
			t.Fatalf("session %s message = %q", id, got.StatusMessage)
		}
		if got.EndedAt == nil || !got.EndedAt.Equal(now) {
			t.Fatalf("session %s ended at %v, want %v", id, got.EndedAt, now)
		}
	}

	if got := repo.sessions[fresh]; got.Status != StatusStarted {
		t.Fatalf("fresh session was reaped")
	}
	if got := repo.sessions[unscheduled]; got.Status != StatusPending {
		t.Fatalf("unscheduled session was reaped")
	}
	if got := repo.sessions[done]; got.Status != StatusCompleted {
		t.Fatalf("terminal session was touched")
	}

	// Re-running is a no-op thanks to the conditional close.
	closed, err = reaper.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if closed != 0 {
		t.Fatalf("second run closed %d sessions, want 0", closed)
	}
}
