package mentoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates the lifecycle states of a mentoring session.
type SessionStatus string

const (
	StatusPending   SessionStatus = "PENDING"
	StatusStarted   SessionStatus = "STARTED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusFailed    SessionStatus = "FAILED"
	StatusIgnored   SessionStatus = "IGNORED"
)

// Session is a single mentoring meeting between a mentor and, usually, a mentee.
// Timestamp fields are nullable on purpose: real sessions arrive with partial,
// inconsistent, or outright pathological data, and the accountant has to decide
// what is billable from whatever survived.
type Session struct {
	ID        uuid.UUID
	MentorID  uuid.UUID
	MenteeID  *uuid.UUID
	AcademyID uuid.UUID
	ServiceID uuid.UUID

	Status        SessionStatus
	StatusMessage string
	AllowBilling  bool

	ScheduledEndsAt *time.Time
	StartedAt       *time.Time
	EndedAt         *time.Time
	MentorJoinedAt  *time.Time
	MentorLeftAt    *time.Time
	MenteeLeftAt    *time.Time

	// AccountedDuration is the authoritative billable time. It is written by the
	// cycle generator or by an explicit human override, never negative.
	AccountedDuration *time.Duration
	// SuggestedAccountedDuration is the accountant's recommendation. It survives
	// human overrides and bill releases so regeneration stays deterministic.
	SuggestedAccountedDuration *time.Duration

	BillID *uuid.UUID

	OnlineMeetingURL string
	RoomName         string
}

// Terminal reports whether the session can no longer change status.
func (s *Session) Terminal() bool {
	switch s.Status {
	case StatusCompleted, StatusFailed, StatusIgnored:
		return true
	}
	return false
}

// Open reports whether the session is still joinable.
func (s *Session) Open() bool {
	return s.Status == StatusPending || s.Status == StatusStarted
}

// Start marks the mentee's arrival. Valid only from PENDING.
func (s *Session) Start(now time.Time) error {
	if s.Status != StatusPending {
		return fmt.Errorf("cannot start session in status %s", s.Status)
	}
	s.Status = StatusStarted
	if s.StartedAt == nil {
		t := now
		s.StartedAt = &t
	}
	return nil
}

// Complete closes a STARTED session successfully.
func (s *Session) Complete(now time.Time) error {
	if s.Status != StatusStarted {
		return fmt.Errorf("cannot complete session in status %s", s.Status)
	}
	s.Status = StatusCompleted
	if s.EndedAt == nil {
		t := now
		s.EndedAt = &t
	}
	return nil
}

// Fail closes the session unsuccessfully. Valid from PENDING or STARTED.
func (s *Session) Fail(now time.Time, message string) error {
	if !s.Open() {
		return fmt.Errorf("cannot fail session in status %s", s.Status)
	}
	s.Status = StatusFailed
	s.StatusMessage = message
	if s.EndedAt == nil {
		t := now
		s.EndedAt = &t
	}
	return nil
}

// Ignore excludes the session from billing permanently. Valid from any
// non-terminal state.
func (s *Session) Ignore() error {
	if s.Terminal() {
		return fmt.Errorf("cannot ignore session in status %s", s.Status)
	}
	s.Status = StatusIgnored
	return nil
}
