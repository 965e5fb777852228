package mentoring

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// memoryRepo is the in-memory Repository used across the package tests. It
// stores copies so state only changes through Save calls, mirroring how the
// GORM store behaves.
type memoryRepo struct {
	sessions map[uuid.UUID]Session
	bills    map[uuid.UUID]Bill
	policies map[uuid.UUID]TimePolicy
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		sessions: make(map[uuid.UUID]Session),
		bills:    make(map[uuid.UUID]Bill),
		policies: make(map[uuid.UUID]TimePolicy),
	}
}

func (m *memoryRepo) SaveSession(_ context.Context, s *Session) error {
	m.sessions[s.ID] = *s
	return nil
}

func (m *memoryRepo) SaveBill(_ context.Context, b *Bill) error {
	m.bills[b.ID] = *b
	return nil
}

func (m *memoryRepo) UnbilledSessions(_ context.Context, mentorID uuid.UUID) ([]*Session, error) {
	var out []*Session
	for id := range m.sessions {
		s := m.sessions[id]
		if s.MentorID != mentorID || !s.AllowBilling || s.StartedAt == nil {
			continue
		}
		if s.Status != StatusCompleted && s.Status != StatusFailed {
			continue
		}
		if s.BillID != nil {
			bill, ok := m.bills[*s.BillID]
			if !ok || bill.Status != BillStatusDue || bill.AcademyID != s.AcademyID {
				continue
			}
		}
		copied := s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(*out[j].StartedAt) })
	return out, nil
}

func (m *memoryRepo) LatestBill(_ context.Context, mentorID uuid.UUID) (*Bill, error) {
	var latest *Bill
	for id := range m.bills {
		b := m.bills[id]
		if b.MentorID != mentorID || b.Status == BillStatusIgnored {
			continue
		}
		if latest == nil || b.StartedAt.After(latest.StartedAt) {
			copied := b
			latest = &copied
		}
	}
	return latest, nil
}

func (m *memoryRepo) OpenBill(_ context.Context, mentorID uuid.UUID) (*Bill, error) {
	var open *Bill
	for id := range m.bills {
		b := m.bills[id]
		if b.MentorID != mentorID || b.Status != BillStatusDue {
			continue
		}
		if open == nil || b.StartedAt.After(open.StartedAt) {
			copied := b
			open = &copied
		}
	}
	return open, nil
}

func (m *memoryRepo) SessionsForBill(_ context.Context, billID uuid.UUID) ([]*Session, error) {
	var out []*Session
	for id := range m.sessions {
		s := m.sessions[id]
		if s.BillID != nil && *s.BillID == billID {
			copied := s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryRepo) PolicyFor(_ context.Context, s *Session) (TimePolicy, error) {
	policy, ok := m.policies[s.ServiceID]
	if !ok {
		return TimePolicy{}, ErrMissingPolicy
	}
	return policy, nil
}

func (m *memoryRepo) OpenSessions(_ context.Context, mentorID uuid.UUID) ([]*Session, error) {
	var out []*Session
	for id := range m.sessions {
		s := m.sessions[id]
		if s.MentorID != mentorID || !s.Open() {
			continue
		}
		copied := s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].MentorJoinedAt, out[j].MentorJoinedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		}
		return ti.After(*tj)
	})
	return out, nil
}

func (m *memoryRepo) OpenSessionForPair(_ context.Context, mentorID, menteeID uuid.UUID) (*Session, error) {
	for id := range m.sessions {
		s := m.sessions[id]
		if s.MentorID == mentorID && s.Open() && s.MenteeID != nil && *s.MenteeID == menteeID {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) StaleSessions(_ context.Context, cutoff time.Time) ([]*Session, error) {
	var out []*Session
	for id := range m.sessions {
		s := m.sessions[id]
		if !s.Open() || s.ScheduledEndsAt == nil || s.ScheduledEndsAt.After(cutoff) {
			continue
		}
		copied := s
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memoryRepo) CloseIfOpen(_ context.Context, s *Session) (bool, error) {
	stored, ok := m.sessions[s.ID]
	if !ok || !stored.Open() {
		return false, nil
	}
	m.sessions[s.ID] = *s
	return true, nil
}

func timeRef(t time.Time) *time.Time { return &t }

func uuidRef(id uuid.UUID) *uuid.UUID { return &id }
