package mentoring

import (
	"strings"
	"testing"
	"time"
)

var standardPolicy = TimePolicy{
	StandardDuration:   time.Hour,
	MaxDuration:        2 * time.Hour,
	MissedMeetingGrace: 10 * time.Minute,
}

func TestComputeAccountedTime(t *testing.T) {
	base := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session Session
		policy  TimePolicy
		want    time.Duration
		wantMsg string
	}{
		{
			name:    "nobody joined",
			session: Session{},
			policy:  standardPolicy,
			want:    0,
			wantMsg: "No one joined",
		},
		{
			name:    "mentee never joined with grace",
			session: Session{MentorJoinedAt: timeRef(base)},
			policy:  standardPolicy,
			want:    10 * time.Minute,
			wantMsg: "accounted for the bill",
		},
		{
			name:    "mentee never joined without grace",
			session: Session{MentorJoinedAt: timeRef(base)},
			policy:  TimePolicy{StandardDuration: time.Hour, MaxDuration: 2 * time.Hour},
			want:    0,
			wantMsg: "no time will be included",
		},
		{
			name:    "mentor never joined",
			session: Session{StartedAt: timeRef(base)},
			policy:  standardPolicy,
			want:    0,
			wantMsg: "mentor never joined",
		},
		{
			name: "never ended with scheduled end",
			session: Session{
				StartedAt:       timeRef(base),
				MentorJoinedAt:  timeRef(base),
				ScheduledEndsAt: timeRef(base.Add(45 * time.Minute)),
			},
			policy:  standardPolicy,
			want:    45 * time.Minute,
			wantMsg: "expected meeting duration",
		},
		{
			name: "never ended with scheduled end in the past",
			session: Session{
				StartedAt:       timeRef(base),
				MentorJoinedAt:  timeRef(base),
				ScheduledEndsAt: timeRef(base.Add(-5 * time.Minute)),
				MenteeLeftAt:    timeRef(base.Add(30 * time.Minute)),
			},
			policy:  standardPolicy,
			want:    30 * time.Minute,
			wantMsg: "mentee left",
		},
		{
			name: "never ended mentor left",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
				MentorLeftAt:   timeRef(base.Add(50 * time.Minute)),
			},
			policy:  standardPolicy,
			want:    50 * time.Minute,
			wantMsg: "mentor left",
		},
		{
			name: "never ended no markers",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
			},
			policy:  standardPolicy,
			want:    time.Hour,
			wantMsg: "standard duration",
		},
		{
			name: "started after it ended",
			session: Session{
				StartedAt:      timeRef(base.Add(time.Hour)),
				MentorJoinedAt: timeRef(base),
				EndedAt:        timeRef(base),
			},
			policy:  standardPolicy,
			want:    0,
			wantMsg: "started before it ended",
		},
		{
			name: "runaway session with mentee left",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
				EndedAt:        timeRef(base.Add(26 * time.Hour)),
				MenteeLeftAt:   timeRef(base.Add(90 * time.Minute)),
			},
			policy:  standardPolicy,
			want:    90 * time.Minute,
			wantMsg: "way more than it should",
		},
		{
			name: "runaway session without mentee left",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
				EndedAt:        timeRef(base.Add(30 * time.Hour)),
			},
			policy:  standardPolicy,
			want:    time.Hour,
			wantMsg: "probably never closed",
		},
		{
			name: "normal close",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
				EndedAt:        timeRef(base.Add(72 * time.Minute)),
			},
			policy:  standardPolicy,
			want:    72 * time.Minute,
			wantMsg: "lasted",
		},
		{
			name: "over the maximum",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
				EndedAt:        timeRef(base.Add(3 * time.Hour)),
			},
			policy:  standardPolicy,
			want:    2 * time.Hour,
			wantMsg: "maximum",
		},
		{
			name: "overtime disallowed sentinel",
			session: Session{
				StartedAt:      timeRef(base),
				MentorJoinedAt: timeRef(base),
				EndedAt:        timeRef(base.Add(90 * time.Minute)),
			},
			policy:  TimePolicy{StandardDuration: time.Hour},
			want:    time.Hour,
			wantMsg: "No extra time is allowed",
		},
		{
			name: "grace above the maximum gets clamped",
			session: Session{
				MentorJoinedAt: timeRef(base),
			},
			policy: TimePolicy{
				StandardDuration:   time.Hour,
				MaxDuration:        5 * time.Minute,
				MissedMeetingGrace: 10 * time.Minute,
			},
			want:    5 * time.Minute,
			wantMsg: "limited to the maximum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := ComputeAccountedTime(&tt.session, tt.policy)
			if got != tt.want {
				t.Fatalf("ComputeAccountedTime() = %v, want %v (msg %q)", got, tt.want, msg)
			}
			if !strings.Contains(msg, tt.wantMsg) {
				t.Fatalf("message %q does not contain %q", msg, tt.wantMsg)
			}
		})
	}
}

// Every combination of present/missing lifecycle timestamps must produce a
// non-negative duration and a non-empty message.
func TestComputeAccountedTimeTotality(t *testing.T) {
	base := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	policies := []TimePolicy{
		standardPolicy,
		{StandardDuration: time.Hour},
		{},
	}

	optional := func(present bool, offset time.Duration) *time.Time {
		if !present {
			return nil
		}
		return timeRef(base.Add(offset))
	}

	for mask := 0; mask < 32; mask++ {
		s := Session{
			StartedAt:       optional(mask&1 != 0, 0),
			MentorJoinedAt:  optional(mask&2 != 0, -2*time.Minute),
			EndedAt:         optional(mask&4 != 0, 55*time.Minute),
			MenteeLeftAt:    optional(mask&8 != 0, 50*time.Minute),
			MentorLeftAt:    optional(mask&16 != 0, 52*time.Minute),
			ScheduledEndsAt: optional(mask&16 != 0, time.Hour),
		}
		for _, policy := range policies {
			got, msg := ComputeAccountedTime(&s, policy)
			if got < 0 {
				t.Fatalf("mask %05b: negative duration %v", mask, got)
			}
			if msg == "" {
				t.Fatalf("mask %05b: empty message", mask)
			}
		}
	}
}

// Applying the safety clamp a second time must never change the result.
func TestComputeAccountedTimeClampIdempotence(t *testing.T) {
	base := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	sessions := []Session{
		{StartedAt: timeRef(base), MentorJoinedAt: timeRef(base), EndedAt: timeRef(base.Add(5 * time.Hour))},
		{StartedAt: timeRef(base), MentorJoinedAt: timeRef(base), ScheduledEndsAt: timeRef(base.Add(6 * time.Hour))},
		{MentorJoinedAt: timeRef(base)},
	}

	for i := range sessions {
		got, _ := ComputeAccountedTime(&sessions[i], standardPolicy)
		clamped := got
		if standardPolicy.MaxDuration > 0 && clamped > standardPolicy.MaxDuration {
			clamped = standardPolicy.MaxDuration
		}
		if clamped != got {
			t.Fatalf("session %d: clamp changed %v to %v on second application", i, got, clamped)
		}
	}
}
