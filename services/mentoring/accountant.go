package mentoring

import (
	"fmt"
	"time"
)

// runawayThreshold marks a session that almost certainly was never closed:
// nobody mentors for a day straight.
const runawayThreshold = 24 * time.Hour

// ComputeAccountedTime decides how much of a session is billable under the
// given policy. It is pure and total: every combination of missing or corrupt
// timestamps produces a non-negative duration and a human-readable explanation.
//
// Durations carry whole-second precision; rounding to minutes or hours happens
// only downstream, when bills aggregate.
func ComputeAccountedTime(s *Session, policy TimePolicy) (time.Duration, string) {
	duration, message := accountedTime(s, policy)
	if duration < 0 {
		duration = 0
	}

	// Safety clamp on whatever branch produced the value. MaxDuration zero is
	// the no-overtime sentinel handled inside the branch table, so it does not
	// clamp here; with a positive ceiling the clamp is idempotent.
	if policy.MaxDuration > 0 && duration > policy.MaxDuration {
		duration = policy.MaxDuration
		message += " The accounted duration was limited to the maximum allowed for this service."
	}

	return duration, message
}

func accountedTime(s *Session, policy TimePolicy) (time.Duration, string) {
	switch {
	case s.StartedAt == nil && s.MentorJoinedAt == nil:
		return 0, "No one joined this session, nothing will be accounted."

	case s.StartedAt == nil:
		// The mentor showed up, the mentee never did.
		if policy.MissedMeetingGrace > 0 {
			return policy.MissedMeetingGrace, fmt.Sprintf(
				"The mentee never joined the meeting, only %s will be accounted for the bill.",
				policy.MissedMeetingGrace)
		}
		return 0, "The mentee never joined the meeting and no grace applies, no time will be included on the bill."

	case s.MentorJoinedAt == nil:
		return 0, "The mentor never joined the meeting, no time will be accounted."
	}

	started := *s.StartedAt

	if s.EndedAt == nil {
		switch {
		case s.ScheduledEndsAt != nil && s.ScheduledEndsAt.After(started):
			return s.ScheduledEndsAt.Sub(started).Truncate(time.Second),
				"The session never ended, accounting for the expected meeting duration."
		case s.MenteeLeftAt != nil:
			return s.MenteeLeftAt.Sub(started).Truncate(time.Second),
				"The session never ended, accounting until the mentee left the meeting."
		case s.MentorLeftAt != nil:
			return s.MentorLeftAt.Sub(started).Truncate(time.Second),
				"The session never ended, accounting until the mentor left the meeting."
		}
		return policy.StandardDuration, "The session never ended, accounting for the standard duration."
	}

	ended := *s.EndedAt

	if started.After(ended) {
		// Corrupt record, not an error: accounting stays total.
		return 0, "The session started before it ended, nothing will be accounted."
	}

	elapsed := ended.Sub(started).Truncate(time.Second)

	if elapsed > runawayThreshold {
		if s.MenteeLeftAt != nil {
			return s.MenteeLeftAt.Sub(started).Truncate(time.Second),
				"The session lasted way more than it should, accounting based on the time the mentee left."
		}
		return policy.StandardDuration,
			"The session lasted more than a day, it was probably never closed, accounting for the standard duration."
	}

	if elapsed > policy.MaxDuration {
		if policy.MaxDuration == 0 {
			return policy.StandardDuration,
				"No extra time is allowed for this service, accounting for the standard duration."
		}
		return policy.MaxDuration,
			"The session exceeds the maximum allowed duration, accounting for the maximum."
	}

	return elapsed, fmt.Sprintf("The session lasted %s.", elapsed)
}
