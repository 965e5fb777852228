package mentoring

import (
	"time"

	"github.com/google/uuid"
)

// TimePolicy is the duration ruleset attached to a mentorship service.
type TimePolicy struct {
	// StandardDuration is the nominal length of one session, e.g. one hour.
	StandardDuration time.Duration
	// MaxDuration caps how much of a single session is billable. Zero is a
	// sentinel meaning overtime is not allowed at all: sessions that run past
	// the standard duration fall back to it.
	MaxDuration time.Duration
	// MissedMeetingGrace is paid to the mentor when the mentee never shows.
	MissedMeetingGrace time.Duration
}

// Service is a mentorship service definition: what kind of session is being
// sold and under which time policy it is accounted.
type Service struct {
	ID        uuid.UUID
	AcademyID uuid.UUID
	Slug      string
	Name      string
	Policy    TimePolicy
}
