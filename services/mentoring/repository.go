package mentoring

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary of the mentoring core. No storage
// engine is mandated; the API layer provides a GORM-backed implementation and
// the tests an in-memory one.
//
// Lookup methods return (nil, nil) when no matching record exists.
type Repository interface {
	SaveSession(ctx context.Context, s *Session) error
	SaveBill(ctx context.Context, b *Bill) error

	// UnbilledSessions returns a mentor's billable backlog: COMPLETED or
	// FAILED sessions with billing allowed and a known start time that are
	// either unassigned or still attached to a DUE bill of the same academy.
	UnbilledSessions(ctx context.Context, mentorID uuid.UUID) ([]*Session, error)

	// LatestBill returns the mentor's most recent bill by window start,
	// skipping IGNORED bills (released bills must not anchor the cursor).
	LatestBill(ctx context.Context, mentorID uuid.UUID) (*Bill, error)

	// OpenBill returns the mentor's DUE bill, if any.
	OpenBill(ctx context.Context, mentorID uuid.UUID) (*Bill, error)

	SessionsForBill(ctx context.Context, billID uuid.UUID) ([]*Session, error)

	// PolicyFor resolves the time policy of the session's service. Returns
	// ErrMissingPolicy when the service cannot be found.
	PolicyFor(ctx context.Context, s *Session) (TimePolicy, error)

	// OpenSessions returns the mentor's PENDING and STARTED sessions, most
	// recently mentor-joined first.
	OpenSessions(ctx context.Context, mentorID uuid.UUID) ([]*Session, error)

	// OpenSessionForPair returns the PENDING or STARTED session for the exact
	// mentor and mentee pair, if one exists.
	OpenSessionForPair(ctx context.Context, mentorID, menteeID uuid.UUID) (*Session, error)

	// StaleSessions returns PENDING and STARTED sessions whose scheduled end
	// is at or before the cutoff.
	StaleSessions(ctx context.Context, cutoff time.Time) ([]*Session, error)

	// CloseIfOpen persists the session's terminal state only if the stored row
	// is still PENDING or STARTED, reporting whether the transition happened.
	// This keeps concurrent reapers and manual closes idempotent.
	CloseIfOpen(ctx context.Context, s *Session) (bool, error)
}
