package mentoring

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingPolicy means a session's service definition could not be resolved.
// It aborts accounting for that session only; batch callers log it and move on.
var ErrMissingPolicy = errors.New("session has no resolvable service policy")

// MentorNotReadyError explains why a mentor cannot be activated yet. It is
// surfaced to the caller with a human-readable reason and is never retried.
type MentorNotReadyError struct {
	MentorID uuid.UUID
	Reason   string
}

func (e *MentorNotReadyError) Error() string {
	return fmt.Sprintf("mentor %s is not ready: %s", e.MentorID, e.Reason)
}

// recognized scheduling hosts for a mentor's booking URL
var schedulingHosts = []string{"calendly.com", "cal.com"}

// ValidateReadiness checks that a mentor can take bookings before activation:
// a meeting URL, a booking URL on a recognized scheduling host, and at least
// one syllabus to mentor on.
func (m *Mentor) ValidateReadiness() error {
	if m.OnlineMeetingURL == "" {
		return &MentorNotReadyError{MentorID: m.ID, Reason: "no online meeting URL has been set"}
	}
	if !isSchedulingURL(m.BookingURL) {
		return &MentorNotReadyError{MentorID: m.ID, Reason: "booking URL is missing or does not point to a recognized scheduling provider"}
	}
	if len(m.Syllabi) == 0 {
		return &MentorNotReadyError{MentorID: m.ID, Reason: "no syllabus has been associated with this mentor"}
	}
	return nil
}

func isSchedulingURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range schedulingHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
