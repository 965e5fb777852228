package mentoring

import (
	"time"

	"github.com/google/uuid"
)

// BillStatus enumerates the payment states of a monthly bill.
type BillStatus string

const (
	BillStatusDue      BillStatus = "DUE"
	BillStatusApproved BillStatus = "APPROVED"
	BillStatusPaid     BillStatus = "PAID"
	BillStatusIgnored  BillStatus = "IGNORED"
)

// Bill aggregates a mentor's accounted session time over one calendar-aligned
// billing window. At most one DUE bill may be open per mentor and academy, and
// a mentor's bill windows never overlap.
type Bill struct {
	ID        uuid.UUID
	MentorID  uuid.UUID
	AcademyID uuid.UUID

	Status BillStatus

	// StartedAt/EndedAt bound the window of session start times this bill
	// covers. EndedAt is always the last second of a calendar month.
	StartedAt time.Time
	EndedAt   time.Time

	TotalMinutes    float64
	TotalHours      float64
	TotalPrice      float64
	OvertimeMinutes float64
}

// Mentor is the billable party: price, booking surface, and activation state.
type Mentor struct {
	ID        uuid.UUID
	AcademyID uuid.UUID
	Slug      string
	Email     string

	PricePerHour float64
	Active       bool

	OnlineMeetingURL string
	BookingURL       string
	Syllabi          []string
}
