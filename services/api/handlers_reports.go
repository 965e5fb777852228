package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	pkgdb "mentorbill/pkg/db"
)

type unbilledRow struct {
	MentorID          uuid.UUID `db:"mentor_id" json:"mentor_id"`
	Sessions          int64     `db:"sessions" json:"sessions"`
	EarliestStartedAt time.Time `db:"earliest_started_at" json:"earliest_started_at"`
	SuggestedMinutes  float64   `db:"suggested_minutes" json:"suggested_minutes"`
}

const unbilledReportQuery = `
SELECT s.mentor_id,
       COUNT(*) AS sessions,
       MIN(s.started_at) AS earliest_started_at,
       COALESCE(SUM(s.suggested_seconds) / 60.0, 0) AS suggested_minutes
FROM sessions s
WHERE s.allow_billing
  AND s.started_at IS NOT NULL
  AND s.status IN ('COMPLETED', 'FAILED')
  AND s.bill_id IS NULL
GROUP BY s.mentor_id
ORDER BY earliest_started_at ASC`

// handleUnbilledReport summarises the backlog that the next billing run will
// pick up, one row per mentor. Served straight from pgx since it is a plain
// aggregate with no model round-trip.
func (a *API) handleUnbilledReport(w http.ResponseWriter, r *http.Request) {
	if a.store.DB == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("reporting pool not configured"))
		return
	}

	var rows []unbilledRow
	if err := pkgdb.Select(r.Context(), a.store.DB, &rows, unbilledReportQuery); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"mentors": rows})
}
