package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mentorbill/services/statements"
)

func (a *API) handleGenerateBills(w http.ResponseWriter, r *http.Request) {
	mentorID, err := uuid.Parse(r.URL.Query().Get("mentor"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("mentor query parameter is required"))
		return
	}
	reset, _ := strconv.ParseBool(r.URL.Query().Get("reset"))

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	mentor, err := a.repo.MentorByID(ctx, mentorID)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("mentor not found"))
		return
	}

	bills, err := a.generator.GenerateBills(ctx, mentor, reset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	for _, bill := range bills {
		a.publishJSON(ctx, billsGeneratedTopic, map[string]any{
			"bill_id":     bill.ID,
			"mentor_id":   bill.MentorID,
			"started_at":  bill.StartedAt,
			"ended_at":    bill.EndedAt,
			"total_price": bill.TotalPrice,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (a *API) handleReleaseBill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid bill id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	bill, err := a.repo.BillByID(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("bill not found"))
		return
	}

	if err := a.generator.ReleaseBill(ctx, bill); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bill": bill})
}

// handleExportStatement renders the archive statement for a bill and uploads
// it to the statement bucket.
func (a *API) handleExportStatement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid bill id"))
		return
	}
	if a.store.S3 == nil || a.config.StatementsBucket == "" {
		respondError(w, http.StatusServiceUnavailable, errors.New("statement archive not configured"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	exporter := statements.NewExporter(a.repo, a.store.S3, a.config.StatementsBucket, a.log)
	key, err := exporter.Export(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"key": key})
}

func (a *API) handleListBills(w http.ResponseWriter, r *http.Request) {
	mentorID, err := uuid.Parse(r.URL.Query().Get("mentor"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("mentor query parameter is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	bills, err := a.repo.BillsForMentor(ctx, mentorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bills": bills})
}
