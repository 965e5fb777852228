package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mentorbill/services/mentoring"
)

func (a *API) handleActivateMentor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid mentor id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	mentor, err := a.repo.MentorByID(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("mentor not found"))
		return
	}

	if err := mentor.ValidateReadiness(); err != nil {
		var notReady *mentoring.MentorNotReadyError
		if errors.As(err, &notReady) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "mentor is not ready to be activated",
				"reason": notReady.Reason,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	if err := a.repo.SetMentorActive(ctx, id, true); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	mentor.Active = true
	respondJSON(w, http.StatusOK, map[string]any{"mentor": mentor})
}
