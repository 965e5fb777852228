package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mentorbill/services/mentoring"
)

func (a *API) handleResolveSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MentorID    uuid.UUID  `json:"mentor_id"`
		ServiceSlug string     `json:"service"`
		MenteeID    *uuid.UUID `json:"mentee_id"`
		AsMentor    bool       `json:"as_mentor"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.MentorID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("mentor_id is required"))
		return
	}
	if req.ServiceSlug == "" {
		respondError(w, http.StatusBadRequest, errors.New("service is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	mentor, err := a.repo.MentorByID(ctx, req.MentorID)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("mentor not found"))
		return
	}
	svc, err := a.repo.ServiceBySlug(ctx, req.ServiceSlug)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("service not found"))
		return
	}

	session, err := a.resolver.ResolveOrCreate(ctx, mentor, svc, req.MenteeID, req.AsMentor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (a *API) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid session id"))
		return
	}

	var req struct {
		Failed  bool   `json:"failed"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	session, err := a.repo.SessionByID(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}

	now := time.Now().UTC()
	if req.Failed {
		err = session.Fail(now, req.Message)
	} else {
		err = session.Complete(now)
	}
	if err != nil {
		respondError(w, http.StatusConflict, err)
		return
	}

	ok, err := a.repo.CloseIfOpen(ctx, session)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		respondError(w, http.StatusConflict, errors.New("session already closed"))
		return
	}

	if session.Status == mentoring.StatusCompleted {
		// Prompt the mentor for feedback; delivery is someone else's problem.
		a.publishJSON(ctx, sessionsCompletedTopic, map[string]any{
			"session_id": session.ID,
			"mentor_id":  session.MentorID,
			"ended_at":   session.EndedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (a *API) handleExtendSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid session id"))
		return
	}

	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Minutes <= 0 {
		req.Minutes = 30
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	session, err := a.repo.SessionByID(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	if !session.Open() {
		respondError(w, http.StatusConflict, errors.New("session already closed"))
		return
	}

	newEnd := time.Now().UTC().Add(time.Duration(req.Minutes) * time.Minute)
	if session.ScheduledEndsAt != nil && session.ScheduledEndsAt.After(newEnd) {
		newEnd = *session.ScheduledEndsAt
	}
	session.ScheduledEndsAt = &newEnd

	if a.rooms != nil && session.RoomName != "" {
		if err := a.rooms.ExtendRoom(ctx, session.RoomName, newEnd); err != nil {
			a.log.Warn().Err(err).Str("room", session.RoomName).Msg("room extension failed")
		}
	}

	if err := a.repo.SaveSession(ctx, session); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (a *API) handleReapSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	closed, err := a.reaper.Run(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"closed": closed})
}
