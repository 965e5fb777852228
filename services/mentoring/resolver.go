package mentoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AbandonedMessage is recorded on mentee-less sessions closed by the resolver.
const AbandonedMessage = "closed automatically because the mentor forgot to specify the mentee and the mentee never joined"

// Room is a provisioned video meeting.
type Room struct {
	URL  string
	Name string
}

// RoomProvider provisions and extends video rooms. Failures are logged by
// callers and never block a session state transition.
type RoomProvider interface {
	CreateRoom(ctx context.Context, expiresAt time.Time) (Room, error)
	ExtendRoom(ctx context.Context, name string, expiresAt time.Time) error
}

// Resolver matches or creates the in-flight session a caller should join,
// deduplicating concurrent join attempts and cleaning up abandoned PENDING
// sessions along the way.
type Resolver struct {
	repo  Repository
	rooms RoomProvider
	log   zerolog.Logger
	now   func() time.Time
}

// NewResolver wires a resolver to its repository and room provider. rooms may
// be nil, in which case sessions are created without a meeting room.
func NewResolver(repo Repository, rooms RoomProvider, log zerolog.Logger) (*Resolver, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	return &Resolver{repo: repo, rooms: rooms, log: log, now: time.Now}, nil
}

// ResolveOrCreate returns the session the caller should join. asMentor marks
// the mentor joining their own room; otherwise the caller is the mentee
// identified by menteeID.
func (r *Resolver) ResolveOrCreate(ctx context.Context, mentor *Mentor, svc *Service, menteeID *uuid.UUID, asMentor bool) (*Session, error) {
	if mentor == nil {
		return nil, errors.New("mentor is required")
	}
	if svc == nil {
		return nil, errors.New("service is required")
	}

	if menteeID != nil {
		existing, err := r.repo.OpenSessionForPair(ctx, mentor.ID, *menteeID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	open, err := r.repo.OpenSessions(ctx, mentor.ID)
	if err != nil {
		return nil, err
	}

	if asMentor {
		// The mentor is (re)joining. Anything still open was abandoned, except
		// the room they most recently joined without a mentee assigned: they
		// may still be waiting for someone.
		keep := latestMentorJoinedWithoutMentee(open)
		for _, s := range open {
			if keep != nil && s.ID == keep.ID {
				continue
			}
			r.closeAbandoned(ctx, s)
		}
		if keep != nil {
			if menteeID != nil {
				keep.MenteeID = menteeID
				if err := r.repo.SaveSession(ctx, keep); err != nil {
					return nil, err
				}
			}
			return keep, nil
		}
		return r.create(ctx, mentor, svc, menteeID)
	}

	// A mentee arrived without a matching pair session. If the mentor left a
	// room open without naming a mentee, the mentee claims the freshest one.
	if menteeID != nil {
		if claim := latestMentorJoinedWithoutMentee(pendingOnly(open)); claim != nil {
			claim.MenteeID = menteeID
			if err := r.repo.SaveSession(ctx, claim); err != nil {
				return nil, err
			}
			for _, s := range pendingOnly(open) {
				if s.ID == claim.ID || s.MenteeID != nil {
					continue
				}
				r.closeAbandoned(ctx, s)
			}
			return claim, nil
		}
	}

	return r.create(ctx, mentor, svc, menteeID)
}

func (r *Resolver) create(ctx context.Context, mentor *Mentor, svc *Service, menteeID *uuid.UUID) (*Session, error) {
	now := r.now()
	endsAt := now.Add(svc.Policy.StandardDuration)

	s := &Session{
		ID:              uuid.New(),
		MentorID:        mentor.ID,
		MenteeID:        menteeID,
		AcademyID:       svc.AcademyID,
		ServiceID:       svc.ID,
		Status:          StatusPending,
		AllowBilling:    true,
		ScheduledEndsAt: &endsAt,
	}

	if r.rooms != nil {
		room, err := r.rooms.CreateRoom(ctx, endsAt)
		if err != nil {
			r.log.Warn().Err(err).Str("mentor", mentor.ID.String()).Msg("could not provision a video room")
		} else {
			s.OnlineMeetingURL = room.URL
			s.RoomName = room.Name
		}
	}

	if err := r.repo.SaveSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Resolver) closeAbandoned(ctx context.Context, s *Session) {
	if err := s.Fail(r.now(), AbandonedMessage); err != nil {
		return
	}
	if _, err := r.repo.CloseIfOpen(ctx, s); err != nil {
		r.log.Error().Err(err).Str("session", s.ID.String()).Msg("could not close abandoned session")
	}
}

func latestMentorJoinedWithoutMentee(sessions []*Session) *Session {
	var latest *Session
	for _, s := range sessions {
		if s.MenteeID != nil || s.MentorJoinedAt == nil {
			continue
		}
		if latest == nil || s.MentorJoinedAt.After(*latest.MentorJoinedAt) {
			latest = s
		}
	}
	return latest
}

func pendingOnly(sessions []*Session) []*Session {
	var out []*Session
	for _, s := range sessions {
		if s.Status == StatusPending {
			out = append(out, s)
		}
	}
	return out
}
