package mentoring

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// staleAfter is how far past its scheduled end a session may drift before the
// reaper force-closes it. Anything younger may still legitimately be running.
const staleAfter = 2 * time.Hour

// ReapedMessage is recorded on sessions the reaper force-closes.
const ReapedMessage = "closed automatically because its scheduled end was two hours ago or more"

// Reaper force-fails PENDING and STARTED sessions whose scheduled end has long
// passed without anyone closing them.
type Reaper struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewReaper wires a reaper to its repository.
func NewReaper(repo Repository, log zerolog.Logger) (*Reaper, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	return &Reaper{repo: repo, log: log, now: time.Now}, nil
}

// Run performs one reaping pass and returns how many sessions were closed.
// Per-session failures are logged and skipped so one corrupt row never blocks
// the rest of the pass. Safe to re-run: the close is conditional on the row
// still being open.
func (r *Reaper) Run(ctx context.Context) (int, error) {
	now := r.now()
	stale, err := r.repo.StaleSessions(ctx, now.Add(-staleAfter))
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, s := range stale {
		if err := s.Fail(now, ReapedMessage); err != nil {
			// Already terminal; nothing to do.
			continue
		}
		ok, err := r.repo.CloseIfOpen(ctx, s)
		if err != nil {
			r.log.Error().Err(err).Str("session", s.ID.String()).Msg("reaper could not close session")
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}
