package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mentorbill/services/mentoring"
)

type stubReaper struct {
	closed int
	err    error
	calls  int
}

func (r *stubReaper) Run(context.Context) (int, error) {
	r.calls++
	return r.closed, r.err
}

type stubMentors struct {
	mentors []*mentoring.Mentor
	err     error
}

func (m *stubMentors) ActiveMentors(context.Context) ([]*mentoring.Mentor, error) {
	return m.mentors, m.err
}

type stubGenerator struct {
	billed []uuid.UUID
	failOn uuid.UUID
}

func (g *stubGenerator) GenerateBills(_ context.Context, mentor *mentoring.Mentor, reset bool) ([]*mentoring.Bill, error) {
	if reset {
		return nil, errors.New("scheduled passes must not reset overrides")
	}
	if mentor.ID == g.failOn {
		return nil, errors.New("boom")
	}
	g.billed = append(g.billed, mentor.ID)
	return []*mentoring.Bill{{ID: uuid.New(), MentorID: mentor.ID}}, nil
}

func TestRunOnceBillsEveryMentor(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	gen := &stubGenerator{}
	reaper := &stubReaper{closed: 2}
	mentors := &stubMentors{mentors: []*mentoring.Mentor{{ID: a}, {ID: b}}}

	s := New(gen, reaper, mentors, time.Hour, zerolog.Nop())
	s.RunOnce(context.Background())

	if reaper.calls != 1 {
		t.Fatalf("expected one reaper pass, got %d", reaper.calls)
	}
	if len(gen.billed) != 2 {
		t.Fatalf("expected 2 mentors billed, got %d", len(gen.billed))
	}
	if gen.billed[0] != a || gen.billed[1] != b {
		t.Errorf("mentors billed out of order: %v", gen.billed)
	}
}

func TestRunOnceContinuesPastMentorFailure(t *testing.T) {
	bad, good := uuid.New(), uuid.New()
	gen := &stubGenerator{failOn: bad}
	mentors := &stubMentors{mentors: []*mentoring.Mentor{{ID: bad}, {ID: good}}}

	s := New(gen, &stubReaper{}, mentors, time.Hour, zerolog.Nop())
	s.RunOnce(context.Background())

	if len(gen.billed) != 1 || gen.billed[0] != good {
		t.Fatalf("expected the healthy mentor to be billed, got %v", gen.billed)
	}
}

func TestRunOnceSurvivesReaperFailure(t *testing.T) {
	id := uuid.New()
	gen := &stubGenerator{}
	reaper := &stubReaper{err: errors.New("db down")}
	mentors := &stubMentors{mentors: []*mentoring.Mentor{{ID: id}}}

	s := New(gen, reaper, mentors, time.Hour, zerolog.Nop())
	s.RunOnce(context.Background())

	if len(gen.billed) != 1 {
		t.Fatalf("expected billing to proceed despite reaper failure, got %v", gen.billed)
	}
}

func TestNewRaisesTinyIntervals(t *testing.T) {
	s := New(&stubGenerator{}, &stubReaper{}, &stubMentors{}, time.Second, zerolog.Nop())
	if s.interval != time.Minute {
		t.Fatalf("expected interval raised to a minute, got %s", s.interval)
	}
}
