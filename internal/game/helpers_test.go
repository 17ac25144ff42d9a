package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *fakeClock                   { return &fakeClock{t: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)} }
func calendarOf(c *fakeClock) Calendar       { return Calendar{Now: c.Now, Location: time.UTC} }
func testRand(seed uint64) *rand.Rand        { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

type memStore struct {
	mu    sync.Mutex
	saved map[string]Profile
	saves int
	fail  error
}

func newMemStore() *memStore { return &memStore{saved: map[string]Profile{}} }

func (m *memStore) LoadProfile(_ context.Context, id string, into *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.saved[id]; ok {
		*into = p.Clone()
	}
	return nil
}

func (m *memStore) SaveProfile(_ context.Context, id string, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.saved[id] = p.Clone()
	m.saves++
	return nil
}

type stageMap map[string]Stage

func (m stageMap) ReadOnce(_ context.Context, id string) (Stage, error) {
	s, ok := m[id]
	if !ok {
		return Stage{}, ErrStageNotFound
	}
	return s, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ string, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventType
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func actor(name string, opts ...string) Actor {
	return Actor{Name: name, Image: "https://img.example/" + name + ".jpg", Options: opts}
}

func threeActorStage(id string, free bool) Stage {
	return Stage{
		ID:    id,
		Title: "Stage " + id,
		Free:  free,
		Actors: []Actor{
			actor("Al Pacino", "Robert De Niro", "Joe Pesci", "Al Pacino"),
			actor("Meryl Streep", "Glenn Close", "Sigourney Weaver"),
			actor("Denzel Washington", "Will Smith", "Jamie Foxx", "Denzel Washington"),
		},
	}
}

type harness struct {
	t       *testing.T
	clock   *fakeClock
	store   *memStore
	pub     *recorder
	stages  stageMap
	session *Session
}

func newHarness(t *testing.T, p Profile, stages ...Stage) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		clock:  newClock(),
		store:  newMemStore(),
		pub:    &recorder{},
		stages: stageMap{},
	}
	for _, s := range stages {
		h.stages[s.ID] = s
	}
	h.session = NewSession("player-1", p, Deps{
		Store:     h.store,
		Stages:    h.stages,
		Rules:     DefaultRules(),
		Calendar:  calendarOf(h.clock),
		Publisher: h.pub,
		NewRand:   func() *rand.Rand { return testRand(7) },
	})
	return h
}

// answer picks the correct or a wrong label for the current question.
func (h *harness) answer(correct bool) AnswerResult {
	h.t.Helper()
	s := h.session
	s.mu.Lock()
	name := s.round.Actors[s.round.Index].Name
	var label string
	for _, o := range s.round.options {
		if (o.name == name) == correct && !o.Eliminated {
			label = o.Label
			break
		}
	}
	s.mu.Unlock()

	res, err := s.Answer(context.Background(), label)
	if err != nil {
		h.t.Fatalf("answer(%v): %v", correct, err)
	}
	return res
}
