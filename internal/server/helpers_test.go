package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/database"
	"github.com/playperu/guessactor/internal/events"
	"github.com/playperu/guessactor/internal/game"
	"github.com/playperu/guessactor/internal/migrations"
	"github.com/playperu/guessactor/internal/store"
)

const (
	testAdminEmail    = "admin@guessactor.local"
	testAdminPassword = "admin123"
)

// testActors maps each stage1 image to the actor shown in it.
var testActors = map[string]string{
	"https://img.test/pacino.jpg": "Al Pacino",
	"https://img.test/streep.jpg": "Meryl Streep",
	"https://img.test/hanks.jpg":  "Tom Hanks",
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	router  chi.Router
	catalog *catalog.Catalog
	hub     *events.Hub
	clock   *clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	admins := store.NewAdmins(db)
	if _, err := admins.EnsureAdmin(ctx, testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	cat := catalog.New(store.NewStages(db, logger), logger)
	price := 30
	stages := []game.Stage{
		{
			Title: "Classics",
			Free:  true,
			Actors: []game.Actor{
				{Name: "Al Pacino", Image: "https://img.test/pacino.jpg", Options: []string{"Al Pacino", "Robert De Niro", "Joe Pesci", "Andy Garcia"}},
				{Name: "Meryl Streep", Image: "https://img.test/streep.jpg", Options: []string{"Glenn Close", "Meryl Streep", "Sigourney Weaver"}},
				{Name: "Tom Hanks", Image: "https://img.test/hanks.jpg", Options: []string{"Tom Cruise", "Tim Robbins", "Tom Hanks"}},
			},
		},
		{
			Title: "Modern",
			Price: &price,
			Actors: []game.Actor{
				{Name: "Zendaya", Image: "https://img.test/zendaya.jpg", Options: []string{"Zendaya", "Florence Pugh"}},
			},
		},
	}
	for i, st := range stages {
		if _, err := cat.Write(ctx, []string{"stage1", "stage2"}[i], st); err != nil {
			t.Fatalf("write stage: %v", err)
		}
	}

	clk := &clock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	hub := events.NewHub()
	sessions := game.NewSessions(game.Deps{
		Store:     store.NewProfiles(db, logger),
		Stages:    cat,
		Rules:     game.DefaultRules(),
		Calendar:  game.Calendar{Now: clk.Now, Location: time.UTC},
		Publisher: hub,
		Logger:    logger,
	})

	return &testEnv{
		router: newRouter(logger, Deps{
			Sessions: sessions,
			Catalog:  cat,
			Players:  store.NewPlayers(db),
			Admins:   admins,
			Hub:      hub,
		}),
		catalog: cat,
		hub:     hub,
		clock:   clk,
	}
}

// do sends a request through the router. A non-empty token is sent as a
// bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T) store.Player {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/players", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[store.Player](t, w)
}

func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/login", "", AdminLoginRequest{Email: testAdminEmail, Password: testAdminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v (body %q)", v, err, w.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

// correctLabel finds the option naming the actor in play's image.
func correctLabel(t *testing.T, play game.Play) string {
	t.Helper()
	name, ok := testActors[play.Image]
	if !ok {
		t.Fatalf("unexpected image %q", play.Image)
	}
	for _, o := range play.Options {
		if o.Label == name {
			return o.Label
		}
	}
	t.Fatalf("options %v do not include %q", play.Options, name)
	return ""
}
