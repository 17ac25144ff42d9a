package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/playperu/guessactor/internal/database"
	"github.com/playperu/guessactor/internal/game"
	"github.com/playperu/guessactor/internal/migrations"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func registerPlayer(t *testing.T, db *sql.DB) Player {
	t.Helper()
	p, err := NewPlayers(db).Register(context.Background())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func TestPlayers(t *testing.T) {
	db := openDB(t)
	players := NewPlayers(db)
	ctx := context.Background()

	p, err := players.Register(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Token == "" || p.ID == p.Token {
		t.Fatalf("player = %+v", p)
	}

	id, err := players.PlayerFromToken(ctx, p.Token)
	if err != nil || id != p.ID {
		t.Errorf("PlayerFromToken = %q, %v", id, err)
	}
	if _, err := players.PlayerFromToken(ctx, "bogus"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bogus token err = %v", err)
	}
	if ok, err := players.Exists(ctx, p.ID); err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
}

func TestProfilesRoundTrip(t *testing.T) {
	db := openDB(t)
	profiles := NewProfiles(db, discardLogger())
	player := registerPlayer(t, db)
	ctx := context.Background()

	want := game.Profile{
		Coins:     42,
		XP:        17,
		Level:     3,
		Streak:    4,
		Completed: []string{"stage1"},
		Unlocked:  []string{"stage1", "stage2"},
		Stars:     map[string]int{"stage1": 2},
		Badges:    []game.Badge{game.BadgeStreak5, game.BadgeDaily},
		PlayCount: map[string]map[string]int{"2025-03-14": {"stage1": 2}},
		Ads:       game.AdViews{Date: "2025-03-14", Count: 1},
		Daily:     &game.DailyClaim{Date: "2025-03-14", Claimed: true},
		Sound:     game.SoundPrefs{Enabled: false, Volume: 0.25},
	}
	if err := profiles.SaveProfile(ctx, player.ID, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := game.NewProfile(game.DefaultRules())
	if err := profiles.LoadProfile(ctx, player.ID, &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded %+v\nwant %+v", got, want)
	}

	want.Coins = 7
	if err := profiles.SaveProfile(ctx, player.ID, want); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM player_state WHERE player_id = ?`, player.ID).Scan(&n)
	if n != len(profileFields) {
		t.Errorf("rows = %d, want %d", n, len(profileFields))
	}
}

func TestProfilesLoadKeepsDefaults(t *testing.T) {
	db := openDB(t)
	profiles := NewProfiles(db, discardLogger())
	player := registerPlayer(t, db)
	ctx := context.Background()

	for key, value := range map[string]string{
		"gt_coins":    `"lots"`,
		"gt_xp":       `12`,
		"gt_unlocked": `{broken`,
	} {
		_, err := db.Exec(`INSERT INTO player_state (player_id, key, value) VALUES (?, ?, ?)`,
			player.ID, key, value)
		if err != nil {
			t.Fatal(err)
		}
	}

	p := game.NewProfile(game.DefaultRules())
	if err := profiles.LoadProfile(ctx, player.ID, &p); err != nil {
		t.Fatal(err)
	}
	if p.Coins != 0 || p.XP != 12 {
		t.Errorf("coins=%d xp=%d, want 0/12", p.Coins, p.XP)
	}
	if !reflect.DeepEqual(p.Unlocked, []string{"stage1"}) {
		t.Errorf("unlocked = %v, want default", p.Unlocked)
	}
	if !p.Sound.Enabled || p.Sound.Volume != 0.8 {
		t.Errorf("sound = %+v, want default", p.Sound)
	}
}

func TestProfilesLoadUnknownPlayer(t *testing.T) {
	db := openDB(t)
	profiles := NewProfiles(db, discardLogger())

	p := game.NewProfile(game.DefaultRules())
	if err := profiles.LoadProfile(context.Background(), "nobody", &p); err != nil {
		t.Fatal(err)
	}
	if p.Level != 1 || p.Coins != 0 {
		t.Errorf("profile = %+v", p)
	}
}

func TestProfilesSaveIsAllOrNothing(t *testing.T) {
	db := openDB(t)
	profiles := NewProfiles(db, discardLogger())

	err := profiles.SaveProfile(context.Background(), "unregistered", game.NewProfile(game.DefaultRules()))
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM player_state`).Scan(&n)
	if n != 0 {
		t.Errorf("rows = %d after failed save", n)
	}
}

func TestStagesCRUD(t *testing.T) {
	db := openDB(t)
	stages := NewStages(db, discardLogger())
	ctx := context.Background()

	price := 30
	s1 := game.Stage{ID: "stage1", Title: "Classics", Free: true, Actors: []game.Actor{
		{Name: "Al Pacino", Image: "https://img/a.jpg", Options: []string{"Al Pacino", "Joe Pesci"}},
	}}
	s2 := game.Stage{ID: "stage2", Title: "Modern", Price: &price, Actors: s1.Actors}

	for _, st := range []game.Stage{s2, s1} {
		if err := stages.Put(ctx, st); err != nil {
			t.Fatal(err)
		}
	}

	got, err := stages.Get(ctx, "stage2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, s2) {
		t.Errorf("get = %+v, want %+v", got, s2)
	}

	s2.Title = "Modern Era"
	if err := stages.Put(ctx, s2); err != nil {
		t.Fatal(err)
	}
	list, err := stages.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].ID != "stage2" || list[1].Title != "Modern Era" {
		t.Errorf("list = %+v", list)
	}

	if err := stages.Delete(ctx, "stage2"); err != nil {
		t.Fatal(err)
	}
	if _, err := stages.Get(ctx, "stage2"); !errors.Is(err, game.ErrStageNotFound) {
		t.Errorf("get deleted err = %v", err)
	}
	if err := stages.Delete(ctx, "stage2"); !errors.Is(err, game.ErrStageNotFound) {
		t.Errorf("delete missing err = %v", err)
	}
	if n, _ := stages.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestStagesVersionCountsEveryChange(t *testing.T) {
	db := openDB(t)
	stages := NewStages(db, discardLogger())
	ctx := context.Background()

	if v, err := stages.Version(ctx); err != nil || v != 0 {
		t.Fatalf("initial version = %d, %v", v, err)
	}

	st := game.Stage{ID: "stage1", Title: "Classics", Actors: []game.Actor{
		{Name: "Al Pacino", Image: "https://img/a.jpg"},
	}}
	if err := stages.Put(ctx, st); err != nil {
		t.Fatal(err)
	}
	st.Title = "Classics II"
	if err := stages.Put(ctx, st); err != nil {
		t.Fatal(err)
	}
	if err := stages.Delete(ctx, "stage1"); err != nil {
		t.Fatal(err)
	}
	_ = stages.Delete(ctx, "stage1")

	// a second handle on the same database, as another process would have
	other := NewStages(db, discardLogger())
	if v, err := other.Version(ctx); err != nil || v != 3 {
		t.Errorf("version = %d, %v, want 3", v, err)
	}
}

func TestStagesSkipMalformed(t *testing.T) {
	db := openDB(t)
	stages := NewStages(db, discardLogger())
	ctx := context.Background()

	if err := stages.Put(ctx, game.Stage{ID: "good", Title: "Good"}); err != nil {
		t.Fatal(err)
	}
	_, err := db.Exec(`INSERT INTO stages (id, title, data) VALUES ('bad', 'Bad', jsonb('{"actors": "oops"}'))`)
	if err != nil {
		t.Fatal(err)
	}

	list, err := stages.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "good" {
		t.Errorf("list = %+v", list)
	}
	if _, err := stages.Get(ctx, "bad"); err == nil {
		t.Error("expected decode error for malformed stage")
	}
}

func TestAdmins(t *testing.T) {
	db := openDB(t)
	admins := NewAdmins(db)
	ctx := context.Background()

	created, err := admins.EnsureAdmin(ctx, " Admin@Example.com ", "s3cret")
	if err != nil || !created {
		t.Fatalf("ensure = %v, %v", created, err)
	}
	created, err = admins.EnsureAdmin(ctx, "other@example.com", "x")
	if err != nil || created {
		t.Errorf("second ensure = %v, %v", created, err)
	}

	a, err := admins.Authenticate(ctx, "admin@example.com", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if a.Email != "admin@example.com" {
		t.Errorf("email = %q", a.Email)
	}
	if _, err := admins.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := admins.Authenticate(ctx, "other@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown admin err = %v", err)
	}

	sid, err := admins.CreateSession(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	got, err := admins.AdminFromSession(ctx, sid)
	if err != nil || got != a {
		t.Errorf("session admin = %+v, %v", got, err)
	}
	if err := admins.DeleteSession(ctx, sid); err != nil {
		t.Fatal(err)
	}
	if _, err := admins.AdminFromSession(ctx, sid); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session err = %v", err)
	}
}
