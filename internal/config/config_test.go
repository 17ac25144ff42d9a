package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/playperu/guessactor/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Timezone != "UTC" || !cfg.SeedDemo {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SessionIdle != 30*time.Minute || cfg.CatalogPoll != 2*time.Second {
		t.Errorf("idle/poll = %v/%v", cfg.SessionIdle, cfg.CatalogPoll)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("TIMEZONE", "America/Lima")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SESSION_IDLE", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9999" || cfg.SeedDemo || cfg.SessionIdle != 5*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Lima" {
		t.Errorf("location = %v, %v", loc, err)
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadRejectsZeroIntervals(t *testing.T) {
	t.Setenv("CATALOG_POLL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultTuningMatchesGameDefaults(t *testing.T) {
	tun, err := LoadTuning("")
	if err != nil {
		t.Fatal(err)
	}
	got := tun.Rules()
	want := game.DefaultRules()

	// ad images only exist in the tuning file
	if len(got.AdImages) == 0 {
		t.Error("default tuning has no ad images")
	}
	got.AdImages = nil
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rules = %+v\nwant %+v", got, want)
	}
}

func TestLoadTuningOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("daily_reward: 100\npower_ups:\n  skip: 20\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	tun, err := LoadTuning(path)
	if err != nil {
		t.Fatal(err)
	}
	r := tun.Rules()
	if r.DailyReward != 100 || r.PowerUpCosts[game.PowerUpSkip] != 20 {
		t.Errorf("overridden values not applied: %+v", r)
	}
	if r.PowerUpCosts[game.PowerUpRemove2] != 8 || r.CoinPerCorrect != 2 {
		t.Errorf("defaults lost: %+v", r)
	}
}

func TestLoadTuningErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"malformed":  "stage: [",
		"zero level": "levels:\n  xp_per_level: 0\n",
		"no plays":   "stage:\n  plays_per_day: 0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadTuning(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadTuning(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
