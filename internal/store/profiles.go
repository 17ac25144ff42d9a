package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/playperu/guessactor/internal/game"
)

// profileField maps one storage key to a profile field.
type profileField struct {
	key  string
	load func(raw []byte, p *game.Profile) error
	save func(p game.Profile) any
}

// The key names match the ones the browser client kept in localStorage, so
// exported client state can be imported row for row.
var profileFields = []profileField{
	{"gt_coins", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Coins) }, func(p game.Profile) any { return p.Coins }},
	{"gt_xp", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.XP) }, func(p game.Profile) any { return p.XP }},
	{"gt_level", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Level) }, func(p game.Profile) any { return p.Level }},
	{"gt_streak", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Streak) }, func(p game.Profile) any { return p.Streak }},
	{"gt_completed", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Completed) }, func(p game.Profile) any { return nonNil(p.Completed) }},
	{"gt_unlocked", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Unlocked) }, func(p game.Profile) any { return nonNil(p.Unlocked) }},
	{"gt_stage_stars", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Stars) }, func(p game.Profile) any { return p.Stars }},
	{"gt_badges", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Badges) }, func(p game.Profile) any { return nonNil(p.Badges) }},
	{"gt_play_count", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.PlayCount) }, func(p game.Profile) any { return p.PlayCount }},
	{"adData", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Ads) }, func(p game.Profile) any { return p.Ads }},
	{"gt_daily_reward", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Daily) }, func(p game.Profile) any { return p.Daily }},
	{"gt_sound_pref", func(raw []byte, p *game.Profile) error { return decodeInto(raw, &p.Sound) }, func(p game.Profile) any { return p.Sound }},
}

// decodeInto replaces *dst only when raw decodes cleanly.
func decodeInto[T any](raw []byte, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Profiles implements game.ProfileStore.
type Profiles struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewProfiles(db *sql.DB, logger *slog.Logger) *Profiles {
	return &Profiles{db: db, logger: logger}
}

func (s *Profiles) LoadProfile(ctx context.Context, playerID string, into *game.Profile) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM player_state WHERE player_id = ?`, playerID,
	)
	if err != nil {
		return fmt.Errorf("querying profile: %w", err)
	}
	defer rows.Close()

	stored := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning profile row: %w", err)
		}
		stored[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}

	for _, f := range profileFields {
		raw, ok := stored[f.key]
		if !ok {
			continue
		}
		if err := f.load(raw, into); err != nil {
			s.logger.Warn("ignoring unreadable profile value",
				"player_id", playerID,
				"key", f.key,
				"error", err,
			)
		}
	}
	return nil
}

// SaveProfile writes every key in one transaction.
func (s *Profiles) SaveProfile(ctx context.Context, playerID string, p game.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, f := range profileFields {
		data, err := json.Marshal(f.save(p))
		if err != nil {
			return fmt.Errorf("encoding %s: %w", f.key, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO player_state (player_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(player_id, key) DO UPDATE SET value = excluded.value`,
			playerID, f.key, string(data),
		)
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.key, err)
		}
	}
	return tx.Commit()
}
