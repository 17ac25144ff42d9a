package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Player is a registered device identity.
type Player struct {
	ID    string `json:"playerId"`
	Token string `json:"token"`
}

type Players struct {
	db *sql.DB
}

func NewPlayers(db *sql.DB) *Players {
	return &Players{db: db}
}

// Register creates a new anonymous player with a bearer token.
func (s *Players) Register(ctx context.Context) (Player, error) {
	p := Player{ID: newID(), Token: newID()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, token) VALUES (?, ?)`, p.ID, p.Token,
	)
	if err != nil {
		return Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, nil
}

// PlayerFromToken resolves a bearer token to a player id.
func (s *Players) PlayerFromToken(ctx context.Context, token string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM players WHERE token = ?`, token,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *Players) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE id = ?`, id,
	).Scan(&n)
	return n > 0, err
}
