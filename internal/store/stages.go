package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playperu/guessactor/internal/game"
)

// Stages stores one JSONB document per stage.
type Stages struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStages(db *sql.DB, logger *slog.Logger) *Stages {
	return &Stages{db: db, logger: logger}
}

// List returns every readable stage ordered by id. Documents that fail
// to decode are logged and skipped.
func (s *Stages) List(ctx context.Context) ([]game.Stage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, json(data) FROM stages ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying stages: %w", err)
	}
	defer rows.Close()

	stages := []game.Stage{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		st, err := decodeStage(id, data)
		if err != nil {
			s.logger.Warn("skipping malformed stage", "stage_id", id, "error", err)
			continue
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func (s *Stages) Get(ctx context.Context, id string) (game.Stage, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM stages WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Stage{}, game.ErrStageNotFound
	}
	if err != nil {
		return game.Stage{}, fmt.Errorf("querying stage %s: %w", id, err)
	}
	return decodeStage(id, data)
}

func (s *Stages) Put(ctx context.Context, st game.Stage) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stages (id, title, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   data = excluded.data,
		   updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		st.ID, st.Title, string(data),
	)
	if err != nil {
		return fmt.Errorf("writing stage %s: %w", st.ID, err)
	}
	return nil
}

func (s *Stages) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting stage %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return game.ErrStageNotFound
	}
	return nil
}

// Version returns the catalog version. Triggers on the stages table bump it
// on every insert, update and delete, whichever process makes the change.
func (s *Stages) Version(ctx context.Context) (uint64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM catalog_meta WHERE id = 1`,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("querying catalog version: %w", err)
	}
	return uint64(v), nil
}

func (s *Stages) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stages`).Scan(&n)
	return n, err
}

// decodeStage trusts the row id over whatever id the document carries.
func decodeStage(id, data string) (game.Stage, error) {
	var st game.Stage
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return game.Stage{}, fmt.Errorf("decoding stage %s: %w", id, err)
	}
	st.ID = id
	return st, nil
}
