package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Admin is an authenticated dashboard user.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Admins struct {
	db *sql.DB
}

func NewAdmins(db *sql.DB) *Admins {
	return &Admins{db: db}
}

// EnsureAdmin creates the first admin account if none exists yet.
func (s *Admins) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := s.Create(ctx, email, password); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Admins) Create(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash) VALUES (?, ?, ?)`,
		newID(), email, string(hash),
	)
	if err != nil {
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

// Authenticate checks the credentials and returns the admin.
func (s *Admins) Authenticate(ctx context.Context, email, password string) (Admin, error) {
	a := Admin{Email: normalizeEmail(email)}
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, a.Email,
	).Scan(&a.ID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return Admin{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Admins) CreateSession(ctx context.Context, adminID string) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, admin_id) VALUES (?, ?)`, id, adminID,
	)
	if err != nil {
		return "", fmt.Errorf("inserting admin session: %w", err)
	}
	return id, nil
}

func (s *Admins) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE id = ?`, sessionID,
	)
	return err
}

func (s *Admins) AdminFromSession(ctx context.Context, sessionID string) (Admin, error) {
	var a Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&a.ID, &a.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	return a, err
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
