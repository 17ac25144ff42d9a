// Package store implements persistence on libSQL: player profiles as
// fixed-key rows, stage documents as JSONB, admins and player tokens.
package store

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func newID() string {
	return uuid.NewString()
}
