package game

import "context"

// ProfileStore persists whole profiles. LoadProfile fills into from storage;
// fields that are missing or unreadable keep the values already in into.
// SaveProfile writes every field or none.
type ProfileStore interface {
	LoadProfile(ctx context.Context, playerID string, into *Profile) error
	SaveProfile(ctx context.Context, playerID string, p Profile) error
}

// StageSource reads a single stage from the catalog.
type StageSource interface {
	ReadOnce(ctx context.Context, stageID string) (Stage, error)
}
