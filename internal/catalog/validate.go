package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/playperu/guessactor/internal/game"
)

// ErrInvalidStage wraps every validation failure.
var ErrInvalidStage = errors.New("invalid stage")

const (
	minOptions = 2
	maxOptions = 4
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStage, fmt.Sprintf(format, args...))
}

// Normalize checks a stage written by an admin and returns the stored form:
// trimmed text, deduplicated options with the actor's name among them, at
// most four options per actor.
func Normalize(st game.Stage) (game.Stage, error) {
	st.ID = strings.TrimSpace(st.ID)
	st.Title = strings.TrimSpace(st.Title)
	switch {
	case st.ID == "":
		return st, invalid("id is required")
	case strings.ContainsAny(st.ID, "/?#"):
		return st, invalid("id %q contains reserved characters", st.ID)
	case st.Title == "":
		return st, invalid("title is required")
	case len(st.Actors) == 0:
		return st, invalid("at least one actor is required")
	case st.Price != nil && *st.Price < 0:
		return st, invalid("price must not be negative")
	}

	actors := make([]game.Actor, len(st.Actors))
	for i, a := range st.Actors {
		na, err := normalizeActor(a)
		if err != nil {
			return st, fmt.Errorf("actor %d: %w", i+1, err)
		}
		actors[i] = na
	}
	st.Actors = actors
	return st, nil
}

func normalizeActor(a game.Actor) (game.Actor, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Image = strings.TrimSpace(a.Image)
	if a.Name == "" {
		return a, invalid("name is required")
	}
	if a.Image == "" {
		return a, invalid("image is required")
	}

	var opts []string
	for _, o := range a.Options {
		o = strings.TrimSpace(o)
		if o != "" && !slices.Contains(opts, o) {
			opts = append(opts, o)
		}
	}
	if len(opts) < minOptions {
		return a, invalid("%s needs at least %d options", a.Name, minOptions)
	}
	if !slices.Contains(opts, a.Name) {
		opts = append(opts, a.Name)
	}
	if len(opts) > maxOptions {
		keep := opts[:maxOptions]
		if !slices.Contains(keep, a.Name) {
			keep[maxOptions-1] = a.Name
		}
		opts = keep
	}
	a.Options = slices.Clip(opts)
	return a, nil
}
