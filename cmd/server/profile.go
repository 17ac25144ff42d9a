package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playperu/guessactor/internal/config"
	"github.com/playperu/guessactor/internal/game"
	"github.com/playperu/guessactor/internal/store"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect player profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <playerID>",
	Short: "Print a player's profile view as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.db.Close()

		ok, err := store.NewPlayers(e.db).Exists(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("player %q not found", args[0])
		}

		loc, err := e.cfg.Location()
		if err != nil {
			return err
		}
		sessions := game.NewSessions(game.Deps{
			Store:    store.NewProfiles(e.db, e.logger),
			Rules:    e.rules(),
			Calendar: game.Calendar{Location: loc},
			Logger:   e.logger,
		})
		sess, err := sessions.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sess.View())
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
}

// rules loads the configured tuning, falling back to the stock balancing
// when the tuning file cannot be read.
func (e *env) rules() game.Rules {
	t, err := config.LoadTuning(e.cfg.TuningFile)
	if err != nil {
		e.logger.Warn("loading tuning failed, using defaults", "error", err)
		return game.DefaultRules()
	}
	return t.Rules()
}
