package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/store"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Manage the stage catalog",
}

var stagesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create or replace stages from a YAML file",
	Long: `Import validates every stage the same way the admin dashboard does
and writes them in file order, stopping at the first invalid stage.

Examples:
  server stages import stages.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		stages, err := catalog.ParseStages(data)
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.db.Close()

		cat := catalog.New(store.NewStages(e.db, e.logger), e.logger)
		n, err := cat.Import(cmd.Context(), stages)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d stages\n", n, len(stages))
		return err
	},
}

var stagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stage catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.db.Close()

		snap, err := catalog.New(store.NewStages(e.db, e.logger), e.logger).Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		def := e.rules().DefaultPrice
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tFREE\tPRICE\tACTORS")
		for _, st := range snap.Stages {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%d\n", st.ID, st.Title, st.Free, st.UnlockPrice(def), len(st.Actors))
		}
		return tw.Flush()
	},
}

func init() {
	stagesCmd.AddCommand(stagesImportCmd)
	stagesCmd.AddCommand(stagesListCmd)
}
