package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"elevation-marker/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or show the attempts of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := store.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		if len(args) == 0 {
			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := db.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN\tSTARTED\tSCENE\tMODE\tDIRECTION\tPLACED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\n",
					r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Scene, r.Mode, r.Direction, r.Placed, r.Attempts)
			}
			return nil
		}

		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		attempts, err := db.Attempts(ctx, run.ID)
		if err != nil {
			return err
		}
		matches, err := db.Matches(ctx, run.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Run %s on %s: %d/%d placed in %d view(s)\n\n", run.ID, run.Scene, run.Placed, run.Attempts, run.Views)
		fmt.Fprintln(w, "VIEW\tELEMENT\tAPPROACH\tRESULT")
		for _, a := range attempts {
			result := "ok"
			if !a.Success {
				result = fmt.Sprintf("[%s] %s", a.Kind, a.Error)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ViewID, a.ElementID, a.Approach, result)
		}
		if len(matches) > 0 {
			fmt.Fprintln(w, "\nVIEW\tELEMENT\tBEST\tCANDIDATES\tNOTE")
			for _, m := range matches {
				fmt.Fprintf(w, "%s\t%s\t%.3f\t%d\t%s\n", m.ViewID, m.ElementID, m.BestAlignment, len(m.Evaluations), m.Note)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to list (0 for all)")
}
