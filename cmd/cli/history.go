package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [owner/repo]",
	Short: "Show recent review outcomes for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, cleanup, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if !a.Cfg.Database.Enabled {
			return fmt.Errorf("review history needs the database\n\nTip: set database.enabled: true")
		}

		records, err := a.Store.ListRecentReviews(ctx, args[0], historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			dimColor.Printf("No reviews recorded for %s.\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PR\tHEAD\tOUTCOME\tVERDICT\tINLINE\tOVERFLOW\tDROPPED\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.PRNumber,
				shortSHA(r.HeadSHA),
				r.Outcome,
				r.Verdict,
				r.InlineComments,
				r.OverflowPosted,
				r.DroppedComments,
				r.CreatedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of reviews to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
