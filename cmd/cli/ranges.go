package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/diff"
)

var rangesCmd = &cobra.Command{
	Use:   "ranges [patch-file]",
	Short: "Show the commentable lines of a unified diff",
	Long: `Parse a single-file unified diff (a GitHub "patch") and print the line
ranges a review comment may target on each side. Reads stdin when no file is
given.

Example:
  git diff -U3 main -- internal/app/app.go | warden-cli ranges`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open patch: %w", err)
			}
			defer f.Close()
			in = f
		}

		raw, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read patch: %w", err)
		}

		sets := diff.Parse(string(raw))
		out := cmd.OutOrStdout()
		if sets.Empty() {
			warnColor.Fprintln(out, "no commentable lines")
			return nil
		}
		printSide(out, diff.SideRight, sets.Right)
		printSide(out, diff.SideLeft, sets.Left)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(rangesCmd)
}

func printSide(w io.Writer, side diff.Side, set diff.LineSet) {
	boldColor.Fprintf(w, "%-5s ", side)
	if set.Len() == 0 {
		dimColor.Fprintln(w, "-")
		return
	}
	fmt.Fprintf(w, "%s ", diff.FormatRanges(diff.Ranges(set)))
	dimColor.Fprintf(w, "(%d lines)\n", set.Len())
}
