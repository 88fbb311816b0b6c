package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/gitutil"
	"github.com/sevigo/review-warden/internal/standards"
	"github.com/sevigo/review-warden/internal/util"
)

var (
	standardsDir  string
	standardsRepo string
	standardsRef  string
	recreate      bool
)

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "Manage the coding standards used as review context",
}

var standardsIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load standards from a directory and index them in Qdrant",
	Long: `Load YAML and Markdown coding standards from a directory, or from a
shallow clone of a git repository, and index them in the standards
collection. Requires standards.enabled.

Examples:
  warden-cli standards index --dir ./standards --recreate
  warden-cli standards index --repo https://github.com/acme/standards --ref main`,
	Args: cobra.NoArgs,
	RunE: runStandardsIndex,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	standardsIndexCmd.Flags().StringVarP(&standardsDir, "dir", "d", "standards", "Directory with *.yaml, *.yml and *.md standards")
	standardsIndexCmd.Flags().StringVar(&standardsRepo, "repo", "", "Git repository to clone the standards from instead of --dir")
	standardsIndexCmd.Flags().StringVar(&standardsRef, "ref", "", "Branch or tag of --repo (default branch when empty)")
	standardsIndexCmd.Flags().BoolVar(&recreate, "recreate", false, "Delete the collection before indexing")
	standardsCmd.AddCommand(standardsIndexCmd)
	rootCmd.AddCommand(standardsCmd)
}

func runStandardsIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, cleanup, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	dir := standardsDir
	if standardsRepo != "" {
		tmp, err := os.MkdirTemp("", "warden-standards-*")
		if err != nil {
			return fmt.Errorf("failed to create clone directory: %w", err)
		}
		defer os.RemoveAll(tmp)

		sha, err := gitutil.NewClient(a.Logger).ShallowClone(ctx, standardsRepo, tmp, gitutil.CloneOptions{
			Ref:   standardsRef,
			Token: token(a),
		})
		if err != nil {
			return err
		}
		dimColor.Printf("Cloned %s at %s\n", standardsRepo, shortSHA(sha))
		dir = tmp
	}

	stds, err := standards.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(stds) == 0 {
		return fmt.Errorf("no standards found in %s", dir)
	}

	if a.VectorStore == nil {
		return errors.New("coding standards are disabled\n\nTip: set standards.enabled: true or WARDEN_STANDARDS_ENABLED=true")
	}

	collection := util.CollectionName(a.Cfg.Standards.Collection, a.Cfg.AI.EmbedderModel)
	titleColor.Printf("Indexing %d standards into %s\n", len(stds), collection)

	res, err := standards.NewIndexer(a.VectorStore, collection, a.Logger).Index(ctx, stds, recreate)
	if err != nil {
		return err
	}
	successColor.Printf("Indexed %d standards as %d documents\n", res.Standards, res.Documents)
	return nil
}
