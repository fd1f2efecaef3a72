package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghview/internal/normalisers"
)

var readmePlain bool

var readmeCmd = &cobra.Command{
	Use:   "readme [owner/repo]",
	Short: "Print a repository's README",
	Long: `Fetches and decodes the README of a repository.

With --plain, Markdown and embedded HTML are stripped for reading in a
terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReadme,
}

func init() {
	readmeCmd.Flags().BoolVar(&readmePlain, "plain", false, "strip Markdown and HTML formatting")
	rootCmd.AddCommand(readmeCmd)
}

func runReadme(cmd *cobra.Command, args []string) error {
	if err := requireSync(); err != nil {
		return err
	}

	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("invalid repository %q: expected owner/repo", args[0])
	}

	content, err := syncService.Readme(cmd.Context(), owner, repo)
	if err != nil {
		return fmt.Errorf("failed to fetch README: %w", err)
	}

	if readmePlain {
		content = normalisers.PlainText(content)
	}
	cmd.Print(content)
	if !strings.HasSuffix(content, "\n") {
		cmd.Println()
	}
	return nil
}
