package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the total number of repositories and users",
	RunE:  runStats,
}

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show the remaining API quota",
	RunE:  runRateLimit,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(rateLimitCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireSync(); err != nil {
		return err
	}

	syncService.FetchGlobalStats(cmd.Context())
	stats := syncService.Snapshot().Stats

	cmd.Printf("Repositories: %d\n", stats.TotalRepositories)
	cmd.Printf("Users:        %d\n", stats.TotalUsers)
	return nil
}

func runRateLimit(cmd *cobra.Command, _ []string) error {
	if err := requireSync(); err != nil {
		return err
	}

	rl, err := syncService.RateLimit(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch rate limit: %w", err)
	}

	cmd.Printf("Remaining: %d/%d\n", rl.Remaining, rl.Limit)
	cmd.Printf("Resets:    %s\n", rl.Reset.Local().Format(time.RFC3339))
	if rl.Exhausted(time.Now()) {
		cmd.Println("Quota exhausted.")
	}
	return nil
}
