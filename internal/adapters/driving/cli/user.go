package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

var (
	userLimit int
	userJSON  bool
)

var userCmd = &cobra.Command{
	Use:   "user [username]",
	Short: "Show a user's profile and repositories",
	Long: `Looks up the public profile of a GitHub user together with all of
their public repositories, most recently updated first.

The lookup is anonymous and never sends a stored token.`,
	Args: cobra.ExactArgs(1),
	RunE: runUser,
}

func init() {
	userCmd.Flags().IntVarP(&userLimit, "limit", "n", 20, "maximum number of repositories to show (0 = all)")
	userCmd.Flags().BoolVar(&userJSON, "json", false, "output the snapshot as JSON")
	rootCmd.AddCommand(userCmd)
}

func runUser(cmd *cobra.Command, args []string) error {
	if err := requireSync(); err != nil {
		return err
	}

	username := strings.TrimSpace(args[0])
	if username == "" {
		return errors.New("username must not be blank")
	}

	syncService.Lookup(cmd.Context(), username)
	return outputSnapshot(cmd, syncService.Snapshot(), userLimit, userJSON)
}

// outputSnapshot prints the profile and repositories of snap. A
// non-recoverable snapshot error becomes the command error.
func outputSnapshot(cmd *cobra.Command, snap domain.Snapshot, limit int, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		cmd.Println(string(data))
		return snapshotError(snap)
	}

	if snap.Profile != nil {
		outputProfile(cmd, snap.Profile)
	}
	if snap.HasError() {
		return snapshotError(snap)
	}
	if snap.Error != nil {
		cmd.Println(snap.Error.Message)
		return nil
	}

	outputRepositories(cmd, snap.Repositories, limit)
	return nil
}

func snapshotError(snap domain.Snapshot) error {
	if !snap.HasError() {
		return nil
	}
	msg := snap.Error.Message
	if snap.RateLimitReset != nil {
		msg = fmt.Sprintf("%s Resets at %s.", msg, snap.RateLimitReset.Local().Format(time.Kitchen))
	}
	return errors.New(msg)
}

func outputProfile(cmd *cobra.Command, p *domain.Profile) {
	if p.Name != "" {
		cmd.Printf("%s (%s)\n", p.Login, p.Name)
	} else {
		cmd.Println(p.Login)
	}
	if p.Bio != "" {
		cmd.Printf("  %s\n", p.Bio)
	}
	if p.Location != "" {
		cmd.Printf("  Location:  %s\n", p.Location)
	}
	if p.Blog != "" {
		cmd.Printf("  Blog:      %s\n", p.Blog)
	}
	cmd.Printf("  Followers: %d  Following: %d\n", p.Followers, p.Following)
	cmd.Println()
}

func outputRepositories(cmd *cobra.Command, repos []domain.RepositoryEntry, limit int) {
	shown := repos
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	cmd.Printf("Repositories (%d):\n", len(repos))
	cmd.Println()
	for i := range shown {
		cmd.Printf("  %s  ★ %d  ⑂ %d  updated %s\n",
			shown[i].FullName(), shown[i].Stars, shown[i].Forks, shown[i].UpdatedAt.Format("2006-01-02"))
		if shown[i].Description != "" {
			cmd.Printf("      %s\n", shown[i].Description)
		}
	}
	if len(shown) < len(repos) {
		cmd.Printf("  ... and %d more\n", len(repos)-len(shown))
	}
}
