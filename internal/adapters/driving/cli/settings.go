package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change ghview settings.

Settings are stored in config.toml inside the configuration directory.
Unknown keys and invalid values are rejected.

Examples:
  ghview settings
  ghview settings get search.debounce_ms
  ghview settings set search.debounce_ms 300
  ghview settings set oauth.mode direct`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show a single setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a single setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	values := settingsService.Values()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	for _, key := range settingsService.Keys() {
		value := values[key]
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("  %-28s %s\n", key, value)
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	key := args[0]
	if !slices.Contains(settingsService.Keys(), key) {
		return fmt.Errorf("unknown setting %q: run 'ghview settings keys' for the list", key)
	}
	cmd.Println(settingsService.Values()[key])
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}
