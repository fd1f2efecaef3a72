package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui"
	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/logger"
)

// runProgram is swapped in tests.
var runProgram = func(app *tui.App) error { return app.Run() }

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for ghview.

Type a username and the profile and repositories appear once you pause.
Select a repository to read its README.

Controls:
  tab       - Switch between input and repositories
  ↑/k, ↓/j  - Navigate repositories
  Enter     - Show README
  Esc       - Back
  ctrl+l    - Clear
  ctrl+c    - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if err := requireSync(); err != nil {
		return err
	}
	if newSearch == nil {
		return errors.New("search coordinator not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	coordinator := newSearch(debounceWindow(), func(actx context.Context, value string) {
		syncService.Lookup(actx, value)
	})
	defer coordinator.Close()
	followWindow(ctx, coordinator)

	app, err := tui.NewApp(&tui.Ports{
		Sync:   syncService,
		Search: coordinator,
		Auth:   authService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// debounceWindow returns the configured quiescence window.
func debounceWindow() time.Duration {
	if settingsService == nil {
		return domain.DefaultDebounceWindow
	}
	return settingsService.Get().DebounceWindow
}

// followWindow applies debounce window changes from the settings file
// until ctx is done.
func followWindow(ctx context.Context, coordinator driving.SearchCoordinator) {
	if watchConfig == nil || settingsService == nil {
		return
	}
	err := watchConfig(ctx, func() {
		coordinator.SetWindow(settingsService.Get().DebounceWindow)
	})
	if err != nil {
		logger.Warn("settings will not be reloaded: %v", err)
	}
}
