package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

var searchWindow time.Duration

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up users as you type",
	Long: `Reads usernames from standard input, one edit per line, and looks up
a user once the input has stopped changing for the debounce window.
Edits that arrive within the window replace each other, so only the
settled value is fetched.

The window comes from search.debounce_ms and follows changes to the
settings file while the command runs.

Examples:
  printf 'o\noc\noctocat\n' | ghview search
  ghview search --window 300ms`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().DurationVar(&searchWindow, "window", 0, "debounce window (default from search.debounce_ms)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if err := requireSync(); err != nil {
		return err
	}
	if newSearch == nil {
		return errors.New("search coordinator not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	window := searchWindow
	if window <= 0 {
		window = debounceWindow()
	}

	// edit numbers the input lines. A run is tagged with the edit current
	// when it starts, so an earlier run of an equal value is not mistaken
	// for the run of the final line.
	var (
		edit   atomic.Uint64
		mu     sync.Mutex
		latest searchRun
	)
	completed := make(chan struct{}, 1)

	coordinator := newSearch(window, func(actx context.Context, value string) {
		run := searchRun{edit: edit.Load(), value: value}

		syncService.Lookup(actx, value)
		if actx.Err() != nil {
			return
		}
		outputSearchResult(cmd, value, syncService.Snapshot())
		mu.Lock()
		if run.edit >= latest.edit {
			latest = run
		}
		mu.Unlock()
		select {
		case completed <- struct{}{}:
		default:
		}
	})
	defer coordinator.Close()

	if searchWindow <= 0 {
		followWindow(ctx, coordinator)
	}

	last := ""
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		last = strings.TrimSpace(scanner.Text())
		edit.Add(1)
		coordinator.Submit(last)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if last == "" {
		return nil
	}

	final := searchRun{edit: edit.Load(), value: last}
	for {
		mu.Lock()
		done := latest == final
		mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-completed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type searchRun struct {
	edit  uint64
	value string
}

func outputSearchResult(cmd *cobra.Command, value string, snap domain.Snapshot) {
	switch {
	case snap.HasError():
		cmd.Printf("%s: %s\n", value, snapshotError(snap))
	case snap.Error != nil:
		cmd.Printf("%s: %s\n", value, snap.Error.Message)
	default:
		cmd.Printf("%s: %d repositories\n", value, len(snap.Repositories))
	}
}
