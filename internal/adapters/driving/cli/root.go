// Package cli implements the ghview command line.
//
// Commands use the package-level driving ports. The binary installs them
// through SetBootstrap, which runs once the global flags are parsed; tests
// install mocks directly with SetServices.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/logger"
)

// version is set at build time.
var version = "dev"

// Options carries the global flags to the bootstrap function.
type Options struct {
	// ConfigDir overrides the configuration directory (default ~/.ghview).
	ConfigDir string

	// Ephemeral keeps settings and credentials in memory only.
	Ephemeral bool

	// Verbose enables debug logging.
	Verbose bool
}

// SearchFactory creates a debounced coordinator running action per settled value.
type SearchFactory func(window time.Duration, action func(ctx context.Context, value string)) driving.SearchCoordinator

// Services holds the driving ports the commands use.
type Services struct {
	Sync     driving.SyncService
	Auth     driving.AuthService
	Tokens   driving.TokenService
	Settings driving.SettingsService

	// NewSearch creates search coordinators for interactive input.
	NewSearch SearchFactory

	// WatchConfig calls onChange after the settings file changes on disk.
	// It is optional.
	WatchConfig func(ctx context.Context, onChange func()) error
}

// Bootstrap builds the services for opts. The returned cleanup runs after
// the command finishes.
type Bootstrap func(opts Options) (*Services, func(), error)

var (
	syncService     driving.SyncService
	authService     driving.AuthService
	tokenService    driving.TokenService
	settingsService driving.SettingsService
	newSearch       SearchFactory
	watchConfig     func(ctx context.Context, onChange func()) error

	bootstrap Bootstrap
	cleanup   func()
	options   Options
)

var rootCmd = &cobra.Command{
	Use:   "ghview",
	Short: "Browse GitHub profiles and repositories",
	Long: `ghview looks up GitHub users and their public repositories.

Anonymous lookups work out of the box. Log in to see your own profile
and to raise the API quota.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&options.ConfigDir, "config-dir", "", "configuration directory (default ~/.ghview)")
	rootCmd.PersistentFlags().BoolVar(&options.Ephemeral, "ephemeral", false, "keep settings and credentials in memory only")
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	syncService = s.Sync
	authService = s.Auth
	tokenService = s.Tokens
	settingsService = s.Settings
	newSearch = s.NewSearch
	watchConfig = s.WatchConfig
}

// SetBootstrap installs the function that builds services from the global flags.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer runCleanup()
	return rootCmd.ExecuteContext(ctx)
}

func prepareServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(options.Verbose)

	if bootstrap == nil || syncService != nil {
		return nil
	}
	svc, done, err := bootstrap(options)
	if err != nil {
		return err
	}
	SetServices(svc)
	cleanup = done
	return nil
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

func requireSync() error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	return nil
}

func requireAuth() error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func requireTokens() error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}
	return nil
}
