package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ghview/internal/adapters/driving/oauth"
	"github.com/custodia-labs/ghview/internal/core/domain"
)

// openBrowser is swapped in tests.
var openBrowser = oauth.OpenBrowser

var (
	loginPort      int
	loginTimeout   time.Duration
	loginNoBrowser bool
	whoamiJSON     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to GitHub",
	Long: `Opens the GitHub authorization page and waits for the redirect on a
local callback server. The access token is stored only after a
successful exchange.

Examples:
  ghview login
  ghview login --no-browser --timeout 2m`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user's profile and repositories",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored access token",
	Long: `Store a personal access token instead of logging in through the browser,
or check whether a token is stored.`,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store a personal access token",
	Long: `Stores a personal access token. Without an argument the token is read
from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenSet,
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored",
	Args:  cobra.NoArgs,
	RunE:  runTokenStatus,
}

func init() {
	loginCmd.Flags().IntVar(&loginPort, "port", 0, "callback port (default from oauth.callback_port)")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "how long to wait for the redirect")
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the authorization URL instead of opening it")
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "output the snapshot as JSON")

	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenStatusCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if err := requireAuth(); err != nil {
		return err
	}
	ctx := cmd.Context()

	port := loginPort
	if port == 0 {
		port = domain.DefaultCallbackPort
		if settingsService != nil {
			port = settingsService.Get().CallbackPort
		}
	}
	if _, err := oauth.FindAvailablePort(port, 1); err != nil {
		return fmt.Errorf("callback port %d is not available: %w", port, err)
	}

	server := oauth.NewCallbackServer(port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() { _ = server.Stop() }()

	authURL, err := authService.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	if loginNoBrowser {
		cmd.Println("Open this URL to authorize ghview:")
	} else {
		cmd.Println("Opening your browser to authorize ghview. If it does not open, visit:")
		if err := openBrowser(authURL); err != nil {
			cmd.PrintErrf("Could not open browser: %v\n", err)
		}
	}
	cmd.Printf("  %s\n\n", authURL)
	cmd.Println("Waiting for authorization...")

	redirect, err := waitForRedirect(ctx, server)
	if err != nil {
		authService.Abandon()
		return err
	}

	if err := authService.HandleRedirect(ctx, redirect); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if authService.Status().State != domain.AuthAuthenticated {
		cmd.Println("Login cancelled.")
		return nil
	}

	if syncService == nil {
		cmd.Println("Logged in.")
		return nil
	}
	syncService.FetchAuthenticatedProfile(ctx, "")
	if snap := syncService.Snapshot(); snap.Profile != nil {
		cmd.Printf("Logged in as %s.\n", snap.Profile.Login)
		return nil
	}
	cmd.Println("Logged in.")
	return nil
}

func waitForRedirect(ctx context.Context, server *oauth.CallbackServer) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	redirect, err := server.WaitForRedirect(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("login timed out after %s", loginTimeout)
	}
	return redirect, err
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	if err := authService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	cmd.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if err := requireSync(); err != nil {
		return err
	}
	if !loggedIn() {
		return errors.New("not logged in: run 'ghview login' or 'ghview token set'")
	}

	// An empty credential selects the stored token.
	syncService.FetchAuthenticatedProfile(cmd.Context(), "")
	return outputSnapshot(cmd, syncService.Snapshot(), userLimit, whoamiJSON)
}

func loggedIn() bool {
	if authService != nil {
		return authService.Status().State == domain.AuthAuthenticated
	}
	return tokenService != nil && tokenService.Get() != ""
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	if err := requireTokens(); err != nil {
		return err
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		cmd.Print("Token: ")
		token = readPassword(cmd.InOrStdin())
		cmd.Println()
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}

	if err := tokenService.Set(cmd.Context(), token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	cmd.Printf("Token stored (%s).\n", domain.MaskCredential(token))
	return nil
}

func runTokenStatus(cmd *cobra.Command, _ []string) error {
	if err := requireTokens(); err != nil {
		return err
	}

	token := tokenService.Get()
	if token == "" {
		cmd.Println("No token stored.")
		return nil
	}
	cmd.Printf("Token: %s\n", domain.MaskCredential(token))
	return nil
}

// readPassword reads a line without echo when in is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
