// Package oauth provides the loopback callback server that receives the
// OAuth redirect, and a helper to open the authorization page.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/ghview/internal/logger"
)

// CallbackPath is the path the provider redirects to.
const CallbackPath = "/callback"

// CallbackServer receives the provider redirect on a loopback port and
// hands the full redirect URL to whoever waits for it. It does not inspect
// the redirect: validating state and exchanging the code is the login
// flow's job.
type CallbackServer struct {
	mu        sync.Mutex
	port      int
	redirects chan string
	server    *http.Server
	listener  net.Listener
}

// NewCallbackServer creates a callback server for port. Port 0 picks any free port.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:      port,
		redirects: make(chan string, 1),
	}
}

// Handler returns the router serving the callback endpoint.
func (s *CallbackServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Get(CallbackPath, s.handleCallback)
	return r
}

// Start starts listening on 127.0.0.1.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Port 0 resolves to the port actually bound.
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	srv := s.server
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("oauth: callback server stopped: %v", err)
		}
	}()

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	select {
	case s.redirects <- r.URL.String():
	default:
		logger.Debug("oauth: dropping extra redirect")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case q.Get("error") != "":
		desc := q.Get("error_description")
		if desc == "" {
			desc = q.Get("error")
		}
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", desc))
	case q.Get("code") == "":
		_, _ = fmt.Fprint(w, resultHTML("Authorization cancelled", "No authorization code was received."))
	default:
		_, _ = fmt.Fprint(w, resultHTML("Authorization received", "You can close this window and return to ghview."))
	}
}

// WaitForRedirect blocks until a redirect arrives or ctx is done.
// It returns the redirect URL including its query.
func (s *CallbackServer) WaitForRedirect(ctx context.Context) (string, error) {
	select {
	case redirect := <-s.redirects:
		return redirect, nil
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts down the callback server. Stopping a server that never
// started is not an error.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI for this callback server.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.Port(), CallbackPath)
}

func resultHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>ghview - %[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
               display: flex; justify-content: center; align-items: center; height: 100vh;
               margin: 0; background: #F6F8FA; }
        .container { text-align: center; background: white; padding: 48px 64px;
                     border-radius: 12px; border: 1px solid #D0D7DE; }
        h1 { color: #24292F; margin: 0 0 8px 0; font-size: 24px; }
        p { color: #57606A; margin: 0; font-size: 16px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
