package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/views/lookup"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/views/readme"
	"github.com/custodia-labs/ghview/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	lookupView *lookup.View
	readmeView *readme.View

	currentView messages.ViewType

	snapshots <-chan domain.Snapshot
	authFeed  <-chan domain.AuthStatus
	unsubs    []func()

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		lookupView:  lookup.NewView(s, km, ports.Sync, ports.Search),
		readmeView:  readme.NewView(s, ports.Sync),
		currentView: messages.ViewLookup,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.readmeView.WithContext(ctx)
	return a
}

// Init implements tea.Model. It subscribes to the sync state and, when
// available, the login state.
func (a *App) Init() tea.Cmd {
	snapshots, unsub := a.ports.Sync.Subscribe()
	a.snapshots = snapshots
	a.unsubs = append(a.unsubs, unsub)

	cmds := []tea.Cmd{
		tea.SetWindowTitle("ghview"),
		a.lookupView.Init(),
		waitForSnapshot(a.snapshots),
	}

	if a.ports.Auth != nil {
		feed, unsubAuth := a.ports.Auth.Subscribe()
		a.authFeed = feed
		a.unsubs = append(a.unsubs, unsubAuth)
		cmds = append(cmds, waitForAuth(a.authFeed))
	}

	return tea.Batch(cmds...)
}

// Close releases the subscriptions taken by Init.
func (a *App) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
}

// waitForSnapshot delivers the next snapshot. A closed feed ends the loop.
func waitForSnapshot(ch <-chan domain.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return messages.SnapshotUpdated{Snapshot: snap}
	}
}

func waitForAuth(ch <-chan domain.AuthStatus) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return messages.AuthChanged{Status: status}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		return a.handleKeyMsg(msg)

	case messages.SnapshotUpdated:
		a.lookupView, _ = a.lookupView.Update(msg)
		return a, waitForSnapshot(a.snapshots)

	case messages.AuthChanged:
		if msg.Status.State == domain.AuthAuthenticated {
			a.lookupView.SetAccount("signed in")
		} else {
			a.lookupView.SetAccount("")
		}
		return a, waitForAuth(a.authFeed)

	case messages.RepositorySelected:
		a.currentView = messages.ViewReadme
		return a, a.readmeView.Open(msg.Repository.Owner.Login, msg.Repository.Name)

	case messages.ReadmeLoaded:
		a.readmeView, cmd = a.readmeView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.lookupView, cmd = a.lookupView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewLookup:
		a.lookupView, cmd = a.lookupView.Update(msg)
	case messages.ViewReadme:
		a.readmeView, cmd = a.readmeView.Update(msg)
	case messages.ViewHelp:
		// Help is static.
	}
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewLookup:
		a.lookupView, cmd = a.lookupView.Update(msg)
	case messages.ViewReadme:
		a.readmeView, cmd = a.readmeView.Update(msg)
	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) || keymap.Matches(msg.String(), a.keymap.Help) {
			a.currentView = messages.ViewLookup
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewReadme:
		return a.readmeView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.lookupView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Lookup:
  (type)      Username, looked up once typing pauses
  tab         Switch between input and repositories
  ctrl+l      Clear input and results

Repositories:
  j/k, ↑/↓    Navigate
  enter       Show README
  esc         Back to input

README:
  j/k, PgUp/PgDn  Scroll
  g/G             Top/bottom
  esc             Back

  ctrl+c      Quit

` + a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.lookupView.SetDimensions(width, height)
	a.readmeView.SetDimensions(width, height)
}
