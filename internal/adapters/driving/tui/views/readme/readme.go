// Package readme provides the README view for the TUI.
package readme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/normalisers"
)

// ErrNoSyncService indicates that no sync service was provided.
var ErrNoSyncService = errors.New("sync service is required")

// reservedLines holds the title, separator and help footer.
const reservedLines = 5

// View shows the decoded README of one repository.
type View struct {
	styles *styles.Styles
	sync   driving.SyncService
	ctx    context.Context

	owner    string
	repo     string
	content  string
	raw      bool
	viewport viewport.Model
	loading  bool
	err      error

	width  int
	height int
}

// NewView creates a new README view.
func NewView(s *styles.Styles, sync driving.SyncService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		sync:     sync,
		ctx:      context.Background(),
		viewport: viewport.New(80, 24-reservedLines),
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used for fetching.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open shows owner/repo and returns the command that loads its README.
func (v *View) Open(owner, repo string) tea.Cmd {
	v.owner = owner
	v.repo = repo
	v.content = ""
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")
	v.viewport.GotoTop()

	sync := v.sync
	ctx := v.ctx
	return func() tea.Msg {
		if sync == nil {
			return messages.ReadmeLoaded{Owner: owner, Repo: repo, Err: ErrNoSyncService}
		}
		content, err := sync.Readme(ctx, owner, repo)
		return messages.ReadmeLoaded{Owner: owner, Repo: repo, Content: content, Err: err}
	}
}

// Update handles messages for the README view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ReadmeLoaded:
		// A late answer for a repository that is no longer shown.
		if msg.Owner != v.owner || msg.Repo != v.repo {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		v.content = msg.Content
		v.render()
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewLookup}
			}
		case "r":
			v.raw = !v.raw
			v.render()
			return v, nil
		case "g", "home":
			v.viewport.GotoTop()
			return v, nil
		case "G", "end":
			v.viewport.GotoBottom()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render wraps the content to the current width. Unless raw is set the
// README is shown as plain text.
func (v *View) render() {
	content := v.content
	if !v.raw {
		content = normalisers.PlainText(content)
	}
	width := max(v.width-4, 20)
	v.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(content))
}

// View renders the README view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.owner + "/" + v.repo))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading README..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case strings.TrimSpace(v.content) == "":
		b.WriteString(v.styles.Muted.Render("(Empty README)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%3.f%%]", v.viewport.ScrollPercent()*100)))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [r] raw/plain  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 1)
	v.render()
}

// Repository returns the shown repository.
func (v *View) Repository() (owner, repo string) {
	return v.owner, v.repo
}

// Content returns the README content.
func (v *View) Content() string {
	return v.content
}

// Raw reports whether the README source is shown unformatted.
func (v *View) Raw() bool {
	return v.raw
}

// Loading reports whether the README is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
