// Package lookup provides the main view of the TUI: a username input that
// looks users up as they type, the profile and the repository list.
package lookup

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
)

// View combines the username input, the profile and the repository list.
//
// Every edit of the input goes to the search coordinator, which starts a
// lookup once typing pauses. The view itself renders whatever snapshot the
// sync state publishes last.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.UsernameInput
	list      *list.RepoList
	statusbar *status.Bar

	sync   driving.SyncService
	search driving.SearchCoordinator

	snapshot   domain.Snapshot
	focusInput bool
	width      int
	height     int
}

// NewView creates a new lookup view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	sync driving.SyncService,
	search driving.SearchCoordinator,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewUsernameInput(s),
		list:       list.NewRepoList(s),
		statusbar:  status.NewBar(s, km),
		sync:       sync,
		search:     search,
		focusInput: true,
		width:      80,
		height:     24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the lookup view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.SnapshotUpdated:
		v.snapshot = msg.Snapshot
		v.list.SetRepositories(msg.Snapshot.Repositories)
		v.statusbar.SetSnapshot(msg.Snapshot)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	v.input, cmd, _ = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Focus):
		v.setFocus(!v.focusInput)
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Clear):
		v.input.Reset()
		v.search.Cancel()
		v.sync.Clear()
		v.setFocus(true)
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyDown {
			if v.list.Count() > 0 {
				v.setFocus(false)
			}
			return v, nil
		}

		var cmd tea.Cmd
		var changed bool
		v.input, cmd, changed = v.input.Update(msg)
		if changed {
			v.search.Submit(v.input.Value())
		}
		return v, cmd
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		v.setFocus(true)
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}

	case keymap.Matches(keyStr, v.keymap.Select):
		repo := v.list.SelectedRepository()
		if repo == nil {
			return v, nil
		}
		selected := *repo
		return v, func() tea.Msg {
			return messages.RepositorySelected{Repository: selected}
		}
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) setFocus(input bool) {
	v.focusInput = input
	v.statusbar.SetListFocused(!input)
	if input {
		v.input.Focus()
	} else {
		v.input.Blur()
	}
}

// View renders the lookup view.
func (v *View) View() string {
	sections := make([]string, 0, 8)

	sections = append(sections, v.styles.Title.Render("ghview"), "", v.input.View(), "")

	if v.snapshot.Profile != nil {
		sections = append(sections, v.renderProfile(v.snapshot.Profile), "")
	}

	switch {
	case v.snapshot.HasError():
		sections = append(sections, v.styles.Error.Render(v.snapshot.Error.Message))
	case v.snapshot.Error != nil:
		sections = append(sections, v.styles.Warning.Render(v.snapshot.Error.Message))
	case v.snapshot.Profile != nil || v.list.Count() > 0:
		sections = append(sections, v.list.View())
	default:
		sections = append(sections, v.styles.Muted.Render("Type a username to look it up."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderProfile(p *domain.Profile) string {
	var b strings.Builder

	name := v.styles.Subtitle.Render(p.Login)
	if p.Name != "" {
		name += v.styles.Muted.Render(" (" + p.Name + ")")
	}
	b.WriteString(name)

	if p.Bio != "" {
		b.WriteString("\n" + v.styles.Normal.Render(p.Bio))
	}

	details := []string{
		v.styles.Stat.Render(fmt.Sprintf("%d followers", p.Followers)),
		v.styles.Stat.Render(fmt.Sprintf("%d following", p.Following)),
	}
	if p.Location != "" {
		details = append(details, v.styles.Muted.Render(p.Location))
	}
	if p.Blog != "" {
		details = append(details, v.styles.Muted.Render(p.Blog))
	}
	b.WriteString("\n" + strings.Join(details, "  ·  "))

	return v.styles.Border.Padding(0, 1).Render(b.String())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	v.input.SetWidth(width)
	// Reserve space for header, input, profile and status bar.
	v.list.SetDimensions(width, height-14)
	v.statusbar.SetWidth(width)
}

// SetAccount shows the logged-in account in the status bar.
func (v *View) SetAccount(label string) {
	v.statusbar.SetAccount(label)
}

// Query returns the current input.
func (v *View) Query() string {
	return v.input.Value()
}

// Snapshot returns the last rendered snapshot.
func (v *View) Snapshot() domain.Snapshot {
	return v.snapshot
}

// SelectedRepository returns the selected repository, or nil.
func (v *View) SelectedRepository() *domain.RepositoryEntry {
	return v.list.SelectedRepository()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
