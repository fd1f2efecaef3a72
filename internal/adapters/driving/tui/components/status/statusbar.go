// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ghview/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
	StateNotice  State = "notice"
	StateResults State = "results"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	resetAt     *time.Time
	account     string
	resultCount int
	listFocused bool
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// SetSnapshot derives the displayed state from a sync snapshot.
func (s *Bar) SetSnapshot(snap domain.Snapshot) {
	s.resultCount = len(snap.Repositories)
	s.resetAt = snap.RateLimitReset
	s.message = ""

	switch {
	case snap.Loading:
		s.state = StateLoading
	case snap.HasError():
		s.state = StateError
		s.message = snap.Error.Message
	case snap.Error != nil:
		s.state = StateNotice
		s.message = snap.Error.Message
	case snap.Profile != nil:
		s.state = StateResults
	default:
		s.state = StateReady
	}
}

// SetAccount shows the logged-in login. Empty means anonymous.
func (s *Bar) SetAccount(login string) {
	s.account = login
}

// SetListFocused switches the keybinding hints.
func (s *Bar) SetListFocused(focused bool) {
	s.listFocused = focused
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var left string
	switch s.state {
	case StateLoading:
		left = s.styles.Muted.Render("Loading...")
	case StateError:
		msg := s.message
		if s.resetAt != nil {
			msg = fmt.Sprintf("%s Resets at %s.", msg, s.resetAt.Local().Format(time.Kitchen))
		}
		left = s.styles.Error.Render(msg)
	case StateNotice:
		left = s.styles.Warning.Render(s.message)
	case StateResults:
		left = s.styles.Normal.Render(fmt.Sprintf("%d repositories", s.resultCount))
	case StateReady:
		left = s.styles.Muted.Render("Ready")
	}

	if s.account != "" {
		left = s.styles.Success.Render("● "+s.account) + "  " + left
	}
	return left
}

func (s *Bar) bindings() []key.Binding {
	if s.listFocused {
		return s.keymap.ListHelp()
	}
	return s.keymap.ShortHelp()
}

func (s *Bar) renderRight() string {
	bindings := s.bindings()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetMessage shows a transient message in the error slot.
func (s *Bar) SetMessage(message string) {
	s.state = StateError
	s.message = message
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
