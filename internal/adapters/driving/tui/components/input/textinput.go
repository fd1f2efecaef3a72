// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/styles"
)

// MaxUsernameLength is the longest login GitHub accepts.
const MaxUsernameLength = 39

// UsernameInput wraps a bubbles textinput for typing a GitHub login.
type UsernameInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewUsernameInput creates a focused username input.
func NewUsernameInput(s *styles.Styles) *UsernameInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "GitHub username..."
	ti.Prompt = "@ "
	ti.Focus()
	ti.CharLimit = MaxUsernameLength
	ti.Width = MaxUsernameLength + 1

	return &UsernameInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (u *UsernameInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages. changed reports whether the value was edited.
func (u *UsernameInput) Update(msg tea.Msg) (input *UsernameInput, cmd tea.Cmd, changed bool) {
	before := u.textinput.Value()
	u.textinput, cmd = u.textinput.Update(msg)
	return u, cmd, u.textinput.Value() != before
}

// View renders the labelled input.
func (u *UsernameInput) View() string {
	label := u.styles.Title.Render("User ")
	field := u.styles.InputField.Render(u.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the trimmed login.
func (u *UsernameInput) Value() string {
	return strings.TrimSpace(u.textinput.Value())
}

// SetValue replaces the input text.
func (u *UsernameInput) SetValue(value string) {
	u.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (u *UsernameInput) Focus() tea.Cmd {
	return u.textinput.Focus()
}

// Blur removes focus from the input.
func (u *UsernameInput) Blur() {
	u.textinput.Blur()
}

// Focused returns whether the input is focused.
func (u *UsernameInput) Focused() bool {
	return u.textinput.Focused()
}

// SetWidth sets the available width.
func (u *UsernameInput) SetWidth(width int) {
	u.width = width
}

// Reset clears the input.
func (u *UsernameInput) Reset() {
	u.textinput.Reset()
}
