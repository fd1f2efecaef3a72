// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ghview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ghview/internal/core/domain"
)

// RepoList displays repositories in a navigable list.
type RepoList struct {
	repos    []domain.RepositoryEntry
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRepoList creates a new repository list component.
func NewRepoList(s *styles.Styles) *RepoList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RepoList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (r *RepoList) Update(msg tea.Msg) (*RepoList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			if len(r.repos) > 0 {
				r.selected = len(r.repos) - 1
			}
		}
	}
	return r, nil
}

// View renders the list.
func (r *RepoList) View() string {
	if len(r.repos) == 0 {
		return r.styles.Muted.Render("No repositories")
	}

	lines := make([]string, 0, len(r.repos)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Repositories (%d)", len(r.repos))), "")

	// Each repository takes two lines.
	visibleCount := (r.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.repos))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRepo(i, &r.repos[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *RepoList) renderRepo(index int, repo *domain.RepositoryEntry) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := truncate(repo.Name, max(r.width-24, 10))
	counts := fmt.Sprintf("★ %d  ⑂ %d", repo.Stars, repo.Forks)

	var nameLine string
	if index == r.selected {
		nameLine = r.styles.Selected.Render(indicator + name)
	} else {
		nameLine = r.styles.Normal.Render(indicator + name)
	}
	nameLine += "  " + r.styles.Stat.Render(counts)

	desc := repo.Description
	if desc == "" {
		desc = "updated " + repo.UpdatedAt.Format("2006-01-02")
	}
	descLine := r.styles.Muted.Render("    " + truncate(desc, max(r.width-6, 20)))

	return nameLine + "\n" + descLine
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// SetRepositories replaces the list. The selection is kept when the
// previously selected repository is still present.
func (r *RepoList) SetRepositories(repos []domain.RepositoryEntry) {
	var current string
	if sel := r.SelectedRepository(); sel != nil {
		current = sel.FullName()
	}

	r.repos = repos
	r.selected = 0
	for i := range repos {
		if repos[i].FullName() == current {
			r.selected = i
			break
		}
	}
}

// Repositories returns the listed repositories.
func (r *RepoList) Repositories() []domain.RepositoryEntry {
	return r.repos
}

// Selected returns the index of the selected repository.
func (r *RepoList) Selected() int {
	return r.selected
}

// SelectedRepository returns the selected repository, or nil if the list is empty.
func (r *RepoList) SelectedRepository() *domain.RepositoryEntry {
	if r.selected < 0 || r.selected >= len(r.repos) {
		return nil
	}
	return &r.repos[r.selected]
}

// MoveUp moves selection up.
func (r *RepoList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RepoList) MoveDown() {
	if r.selected < len(r.repos)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *RepoList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of repositories.
func (r *RepoList) Count() int {
	return len(r.repos)
}
