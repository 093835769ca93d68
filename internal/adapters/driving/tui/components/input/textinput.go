// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/murmur/internal/core/domain"
)

// modeOrder is the order the mode selector cycles through.
var modeOrder = []domain.SearchMode{
	domain.SearchModeHybrid,
	domain.SearchModeKeyword,
	domain.SearchModeSemantic,
}

// SearchInput wraps a bubbles textinput with a search mode selector.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	mode      domain.SearchMode
	width     int
}

// NewSearchInput creates a new search input component in hybrid mode.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "What did I say about..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		mode:      domain.SearchModeHybrid,
		width:     50,
	}
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the search input with the active mode.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search ") +
		s.styles.Muted.Render("["+s.mode.String()+"]") +
		s.styles.Title.Render(": ")
	field := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Mode returns the selected search mode.
func (s *SearchInput) Mode() domain.SearchMode {
	return s.mode
}

// SetMode selects a search mode. Invalid modes are ignored.
func (s *SearchInput) SetMode(mode domain.SearchMode) {
	if mode.IsValid() {
		s.mode = mode
	}
}

// CycleMode advances to the next search mode and returns it.
func (s *SearchInput) CycleMode() domain.SearchMode {
	for i, m := range modeOrder {
		if m == s.mode {
			s.mode = modeOrder[(i+1)%len(modeOrder)]
			return s.mode
		}
	}
	s.mode = modeOrder[0]
	return s.mode
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	// Account for label, mode and padding
	inputWidth := width - 22
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.textinput.Width = inputWidth
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}
