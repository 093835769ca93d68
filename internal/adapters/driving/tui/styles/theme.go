// Package styles provides colour themes and styling for the terminal UIs.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// Theme defines the colour palette used by the CLI and TUI.
type Theme struct {
	// Accent is the main highlight colour.
	Accent lipgloss.Color

	// Secondary marks headers and metadata.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// High, Medium and Low colour relevance badges.
	High   lipgloss.Color
	Medium lipgloss.Color
	Low    lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#F5A97F"), // Peach
		Secondary:  lipgloss.Color("#8BD5CA"), // Teal
		Foreground: lipgloss.Color("#CAD3F5"),
		Muted:      lipgloss.Color("#6E738D"),
		High:       lipgloss.Color("#A6DA95"), // Green
		Medium:     lipgloss.Color("#EED49F"), // Yellow
		Low:        lipgloss.Color("#939AB7"), // Grey
		Error:      lipgloss.Color("#ED8796"),
		Border:     lipgloss.Color("#494D64"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style

	// HighRelevance, MediumRelevance and LowRelevance render relevance labels.
	HighRelevance   lipgloss.Style
	MediumRelevance lipgloss.Style
	LowRelevance    lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#24273A")).
			Background(theme.Accent),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		HighRelevance: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.High),

		MediumRelevance: lipgloss.NewStyle().
			Foreground(theme.Medium),

		LowRelevance: lipgloss.NewStyle().
			Foreground(theme.Low),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#1E2030")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Relevance returns the style for a relevance level.
func (s *Styles) Relevance(r domain.Relevance) lipgloss.Style {
	switch r {
	case domain.RelevanceHigh:
		return s.HighRelevance
	case domain.RelevanceMedium:
		return s.MediumRelevance
	default:
		return s.LowRelevance
	}
}

// MatchSource returns a short tag describing which indexes matched a result.
func MatchSource(r *domain.SearchResult) string {
	switch {
	case r.IsBothMatch():
		return "keyword+semantic"
	case r.HasVectorMatch():
		return "semantic"
	case r.HasKeywordMatch():
		return "keyword"
	default:
		return ""
	}
}
