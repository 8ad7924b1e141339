// Package styles provides colours and lipgloss styles for terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for run summaries.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks ok outcomes.
	Success lipgloss.Color

	// Warning marks degraded or failed partitions.
	Warning lipgloss.Color

	// Error marks aborted runs.
	Error lipgloss.Color

	// Border is the table border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#2E7D32"), // Fairway green
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
		Border:  lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Header style for table header cells.
	Header lipgloss.Style

	// Cell style for table body cells.
	Cell lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Border style for table borders.
	Border lipgloss.Style
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
			Foreground(theme.Primary),

		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),

		Cell: lipgloss.NewStyle().
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		Border: lipgloss.NewStyle().
			Foreground(theme.Border),
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

// Status picks the style for an ok, degraded/failed or aborted outcome.
func (s *Styles) Status(status string) lipgloss.Style {
	switch status {
	case "ok":
		return s.Success
	case "degraded", "failed", "canceled":
		return s.Warning
	default:
		return s.Error
	}
}
