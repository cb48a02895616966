// Package render formats records and reports for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

// Styles contains all the styles used for terminal output.
type Styles struct {
	Title lipgloss.Style

	// Record panels
	Panel     lipgloss.Style
	Timestamp lipgloss.Style
	Summary   lipgloss.Style
	Original  lipgloss.Style
	Image     lipgloss.Style
	Meta      lipgloss.Style

	// Stats
	StatLabel lipgloss.Style
	StatValue lipgloss.Style
	Table     lipgloss.Style
	Header    lipgloss.Style

	Muted   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// DefaultStyles returns the default output styles.
func DefaultStyles() Styles {
	primary := lipgloss.Color("99")   // Purple
	secondary := lipgloss.Color("39") // Cyan
	accent := lipgloss.Color("212")   // Pink
	muted := lipgloss.Color("240")    // Gray
	success := lipgloss.Color("82")   // Green
	warning := lipgloss.Color("214")  // Orange

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1).
			Width(80),
		Timestamp: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),
		Summary: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),
		Original: lipgloss.NewStyle().
			Foreground(muted),
		Image: lipgloss.NewStyle().
			Foreground(accent),
		Meta: lipgloss.NewStyle().
			Foreground(secondary),

		StatLabel: lipgloss.NewStyle().
			Foreground(muted).
			Width(18),
		StatValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),
		Table: lipgloss.NewStyle().
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Warning: lipgloss.NewStyle().
			Foreground(warning),
		Success: lipgloss.NewStyle().
			Foreground(success),
	}
}
