package terminal

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF") // Teal accent
	secondaryColor = lipgloss.Color("#666666") // Gray for secondary text
	successColor   = lipgloss.Color("#87AF87") // Sage for completed cells
	pendingColor   = lipgloss.Color("#D7AF5F") // Amber for a task that is due
	errorColor     = lipgloss.Color("#AF5F5F")

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// SubtleStyle for hints and help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// SuccessStyle for completions and victory
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// ErrorStyle for rejected actions
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// BoxStyle for the totals panel
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	boundaryCellStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	completedCellStyle = lipgloss.NewStyle().
				Foreground(successColor)

	playerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)

	pendingCellStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(pendingColor)
)
