package render

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorAccent  = lipgloss.Color("#00CC33")
	ColorDim     = lipgloss.Color("#6C6C6C")
	ColorWarning = lipgloss.Color("#FFAA00")
	ColorBorder  = lipgloss.Color("#008F11")
)

// Pre-built styles
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	StyleRatio = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	StyleMethod = lipgloss.NewStyle().
			Foreground(ColorDim)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorDim).
			Width(22)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Padding(0, 1)

	StyleTableCell = lipgloss.NewStyle().
			Padding(0, 1)
)
