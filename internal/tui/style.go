package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorGray   = "#353b52"
	colorWhite  = "#ffffff"
	colorGreen  = "#acfab4"
	colorRed    = "#e61f44"
	colorPurple = "#b9a3eb"
	colorBlue   = "#89ddff"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	dangerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))

	dayStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorGray)).
			Padding(0, 1).
			Width(22)
	activeDayStyle = dayStyle.
			BorderForeground(lipgloss.Color(colorGreen))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

func pointer(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
