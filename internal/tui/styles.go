package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorMuted   = lipgloss.Color("#858392")
	colorText    = lipgloss.Color("#DFDBDD")
	colorPrimary = lipgloss.Color("#6B50FF")
	colorAccent  = lipgloss.Color("#FF60FF")
	colorSuccess = lipgloss.Color("#00FFB2")
	colorWarning = lipgloss.Color("#FFD300")
	colorError   = lipgloss.Color("#E94090")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(20)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText)
	focusStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	unsetStyle   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	noticeStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	doneStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	pendingStyle = lipgloss.NewStyle().Foreground(colorMuted)
	helpStyle    = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
	barStyle     = lipgloss.NewStyle().Foreground(colorPrimary)

	approvedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSuccess).
			Padding(0, 1)
	reviewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarning).
			Padding(0, 1)
)
