package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 3).
			Align(lipgloss.Center)
)

func errorLine(format string, args ...any) string {
	return errorStyle.Render("✗ "+fmt.Sprintf(format, args...)) + "\n"
}

func successLine(format string, args ...any) string {
	return successStyle.Render("✓ "+fmt.Sprintf(format, args...)) + "\n"
}
