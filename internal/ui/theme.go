package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title          lipgloss.Style
	Header         lipgloss.Style
	Cell           lipgloss.Style
	Name           lipgloss.Style
	Duration       lipgloss.Style
	Empty          lipgloss.Style
	Loading        lipgloss.Style
	Error          lipgloss.Style
	Classification lipgloss.Style
	Pending        lipgloss.Style
	Border         lipgloss.Style
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	muted := lipgloss.Color("#7C7C7C")
	return Theme{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Header:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Padding(0, 1),
		Cell:           lipgloss.NewStyle().Padding(0, 1),
		Name:           lipgloss.NewStyle().Padding(0, 1).Foreground(accent),
		Duration:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#04B575")),
		Empty:          lipgloss.NewStyle().Italic(true).Foreground(muted),
		Loading:        lipgloss.NewStyle().Foreground(muted),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		Classification: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		Pending:        lipgloss.NewStyle().Italic(true).Foreground(muted),
		Border:         lipgloss.NewStyle().Foreground(muted),
	}
}
