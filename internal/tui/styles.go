// Package tui holds the interactive terminal views: the report wizard,
// the nearby watch screen and the animal detail renderer.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette. The semantic colors are shared by both themes.
var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorInfo    = lipgloss.Color("#2196F3")

	lightForeground = lipgloss.Color("#101F38")
	lightMuted      = lipgloss.Color("#8a94a6")
	darkForeground  = lipgloss.Color("#f2f2f2")
	darkMuted       = lipgloss.Color("#5c6b85")
)

// Styles is the style set a view renders with.
type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Body       lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Warning    lipgloss.Style
	Info       lipgloss.Style
	StepActive lipgloss.Style
	StepDone   lipgloss.Style
	StepTodo   lipgloss.Style
	FieldLabel lipgloss.Style
	FieldError lipgloss.Style
	Selected   lipgloss.Style
	Badge      lipgloss.Style
}

// NewStyles builds the style set for a theme name ("light" or "dark").
func NewStyles(theme string) Styles {
	fg, muted := lightForeground, lightMuted
	if theme == "dark" {
		fg, muted = darkForeground, darkMuted
	}
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(fg),
		Subtitle:   lipgloss.NewStyle().Foreground(fg),
		Body:       lipgloss.NewStyle().Foreground(fg),
		Muted:      lipgloss.NewStyle().Foreground(muted),
		Success:    lipgloss.NewStyle().Foreground(colorSuccess),
		Error:      lipgloss.NewStyle().Foreground(colorError),
		Warning:    lipgloss.NewStyle().Foreground(colorWarning),
		Info:       lipgloss.NewStyle().Foreground(colorInfo),
		StepActive: lipgloss.NewStyle().Bold(true).Foreground(colorInfo),
		StepDone:   lipgloss.NewStyle().Foreground(colorSuccess),
		StepTodo:   lipgloss.NewStyle().Foreground(muted),
		FieldLabel: lipgloss.NewStyle().Width(14).Foreground(muted),
		FieldError: lipgloss.NewStyle().Foreground(colorError),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(colorInfo),
		Badge:      lipgloss.NewStyle().Padding(0, 1).Background(colorInfo).Foreground(lipgloss.Color("#ffffff")),
	}
}
