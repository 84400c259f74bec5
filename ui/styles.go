// Package ui is the interactive terminal front end: a feedback form and an
// infinitely scrolling list of recent feedback, run as a bubbletea program.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors pick the light or dark value from the terminal
// background.
var (
	Foreground  = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#f2f2f2"}
	Primary     = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
	Muted       = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	Border      = lipgloss.AdaptiveColor{Light: "#dce0e5", Dark: "#2a3850"}
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Info        = lipgloss.Color("#2196F3")
)

// Styles groups every style the views use.
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Card        lipgloss.Style
	Label       lipgloss.Style
	FieldError  lipgloss.Style
	Button      lipgloss.Style
	FocusButton lipgloss.Style
	Disabled    lipgloss.Style
	ItemName    lipgloss.Style
	ItemTime    lipgloss.Style
	ItemBody    lipgloss.Style
	Alert       lipgloss.Style
	Footer      lipgloss.Style
	ToastOK     lipgloss.Style
	ToastError  lipgloss.Style
}

// DefaultStyles returns the styles used by the program.
func DefaultStyles() Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	toast := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Subtitle:    lipgloss.NewStyle().Foreground(Muted),
		Tab:         lipgloss.NewStyle().Padding(0, 2).Foreground(Muted),
		ActiveTab:   lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(Primary).Underline(true),
		Card:        lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(Border),
		Label:       lipgloss.NewStyle().Bold(true).Foreground(Foreground),
		FieldError:  lipgloss.NewStyle().Foreground(Destructive),
		Button:      button,
		FocusButton: button.BorderForeground(Primary).Bold(true),
		Disabled:    lipgloss.NewStyle().Foreground(Muted).Faint(true),
		ItemName:    lipgloss.NewStyle().Bold(true),
		ItemTime:    lipgloss.NewStyle().Foreground(Muted),
		ItemBody:    lipgloss.NewStyle().Foreground(Foreground),
		Alert:       lipgloss.NewStyle().Foreground(Destructive),
		Footer:      lipgloss.NewStyle().Foreground(Muted).Italic(true),
		ToastOK:     toast.BorderForeground(Success),
		ToastError:  toast.BorderForeground(Destructive),
	}
}
