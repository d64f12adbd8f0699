package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	ActiveLine  lipgloss.Style
	EntryDir    lipgloss.Style
	EntryFile   lipgloss.Style
	EntryFeed   lipgloss.Style
	PanelTitle  lipgloss.Style
	PanelBody   lipgloss.Style
	Status      lipgloss.Style
	StatusWarn  lipgloss.Style
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	Notice      lipgloss.Style
	HelpKey     lipgloss.Style
	HelpText    lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		TabInactive: lipgloss.NewStyle().Foreground(cpOverlay1).Padding(0, 1),
		ActiveLine:  lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		EntryDir:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		EntryFile:   lipgloss.NewStyle().Foreground(cpText),
		EntryFeed:   lipgloss.NewStyle().Foreground(cpGreen),
		PanelTitle:  lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		PanelBody:   lipgloss.NewStyle().Foreground(cpSubtext0),
		Status:      lipgloss.NewStyle().Foreground(cpGreen),
		StatusWarn:  lipgloss.NewStyle().Foreground(cpRed),
		Dialog:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(cpMauve).Padding(0, 1),
		DialogTitle: lipgloss.NewStyle().Bold(true).Foreground(cpPeach),
		Notice:      lipgloss.NewStyle().Bold(true).Foreground(cpYellow),
		HelpKey:     lipgloss.NewStyle().Bold(true).Foreground(cpYellow),
		HelpText:    lipgloss.NewStyle().Foreground(cpOverlay1),
	}
}
