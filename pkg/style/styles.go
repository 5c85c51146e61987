package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// Activation styles
var (
	ActiveStyle = lipgloss.NewStyle().
			Foreground(ActiveColor).
			Bold(true)

	InactiveStyle = lipgloss.NewStyle().
			Foreground(InactiveColor)

	PartialStyle = lipgloss.NewStyle().
			Foreground(PartialColor).
			Bold(true)
)

// Operation indicator styles
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	InfoIndicator    = InfoStyle.Render("•")
)

// StateStyle returns the style for an activation state.
func StateStyle(state types.TriState) lipgloss.Style {
	switch state {
	case types.True:
		return ActiveStyle
	case types.False:
		return InactiveStyle
	default:
		return PartialStyle
	}
}

// StateIndicator renders a one-cell marker for state.
func StateIndicator(state types.TriState) string {
	switch state {
	case types.True:
		return ActiveStyle.Render("●")
	case types.False:
		return InactiveStyle.Render("○")
	default:
		return PartialStyle.Render("◐")
	}
}

func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
