package tui

import (
	"sparkathon/models"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorBrand   lipgloss.Color = "#3b82f6"
	colorText    lipgloss.Color = "#e5e7eb"
	colorMuted   lipgloss.Color = "#9ca3af"
	colorSuccess lipgloss.Color = "#22c55e"
	colorInfo    lipgloss.Color = "#60a5fa"
	colorWarning lipgloss.Color = "#eab308"
	colorError   lipgloss.Color = "#ef4444"
	colorPremium lipgloss.Color = "#a855f7"
)

var (
	brandStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Underline(true).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	badgeStyle     = lipgloss.NewStyle().Foreground(colorPremium).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	avatarStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorBrand).Padding(0, 1)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)

// tierColor follows the probability tier of a slot.
func tierColor(tier string) lipgloss.Color {
	switch tier {
	case models.TierHigh:
		return colorSuccess
	case models.TierGood:
		return colorInfo
	case models.TierFair:
		return colorWarning
	default:
		return colorError
	}
}
