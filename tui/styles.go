package tui

import (
	"github.com/charmbracelet/lipgloss"

	"estate_matcher/models"
)

var (
	accent  = lipgloss.Color("#7C3AED")
	accent2 = lipgloss.Color("#06B6D4")
	green   = lipgloss.Color("#22C55E")
	amber   = lipgloss.Color("#EAB308")
	orange  = lipgloss.Color("#F97316")
	red     = lipgloss.Color("#EF4444")
	grey    = lipgloss.Color("#6B7280")
	white   = lipgloss.Color("#F9FAFB")

	mutedText   = lipgloss.NewStyle().Foreground(grey)
	okText      = lipgloss.NewStyle().Foreground(green)
	pendingText = lipgloss.NewStyle().Foreground(amber)
	errText     = lipgloss.NewStyle().Foreground(red)

	tabActive   = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 2)
	tabInactive = lipgloss.NewStyle().Foreground(grey).Padding(0, 2)

	sectionTitle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	tableHeader  = sectionTitle
	helpBar      = lipgloss.NewStyle().Foreground(grey).Padding(0, 1)
	notice       = lipgloss.NewStyle().Foreground(green).Padding(0, 1)

	statCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
	runCard = statCard.BorderForeground(accent2)

	statValue = lipgloss.NewStyle().Bold(true).Foreground(white)
	statLabel = lipgloss.NewStyle().Foreground(grey)
)

// scoreStyle colours a score by its quality bucket
func scoreStyle(score float64) lipgloss.Style {
	switch models.QualityOf(score) {
	case models.QualityExcellent:
		return okText
	case models.QualityGood:
		return lipgloss.NewStyle().Foreground(accent2)
	case models.QualityFair:
		return pendingText
	}
	return lipgloss.NewStyle().Foreground(orange)
}
