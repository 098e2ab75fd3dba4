package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estate_matcher/models"
)

const dashboardRuns = 10

type dashboardDataMsg struct {
	runs []models.MatchRun
	err  error
}

type Dashboard struct {
	journal       Journal
	width, height int
	runs          []models.MatchRun
	err           error
}

func NewDashboard(journal Journal) Dashboard {
	return Dashboard{journal: journal}
}

func (d Dashboard) Init() tea.Cmd {
	return d.Refresh()
}

func (d Dashboard) Refresh() tea.Cmd {
	return func() tea.Msg {
		runs, err := d.journal.RecentRuns(dashboardRuns)
		return dashboardDataMsg{runs: runs, err: err}
	}
}

func (d Dashboard) SetSize(w, h int) Dashboard {
	d.width = w
	d.height = h
	return d
}

func (d Dashboard) Update(msg tea.Msg) (Dashboard, tea.Cmd) {
	if msg, ok := msg.(dashboardDataMsg); ok {
		d.runs = msg.runs
		d.err = msg.err
	}
	return d, nil
}

func (d Dashboard) View() string {
	if d.err != nil {
		return errText.Render("journal: " + d.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		sectionTitle.Render("Dashboard"),
		lipgloss.JoinHorizontal(lipgloss.Top, d.renderStatCards(), d.renderLastRun()),
		"",
		sectionTitle.Render("Recent Runs"),
		d.renderRunsTable(),
	)
}

func (d Dashboard) renderStatCards() string {
	var matches, errors int
	var scoreSum float64
	var scored int
	for _, r := range d.runs {
		matches += r.MatchesFound
		errors += r.ErrorsCount
		if r.MatchesFound > 0 {
			scoreSum += r.AverageScore
			scored++
		}
	}
	avg := "—"
	if scored > 0 {
		avg = fmt.Sprintf("%.1f", scoreSum/float64(scored))
	}

	cards := []string{
		renderStatCard("Runs", fmt.Sprintf("%d", len(d.runs))),
		renderStatCard("Matches", fmt.Sprintf("%d", matches)),
		renderStatCard("Avg score", avg),
		renderStatCard("Errors", fmt.Sprintf("%d", errors)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderStatCard(label, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		statValue.Render(value),
		statLabel.Render(label),
	)
	return statCard.Width(16).Render(content)
}

func (d Dashboard) renderLastRun() string {
	if len(d.runs) == 0 {
		return runCard.Width(28).Render(mutedText.Render("No runs yet"))
	}
	r := d.runs[0]
	status, style := statusLabel(r.Status)

	content := lipgloss.JoinVertical(lipgloss.Left,
		statValue.Render(fmt.Sprintf("Run #%d", r.ID)),
		style.Render(status),
		statLabel.Render(fmt.Sprintf("Started: %s", relativeTime(r.StartedAt))),
		statLabel.Render(fmt.Sprintf("Trigger: %s", r.Trigger)),
		statLabel.Render(fmt.Sprintf("Duration: %s", runDuration(r))),
		statLabel.Render(fmt.Sprintf("Report: %s", truncate(orDash(r.ReportKey), 18))),
	)
	return runCard.Width(28).Render(content)
}

func (d Dashboard) renderRunsTable() string {
	if len(d.runs) == 0 {
		return mutedText.Render("No runs yet")
	}

	header := fmt.Sprintf("%-6s %-10s %-10s %-9s %6s %7s %6s %6s",
		"Run", "Status", "Started", "Trigger", "Props", "Matches", "Avg", "Errors")
	rows := tableHeader.Render(header) + "\n"

	for _, r := range d.runs {
		_, style := statusLabel(r.Status)
		row := fmt.Sprintf("%-6d %s %-10s %-9s %6d %7d %s %6d",
			r.ID,
			style.Render(fmt.Sprintf("%-10s", r.Status)),
			r.StartedAt.Format("15:04:05"),
			truncate(r.Trigger, 9),
			r.PropertiesScanned,
			r.MatchesFound,
			scoreStyle(r.AverageScore).Render(fmt.Sprintf("%6.1f", r.AverageScore)),
			r.ErrorsCount,
		)
		rows += row + "\n"
	}
	return rows
}

func statusLabel(s models.RunStatus) (string, lipgloss.Style) {
	switch s {
	case models.RunStatusCompleted:
		return "✓ completed", okText
	case models.RunStatusFailed:
		return "✗ failed", errText
	case models.RunStatusRunning:
		return "◐ running", pendingText
	}
	return "○ " + string(s), pendingText
}

func runDuration(r models.MatchRun) string {
	if r.FinishedAt == nil {
		return "—"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
