// Package tui is a terminal console over the match journal: recent runs,
// journal log lines, and shortcuts that queue commands for the daemon.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estate_matcher/models"
)

// Journal is the slice of the SQLite journal the console reads and writes
type Journal interface {
	RecentRuns(limit int) ([]models.MatchRun, error)
	RecentLogs(limit int, level models.LogLevel) ([]models.MatchLog, error)
	EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error)
}

type tab int

const (
	tabDashboard tab = iota
	tabLogs
	tabCount
)

const notifyFor = 2 * time.Second

type model struct {
	journal       Journal
	activeTab     tab
	width, height int
	notification  string
	notifyUntil   time.Time
	now           func() time.Time

	dashboard Dashboard
	logs      Logs
}

type tickMsg time.Time

func newModel(journal Journal) model {
	return model{
		journal:   journal,
		activeTab: tabDashboard,
		now:       time.Now,
		dashboard: NewDashboard(journal),
		logs:      NewLogs(journal),
	}
}

// Run blocks until the user quits.
func Run(journal Journal) error {
	_, err := tea.NewProgram(newModel(journal), tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.dashboard.Init(), m.logs.Init(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "d":
			m.activeTab = tabDashboard
		case "L":
			m.activeTab = tabLogs
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "r":
			m.notify("Refreshed")
			return m, m.refreshActive()
		case "a":
			m.send(models.CmdRematchAll, "Full re-match queued!")
			return m, nil
		case "p":
			m.send(models.CmdPause, "Pause queued")
			return m, nil
		case "u":
			m.send(models.CmdResume, "Resume queued")
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dashboard = m.dashboard.SetSize(msg.Width, msg.Height-4)
		m.logs = m.logs.SetSize(msg.Width, msg.Height-4)

	case tickMsg:
		cmds = append(cmds, m.dashboard.Refresh(), m.logs.Refresh(), tickCmd())
	}

	// Data messages go to every view, keys only to the active one
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		switch m.activeTab {
		case tabDashboard:
			m.dashboard, cmd = m.dashboard.Update(msg)
		case tabLogs:
			m.logs, cmd = m.logs.Update(msg)
		}
		cmds = append(cmds, cmd)
	} else {
		m.dashboard, cmd = m.dashboard.Update(msg)
		cmds = append(cmds, cmd)
		m.logs, cmd = m.logs.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) send(cmd models.CommandType, note string) {
	if _, err := m.journal.EnqueueCommand(cmd, nil); err != nil {
		m.notify("Command failed: " + err.Error())
		return
	}
	m.notify(note)
}

func (m *model) notify(s string) {
	m.notification = s
	m.notifyUntil = m.now().Add(notifyFor)
}

func (m model) refreshActive() tea.Cmd {
	switch m.activeTab {
	case tabDashboard:
		return m.dashboard.Refresh()
	case tabLogs:
		return m.logs.Refresh()
	}
	return nil
}

func (m model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.renderContent(), m.renderStatusBar())
}

func (m model) renderTabs() string {
	names := []string{"Dashboard", "Logs"}
	var rendered []string
	for i, name := range names {
		if tab(i) == m.activeTab {
			rendered = append(rendered, tabActive.Render(name))
		} else {
			rendered = append(rendered, tabInactive.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m model) renderContent() string {
	switch m.activeTab {
	case tabDashboard:
		return m.dashboard.View()
	case tabLogs:
		return m.logs.View()
	}
	return ""
}

func (m model) renderStatusBar() string {
	left := "d Dash  L Logs  r Refresh  a Rematch all  p Pause  u Resume  q Quit"
	right := ""
	if m.now().Before(m.notifyUntil) {
		right = notice.Render(m.notification)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	return helpBar.Render(left) + lipgloss.NewStyle().Width(gap).Render("") + right
}
