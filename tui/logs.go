package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estate_matcher/models"
)

const logsLimit = 200

// "" is the all-levels filter
var logLevels = []models.LogLevel{"", models.LogLevelInfo, models.LogLevelWarn, models.LogLevelError}

type logsMsg struct {
	logs []models.MatchLog
	err  error
}

type Logs struct {
	journal       Journal
	width, height int
	logs          []models.MatchLog
	err           error
	levelIndex    int
	scrollOffset  int
}

func NewLogs(journal Journal) Logs {
	return Logs{journal: journal}
}

func (l Logs) Init() tea.Cmd {
	return l.Refresh()
}

func (l Logs) Refresh() tea.Cmd {
	level := logLevels[l.levelIndex]
	return func() tea.Msg {
		logs, err := l.journal.RecentLogs(logsLimit, level)
		return logsMsg{logs: logs, err: err}
	}
}

func (l Logs) SetSize(w, h int) Logs {
	l.width = w
	l.height = h
	return l
}

func (l Logs) Update(msg tea.Msg) (Logs, tea.Cmd) {
	switch msg := msg.(type) {
	case logsMsg:
		l.logs = msg.logs
		l.err = msg.err
		l.scrollOffset = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			if l.levelIndex > 0 {
				l.levelIndex--
				return l, l.Refresh()
			}
		case "right", "l":
			if l.levelIndex < len(logLevels)-1 {
				l.levelIndex++
				return l, l.Refresh()
			}
		case "up", "k":
			if l.scrollOffset > 0 {
				l.scrollOffset--
			}
		case "down", "j":
			if l.scrollOffset < l.maxScroll() {
				l.scrollOffset++
			}
		case "g":
			l.scrollOffset = 0
		case "G":
			l.scrollOffset = l.maxScroll()
		}
	}
	return l, nil
}

func (l Logs) visibleLines() int {
	if v := l.height - 6; v > 0 {
		return v
	}
	return 10
}

func (l Logs) maxScroll() int {
	if m := len(l.logs) - l.visibleLines(); m > 0 {
		return m
	}
	return 0
}

func (l Logs) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		sectionTitle.Render("Logs"),
		l.renderFilter(),
		"",
		l.renderLogs(),
	)
}

func (l Logs) renderFilter() string {
	var parts []string
	for i, level := range logLevels {
		name := strings.ToUpper(string(level))
		if level == "" {
			name = "ALL"
		}
		if i == l.levelIndex {
			parts = append(parts, tabActive.Render("["+name+"]"))
		} else {
			parts = append(parts, tabInactive.Render(name))
		}
	}
	return "Filter: " + strings.Join(parts, " ") + "  (←/→ to change)"
}

func (l Logs) renderLogs() string {
	if l.err != nil {
		return errText.Render("journal: " + l.err.Error())
	}
	if len(l.logs) == 0 {
		return mutedText.Render("No logs")
	}

	start := l.scrollOffset
	end := start + l.visibleLines()
	if end > len(l.logs) {
		end = len(l.logs)
	}

	lines := make([]string, 0, end-start)
	for _, entry := range l.logs[start:end] {
		lines = append(lines, l.formatLog(entry))
	}

	header := mutedText.Render(fmt.Sprintf("  [%d-%d of %d]", start+1, end, len(l.logs)))
	return header + "\n" + strings.Join(lines, "\n")
}

func (l Logs) formatLog(entry models.MatchLog) string {
	ts := entry.Timestamp.Format("15:04:05")
	level := fmt.Sprintf("%-5s", strings.ToUpper(string(entry.Level)))

	var levelStyle lipgloss.Style
	switch entry.Level {
	case models.LogLevelInfo:
		levelStyle = okText
	case models.LogLevelWarn:
		levelStyle = pendingText
	case models.LogLevelError:
		levelStyle = errText
	default:
		levelStyle = lipgloss.NewStyle()
	}

	tag := fmt.Sprintf("[%s] ", entry.Source)
	if entry.RunID != nil {
		tag = fmt.Sprintf("[%s #%d] ", entry.Source, *entry.RunID)
	}

	msg := entry.Message
	if maxLen := l.width - 25 - len(tag); maxLen > 3 && len(msg) > maxLen {
		msg = msg[:maxLen-3] + "..."
	}

	return fmt.Sprintf("%s %s %s%s",
		mutedText.Render(ts),
		levelStyle.Render(level),
		mutedText.Render(tag),
		msg,
	)
}
