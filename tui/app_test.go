package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_matcher/models"
)

type fakeJournal struct {
	runs       []models.MatchRun
	logs       []models.MatchLog
	levels     []models.LogLevel
	commands   []models.CommandType
	enqueueErr error
}

func (f *fakeJournal) RecentRuns(limit int) ([]models.MatchRun, error) {
	return f.runs, nil
}

func (f *fakeJournal) RecentLogs(limit int, level models.LogLevel) ([]models.MatchLog, error) {
	f.levels = append(f.levels, level)
	return f.logs, nil
}

func (f *fakeJournal) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error) {
	if f.enqueueErr != nil {
		return 0, f.enqueueErr
	}
	f.commands = append(f.commands, cmd)
	return int64(len(f.commands)), nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out, cmd
}

func TestCommandShortcuts(t *testing.T) {
	journal := &fakeJournal{}
	m := newModel(journal)
	m.width = 200

	m, _ = update(t, m, key("a"))
	m, _ = update(t, m, key("p"))
	m, _ = update(t, m, key("u"))

	assert.Equal(t, []models.CommandType{models.CmdRematchAll, models.CmdPause, models.CmdResume}, journal.commands)
	assert.Contains(t, m.View(), "Resume queued")
}

func TestCommandFailureIsShown(t *testing.T) {
	m := newModel(&fakeJournal{enqueueErr: errors.New("database is locked")})
	m.width = 200
	m, _ = update(t, m, key("a"))
	assert.Contains(t, m.View(), "database is locked")
}

func TestNotificationExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newModel(&fakeJournal{})
	m.width = 200
	m.now = func() time.Time { return now }
	m, _ = update(t, m, key("a"))
	assert.Contains(t, m.View(), "Full re-match queued!")

	now = now.Add(notifyFor + time.Second)
	assert.NotContains(t, m.View(), "Full re-match queued!")
}

func TestDashboardShowsRuns(t *testing.T) {
	started := time.Now().Add(-2 * time.Minute)
	finished := started.Add(90 * time.Second)
	journal := &fakeJournal{runs: []models.MatchRun{
		{ID: 3, Trigger: "schedule", StartedAt: started, FinishedAt: &finished, Status: models.RunStatusCompleted,
			PropertiesScanned: 12, MatchesFound: 40, AverageScore: 71.2},
		{ID: 2, Trigger: "command", StartedAt: started.Add(-time.Hour), Status: models.RunStatusFailed, ErrorsCount: 5},
	}}

	d := NewDashboard(journal)
	d, _ = d.Update(d.Refresh()())
	view := d.View()

	assert.Contains(t, view, "Run #3")
	assert.Contains(t, view, "completed")
	assert.Contains(t, view, "failed")
	assert.Contains(t, view, "1m30s")
	assert.Contains(t, view, "71.2")
}

func TestDashboardEmpty(t *testing.T) {
	d := NewDashboard(&fakeJournal{})
	d, _ = d.Update(d.Refresh()())
	assert.Contains(t, d.View(), "No runs yet")
}

func TestLogsFilterCycles(t *testing.T) {
	runID := int64(7)
	journal := &fakeJournal{logs: []models.MatchLog{
		{RunID: &runID, Timestamp: time.Now(), Level: models.LogLevelWarn, Message: "property skipped", Source: "match_worker"},
	}}

	m := newModel(journal)
	m, _ = update(t, m, key("tab"))
	assert.Equal(t, tabLogs, m.activeTab)

	m, cmd := update(t, m, key("right"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, drain(cmd))

	require.NotEmpty(t, journal.levels)
	assert.Equal(t, models.LogLevelInfo, journal.levels[len(journal.levels)-1])

	view := m.View()
	assert.Contains(t, view, "[INFO]")
	assert.Contains(t, view, "property skipped")
	assert.Contains(t, view, "match_worker #7")
}

// drain runs a batched command and returns the first logs message it yields.
func drain(cmd tea.Cmd) tea.Msg {
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if m, ok := c().(logsMsg); ok {
				return m
			}
		}
	}
	return msg
}

func TestQuit(t *testing.T) {
	m := newModel(&fakeJournal{})
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestScoreStyleFollowsQuality(t *testing.T) {
	assert.Equal(t, okText.GetForeground(), scoreStyle(85).GetForeground())
	assert.Equal(t, pendingText.GetForeground(), scoreStyle(45).GetForeground())
	assert.NotEqual(t, scoreStyle(85).GetForeground(), scoreStyle(10).GetForeground())
}
