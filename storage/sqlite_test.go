package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_matcher/models"
)

func openJournal(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openJournal(t)

	run := &models.MatchRun{
		Trigger:   "schedule",
		StartedAt: time.Now().Add(-time.Minute),
		Status:    models.RunStatusRunning,
	}
	id, err := store.CreateRun(run)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)

	finished := time.Now()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	run.PropertiesScanned = 12
	run.MatchesFound = 40
	run.AverageScore = 67.5
	run.ReportKey = "reports/x.json"
	require.NoError(t, store.UpdateRun(run))

	got, err := store.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Equal(t, 12, got.PropertiesScanned)
	assert.Equal(t, 40, got.MatchesFound)
	assert.InDelta(t, 67.5, got.AverageScore, 1e-9)
	assert.Equal(t, "reports/x.json", got.ReportKey)
	require.NotNil(t, got.FinishedAt)

	missing, err := store.GetRun(id + 100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecentRuns(t *testing.T) {
	store := openJournal(t)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		_, err := store.CreateRun(&models.MatchRun{
			Trigger:   "command",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    models.RunStatusRunning,
		})
		require.NoError(t, err)
	}

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.Nil(t, runs[0].FinishedAt)
}

func TestLogs(t *testing.T) {
	store := openJournal(t)
	id, err := store.CreateRun(&models.MatchRun{StartedAt: time.Now(), Status: models.RunStatusRunning})
	require.NoError(t, err)

	require.NoError(t, store.Log(&id, models.LogLevelInfo, "run started", "worker"))
	require.NoError(t, store.Log(&id, models.LogLevelWarn, "property skipped", "worker"))
	require.NoError(t, store.Log(nil, models.LogLevelError, "unrelated", "scheduler"))

	logs, err := store.LogsForRun(id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "run started", logs[0].Message)
	assert.Equal(t, models.LogLevelWarn, logs[1].Level)
	require.NotNil(t, logs[0].RunID)
	assert.Equal(t, id, *logs[0].RunID)
}

func TestRecentLogs(t *testing.T) {
	store := openJournal(t)
	require.NoError(t, store.Log(nil, models.LogLevelInfo, "first", "worker"))
	require.NoError(t, store.Log(nil, models.LogLevelWarn, "second", "worker"))
	require.NoError(t, store.Log(nil, models.LogLevelInfo, "third", "scheduler"))

	all, err := store.RecentLogs(10, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.Nil(t, all[0].RunID)

	warn, err := store.RecentLogs(10, models.LogLevelWarn)
	require.NoError(t, err)
	require.Len(t, warn, 1)
	assert.Equal(t, "second", warn[0].Message)

	limited, err := store.RecentLogs(1, "")
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCommandQueue(t *testing.T) {
	store := openJournal(t)

	_, err := store.EnqueueCommand(models.CmdRematchAll, nil)
	require.NoError(t, err)
	targetID, err := store.EnqueueCommand(models.CmdRematchClient, &models.CommandParams{TargetID: "abc"})
	require.NoError(t, err)

	cmds, err := store.GetPendingCommands()
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, models.CmdRematchAll, cmds[0].Command)

	params, err := store.ParseCommandParams(&cmds[0])
	require.NoError(t, err)
	assert.Empty(t, params.TargetID)

	params, err = store.ParseCommandParams(&cmds[1])
	require.NoError(t, err)
	assert.Equal(t, "abc", params.TargetID)

	require.NoError(t, store.MarkCommandProcessed(targetID))
	cmds, err = store.GetPendingCommands()
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, models.CmdRematchAll, cmds[0].Command)
}

func TestPendingCommandsWithoutParams(t *testing.T) {
	store := openJournal(t)

	_, err := store.EnqueueCommand(models.CmdPause, nil)
	require.NoError(t, err)
	_, err = store.EnqueueCommand(models.CmdRematchClient, &models.CommandParams{TargetID: "c-1"})
	require.NoError(t, err)

	// a param-less row must not wedge later polls
	for i := 0; i < 3; i++ {
		cmds, err := store.GetPendingCommands()
		require.NoError(t, err)
		require.Len(t, cmds, 2)
		assert.Nil(t, cmds[0].Params)
		assert.Nil(t, cmds[0].ProcessedAt)
		assert.Equal(t, models.CmdRematchClient, cmds[1].Command)
		assert.JSONEq(t, `{"target_id":"c-1"}`, string(cmds[1].Params))
	}
}

func TestParseCommandParamsMalformed(t *testing.T) {
	store := openJournal(t)
	_, err := store.ParseCommandParams(&models.Command{Params: []byte(`{"target_id":`)})
	assert.Error(t, err)
}
