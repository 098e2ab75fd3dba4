package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"estate_matcher/models"
)

// SQLiteStore is the local operational journal: match runs, their log lines
// and the command queue the daemon polls.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS match_runs (
		id INTEGER PRIMARY KEY,
		trigger_source TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		properties_scanned INTEGER DEFAULT 0,
		matches_found INTEGER DEFAULT 0,
		average_score REAL DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		report_key TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS match_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_logs_run ON match_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON match_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// Runs
// =============================================================================

func (s *SQLiteStore) CreateRun(run *models.MatchRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO match_runs (trigger_source, started_at, status)
		VALUES (?, ?, ?)`,
		run.Trigger, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

func (s *SQLiteStore) UpdateRun(run *models.MatchRun) error {
	_, err := s.db.Exec(`
		UPDATE match_runs SET finished_at = ?, status = ?, properties_scanned = ?,
			matches_found = ?, average_score = ?, errors_count = ?, report_key = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.PropertiesScanned, run.MatchesFound,
		run.AverageScore, run.ErrorsCount, run.ReportKey, run.ID)
	return err
}

const runColumns = `id, trigger_source, started_at, finished_at, status, properties_scanned,
	matches_found, average_score, errors_count, report_key`

func (s *SQLiteStore) GetRun(id int64) (*models.MatchRun, error) {
	var run models.MatchRun
	err := s.db.Get(&run, `SELECT `+runColumns+` FROM match_runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) RecentRuns(limit int) ([]models.MatchRun, error) {
	var runs []models.MatchRun
	err := s.db.Select(&runs, `
		SELECT `+runColumns+`
		FROM match_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	return runs, err
}

// =============================================================================
// Logs
// =============================================================================

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, source string) error {
	_, err := s.db.Exec(`
		INSERT INTO match_logs (run_id, timestamp, level, message, source)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, source)
	return err
}

func (s *SQLiteStore) LogsForRun(runID int64) ([]models.MatchLog, error) {
	var logs []models.MatchLog
	err := s.db.Select(&logs, `
		SELECT id, run_id, timestamp, level, message, source
		FROM match_logs WHERE run_id = ? ORDER BY timestamp, id`, runID)
	return logs, err
}

// RecentLogs returns the newest journal lines first. An empty level means all levels.
func (s *SQLiteStore) RecentLogs(limit int, level models.LogLevel) ([]models.MatchLog, error) {
	var logs []models.MatchLog
	var err error
	if level != "" {
		err = s.db.Select(&logs, `
			SELECT id, run_id, timestamp, level, message, source
			FROM match_logs WHERE level = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, level, limit)
	} else {
		err = s.db.Select(&logs, `
			SELECT id, run_id, timestamp, level, message, source
			FROM match_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	}
	return logs, err
}

// =============================================================================
// Commands
// =============================================================================

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error) {
	var raw []byte
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return 0, err
		}
		raw = b
	}
	result, err := s.db.Exec(`
		INSERT INTO commands (command, params, created_at) VALUES (?, ?, ?)`,
		string(cmd), nullableJSON(raw), time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// commandRow mirrors the commands table; params is NULL for commands
// that take no target.
type commandRow struct {
	ID          int64          `db:"id"`
	Command     string         `db:"command"`
	Params      sql.NullString `db:"params"`
	CreatedAt   time.Time      `db:"created_at"`
	ProcessedAt *time.Time     `db:"processed_at"`
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	var rows []commandRow
	if err := s.db.Select(&rows, `
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at, id`); err != nil {
		return nil, err
	}

	cmds := make([]models.Command, 0, len(rows))
	for _, r := range rows {
		cmd := models.Command{
			ID:          r.ID,
			Command:     models.CommandType(r.Command),
			CreatedAt:   r.CreatedAt,
			ProcessedAt: r.ProcessedAt,
		}
		if r.Params.Valid {
			cmd.Params = json.RawMessage(r.Params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

func nullableJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
