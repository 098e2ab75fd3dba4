package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// MatchRun records one batch re-match of the catalog
type MatchRun struct {
	ID                int64      `json:"id" db:"id"`
	Trigger           string     `json:"trigger" db:"trigger_source"` // schedule, command, cli
	StartedAt         time.Time  `json:"started_at" db:"started_at"`
	FinishedAt        *time.Time `json:"finished_at" db:"finished_at"`
	Status            RunStatus  `json:"status" db:"status"`
	PropertiesScanned int        `json:"properties_scanned" db:"properties_scanned"`
	MatchesFound      int        `json:"matches_found" db:"matches_found"`
	AverageScore      float64    `json:"average_score" db:"average_score"`
	ErrorsCount       int        `json:"errors_count" db:"errors_count"`
	ReportKey         string     `json:"report_key" db:"report_key"`
}
