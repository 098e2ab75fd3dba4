package workers

import (
	"go.uber.org/zap"

	"estate_matcher/models"
)

// LogFunc mirrors a worker message into the match_logs journal
type LogFunc func(runID *int64, level models.LogLevel, source, message string)

// NoOpLogger does nothing (default)
var NoOpLogger LogFunc = func(runID *int64, level models.LogLevel, source, message string) {}

// JournalWriter matches SQLiteStore.Log
type JournalWriter func(runID *int64, level models.LogLevel, message, source string) error

// JournalLog turns a journal writer into a LogFunc. Write failures go to logger
// and are otherwise ignored.
func JournalLog(write JournalWriter, logger *zap.Logger) LogFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(runID *int64, level models.LogLevel, source, message string) {
		if err := write(runID, level, message, source); err != nil {
			logger.Warn("journal write failed", zap.String("source", source), zap.Error(err))
		}
	}
}
