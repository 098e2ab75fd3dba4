package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type CommandType string

const (
	CmdRematchAll      CommandType = "rematch_all"
	CmdRematchProperty CommandType = "rematch_property"
	CmdRematchClient   CommandType = "rematch_client"
	CmdPause           CommandType = "pause"
	CmdResume          CommandType = "resume"
)

func ParseCommandType(s string) (CommandType, error) {
	switch c := CommandType(s); c {
	case CmdRematchAll, CmdRematchProperty, CmdRematchClient, CmdPause, CmdResume:
		return c, nil
	}
	return "", fmt.Errorf("unknown command %q", s)
}

type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	TargetID string `json:"target_id,omitempty"`
}
