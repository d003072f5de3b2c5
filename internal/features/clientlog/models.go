// Package clientlog accepts log entries reported by the game client and
// writes them to the server log.
package clientlog

import (
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"roleta.com.br/server/internal/common"
)

const (
	maxMessageLen  = 1000
	maxContextKeys = 20
	maxValueLen    = 200
)

// Entry is the body of POST /api/logs.
type Entry struct {
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Source    string            `json:"source,omitempty"` // client component, e.g. "wallet-modal"
	Context   map[string]string `json:"context,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
}

// levels maps client levels to logrus levels. "critical" is logged as error
// with critical=true.
var levels = map[string]log.Level{
	"debug":    log.DebugLevel,
	"info":     log.InfoLevel,
	"warn":     log.WarnLevel,
	"error":    log.ErrorLevel,
	"critical": log.ErrorLevel,
}

// Validate checks every field and returns the logrus level for the entry.
func (e Entry) Validate() (log.Level, error) {
	level, ok := levels[strings.ToLower(e.Level)]
	if !ok {
		return 0, common.NewValidationError("level", "must be one of debug, info, warn, error, critical")
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return 0, common.NewValidationError("message", "required")
	}
	if utf8.RuneCountInString(msg) > maxMessageLen {
		return 0, common.NewValidationError("message", "too long")
	}
	if len(e.Context) > maxContextKeys {
		return 0, common.NewValidationError("context", "too many keys")
	}
	for k, v := range e.Context {
		if k == "" || utf8.RuneCountInString(v) > maxValueLen {
			return 0, common.NewValidationError("context", "empty key or value too long")
		}
	}
	return level, nil
}
