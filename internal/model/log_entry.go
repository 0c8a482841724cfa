package model

import "time"

// LogEntry is one line of the recent-activity ring shown by the control
// surface.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}
