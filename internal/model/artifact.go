package model

import "time"

// Artifact is one retrieved backup file. Artifacts are immutable once
// written; retention is handled outside this service.
type Artifact struct {
	ID           string    `json:"id"`
	ConsoleName  string    `json:"console_name"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	RetrievedAt  time.Time `json:"retrieved_at"`
}
