package model

import "time"

type Console struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	BackupURL           string     `json:"backup_url"`
	BackupInterval      Duration   `json:"backup_interval"`
	CheckInterval       Duration   `json:"check_interval"`
	ChecksEnabled       bool       `json:"checks_enabled"`
	Enabled             bool       `json:"enabled"`
	LastBackupAt        *time.Time `json:"last_backup_at,omitempty"`
	LastBackupOutcome   string     `json:"last_backup_outcome,omitempty"`
	LastBackupDetail    string     `json:"last_backup_detail,omitempty"`
	LastCheckAt         *time.Time `json:"last_check_at,omitempty"`
	LastCheckOutcome    string     `json:"last_check_outcome,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	NeedsAttention      bool       `json:"needs_attention"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Outcome constants for the last backup/check result of a console.
const (
	OutcomeSuccess      = "success"
	OutcomeFailed       = "failed"
	OutcomeNeedsRelogin = "needs_relogin"
)
