package request

type CreateConsole struct {
	Name      string `json:"name" validate:"required,consolename"`
	BackupURL string `json:"backup_url" validate:"required,http_url"`
}

// UpdateSchedule carries intervals in minutes; the service enforces the
// 15-minute granularity floor.
type UpdateSchedule struct {
	BackupIntervalMinutes int  `json:"backup_interval_minutes" validate:"required,min=1"`
	CheckIntervalMinutes  int  `json:"check_interval_minutes" validate:"omitempty,min=1"`
	ChecksEnabled         bool `json:"checks_enabled"`
}
