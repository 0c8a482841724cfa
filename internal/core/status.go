package core

import (
	"sort"
	"time"

	"github.com/clementg/consoleback/internal/model"
)

// ActiveTask is one held guard key, shown by the control surface while an
// operation is in flight.
type ActiveTask struct {
	Key   string    `json:"key"`
	Since time.Time `json:"since"`
}

// ConsoleStatus augments a console record with its computed next-due times.
// A nil next-due time means the operation is due on the next tick.
type ConsoleStatus struct {
	model.Console
	NextBackupAt *time.Time `json:"next_backup_at,omitempty"`
	NextCheckAt  *time.Time `json:"next_check_at,omitempty"`
}

// Status is the aggregate view behind GET /status.
type Status struct {
	Session     Summary         `json:"session"`
	ActiveTasks []ActiveTask    `json:"active_tasks"`
	Consoles    []ConsoleStatus `json:"consoles"`
}

// Status snapshots session state, running operations, and per-console
// schedules.
func (o *Orchestrator) Status(session Summary) Status {
	held := o.guard.Held()
	tasks := make([]ActiveTask, 0, len(held))
	for key, since := range held {
		tasks = append(tasks, ActiveTask{Key: key, Since: since})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Key < tasks[j].Key })

	consoles := o.reg.List()
	statuses := make([]ConsoleStatus, 0, len(consoles))
	for _, c := range consoles {
		cs := ConsoleStatus{Console: c}
		if c.Enabled {
			if c.LastBackupAt != nil && c.BackupInterval > 0 {
				next := c.LastBackupAt.Add(c.BackupInterval.Std())
				cs.NextBackupAt = &next
			}
			if c.ChecksEnabled && c.LastCheckAt != nil && c.CheckInterval > 0 {
				next := c.LastCheckAt.Add(c.CheckInterval.Std())
				cs.NextCheckAt = &next
			}
		}
		statuses = append(statuses, cs)
	}

	return Status{
		Session:     session,
		ActiveTasks: tasks,
		Consoles:    statuses,
	}
}
