package core

import (
	"context"
	"time"

	"github.com/clementg/consoleback/internal/model"
)

// RunLoop raises due-events on every tick until the context is cancelled,
// then waits for in-flight work. A due-event that finds its console busy is
// abandoned, not queued: the next tick naturally re-raises it, so a stuck
// browser never accumulates backlog.
func (o *Orchestrator) RunLoop(ctx context.Context, tick time.Duration) {
	o.logger.Info().Dur("tick", tick).Msg("starting scheduler loop")

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info().Msg("scheduler loop stopping, waiting for running operations")
			o.wg.Wait()
			return
		case <-ticker.C:
			o.Tick(ctx, time.Now())
		}
	}
}

// Tick evaluates every console against its schedule and dispatches due
// operations. Events for different consoles run concurrently; the guard and
// the driver semaphore bound what actually executes.
func (o *Orchestrator) Tick(ctx context.Context, now time.Time) {
	for _, console := range o.reg.List() {
		if !console.Enabled {
			continue
		}

		if backupDue(console, now) {
			c := console
			o.wg.Add(1)
			go func() {
				defer o.wg.Done()
				o.runScheduledBackup(ctx, c)
			}()
		}

		if checkDue(console, now) {
			c := console
			o.wg.Add(1)
			go func() {
				defer o.wg.Done()
				o.runScheduledCheck(ctx, c)
			}()
		}
	}
}

// backupDue reports whether the backup interval has elapsed. A console that
// has never run is due immediately.
func backupDue(c model.Console, now time.Time) bool {
	if c.BackupInterval <= 0 {
		return false
	}
	if c.LastBackupAt == nil {
		return true
	}
	return now.Sub(*c.LastBackupAt) >= c.BackupInterval.Std()
}

// checkDue reports whether a connectivity check is due. A console with
// checks disabled never produces a check-due event.
func checkDue(c model.Console, now time.Time) bool {
	if !c.ChecksEnabled || c.CheckInterval <= 0 {
		return false
	}
	if c.LastCheckAt == nil {
		return true
	}
	return now.Sub(*c.LastCheckAt) >= c.CheckInterval.Std()
}
