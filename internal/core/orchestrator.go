package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/clementg/consoleback/internal/artifact"
	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/model"
	"github.com/clementg/consoleback/internal/store"
)

// Orchestrator runs due backup and connectivity-check events. Per-console
// locks allow different consoles to progress concurrently while the
// semaphore caps true driver invocations, since one machine drives one
// visible browser.
type Orchestrator struct {
	reg       *store.Registry
	sessions  *store.SessionStore
	artifacts *artifact.Store
	guard     *guard.Guard
	driver    driver.Driver

	sem           *semaphore.Weighted
	driverTimeout time.Duration
	logger        zerolog.Logger

	wg sync.WaitGroup
}

func NewOrchestrator(
	reg *store.Registry,
	sessions *store.SessionStore,
	artifacts *artifact.Store,
	g *guard.Guard,
	drv driver.Driver,
	driverConcurrency int64,
	driverTimeout time.Duration,
	logger zerolog.Logger,
) *Orchestrator {
	if driverConcurrency < 1 {
		driverConcurrency = 1
	}
	return &Orchestrator{
		reg:           reg,
		sessions:      sessions,
		artifacts:     artifacts,
		guard:         g,
		driver:        drv,
		sem:           semaphore.NewWeighted(driverConcurrency),
		driverTimeout: driverTimeout,
		logger:        logger.With().Str("component", "orchestrator").Logger(),
	}
}

// RequestBackupNow is the manual run-now path: it bypasses the interval
// comparison but not the guard. The lock is taken synchronously so two
// concurrent requests yield exactly one execution and one Busy; the
// retrieval itself continues in the background.
func (o *Orchestrator) RequestBackupNow(ctx context.Context, name string) error {
	console, ok := o.reg.Get(name)
	if !ok {
		return fmt.Errorf("%w: console %q", ErrNotFound, name)
	}

	release, ok := o.guard.TryAcquire(guard.ConsoleKey(name))
	if !ok {
		return fmt.Errorf("%w: backup for %q", ErrBusy, name)
	}
	if o.guard.IsHeld(guard.LoginKey) {
		release()
		return fmt.Errorf("%w: login flow in progress", ErrBusy)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer release()
		// Detached from the HTTP request; bounded by the driver timeout.
		o.executeBackup(context.Background(), console)
	}()

	return nil
}

// runScheduledBackup handles one due backup event. Busy is expected under
// overlap and is only logged.
func (o *Orchestrator) runScheduledBackup(ctx context.Context, console model.Console) {
	release, ok := o.guard.TryAcquire(guard.ConsoleKey(console.Name))
	if !ok {
		backupRunsTotal.WithLabelValues(resultSkippedBusy).Inc()
		o.logger.Debug().Str("console", console.Name).Msg("backup skipped, operation already running")
		return
	}
	defer release()

	if o.guard.IsHeld(guard.LoginKey) {
		backupRunsTotal.WithLabelValues(resultSkippedBusy).Inc()
		o.logger.Debug().Str("console", console.Name).Msg("backup skipped, login flow in progress")
		return
	}

	o.executeBackup(ctx, console)
}

// executeBackup runs the retrieval protocol for one console. The caller
// holds the console lock.
func (o *Orchestrator) executeBackup(ctx context.Context, console model.Console) {
	logger := o.logger.With().Str("console", console.Name).Logger()

	// Never spend a browser cycle against a known-bad session.
	if o.sessions.State() != model.SessionValid {
		backupRunsTotal.WithLabelValues(resultSkippedNoSession).Inc()
		logger.Warn().Msg("backup blocked, session needs re-login")
		o.markBlocked(console.Name)
		return
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		logger.Debug().Err(err).Msg("backup abandoned while waiting for driver slot")
		return
	}
	defer o.sem.Release(1)

	logger.Info().Str("url", console.BackupURL).Msg("starting backup retrieval")

	driverCtx, cancel := context.WithTimeout(ctx, o.driverTimeout)
	defer cancel()

	start := time.Now()
	file, err := o.driver.Retrieve(driverCtx, console.BackupURL, o.sessions.Get().Cookies)
	driverDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		art, saveErr := o.artifacts.Save(ctx, console.Name, file.Name, file.Data)
		if saveErr != nil {
			backupRunsTotal.WithLabelValues(resultTransportFailure).Inc()
			logger.Error().Err(saveErr).Msg("backup retrieved but could not be stored")
			o.recordFailure(console.Name, model.OutcomeFailed, "store artifact: "+saveErr.Error())
			return
		}
		backupRunsTotal.WithLabelValues(resultSuccess).Inc()
		logger.Info().Str("path", art.Path).Int64("bytes", art.SizeBytes).Msg("backup stored")
		o.recordSuccess(console.Name, art.Path)

	case errors.Is(err, driver.ErrAuthFailure):
		backupRunsTotal.WithLabelValues(resultAuthFailure).Inc()
		o.expireSession(logger)
		logger.Warn().Msg("backup failed, session rejected, re-login required")
		o.recordFailure(console.Name, model.OutcomeNeedsRelogin, "vendor site rejected the saved session")

	default:
		// Timeouts land here too: a hung browser is a transport failure,
		// retried on the next scheduled interval only.
		backupRunsTotal.WithLabelValues(resultTransportFailure).Inc()
		logger.Warn().Err(err).Msg("backup failed")
		o.recordFailure(console.Name, model.OutcomeFailed, err.Error())
	}
}

// runScheduledCheck handles one due connectivity-check event. Its only side
// effects are the last-check record and, on denial, session expiry.
func (o *Orchestrator) runScheduledCheck(ctx context.Context, console model.Console) {
	release, ok := o.guard.TryAcquire(guard.ConsoleKey(console.Name))
	if !ok {
		checkRunsTotal.WithLabelValues(resultSkippedBusy).Inc()
		o.logger.Debug().Str("console", console.Name).Msg("check skipped, operation already running")
		return
	}
	defer release()

	if o.guard.IsHeld(guard.LoginKey) {
		checkRunsTotal.WithLabelValues(resultSkippedBusy).Inc()
		o.logger.Debug().Str("console", console.Name).Msg("check skipped, login flow in progress")
		return
	}

	logger := o.logger.With().Str("console", console.Name).Logger()

	if o.sessions.State() != model.SessionValid {
		checkRunsTotal.WithLabelValues(resultSkippedNoSession).Inc()
		logger.Debug().Msg("check skipped, session needs re-login")
		return
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer o.sem.Release(1)

	driverCtx, cancel := context.WithTimeout(ctx, o.driverTimeout)
	defer cancel()

	start := time.Now()
	err := o.driver.Probe(driverCtx, console.BackupURL, o.sessions.Get().Cookies)
	driverDuration.Observe(time.Since(start).Seconds())

	outcome := model.OutcomeSuccess
	switch {
	case err == nil:
		logger.Debug().Msg("connectivity check ok")
	case errors.Is(err, driver.ErrAuthFailure):
		checkRunsTotal.WithLabelValues(resultAuthFailure).Inc()
		o.expireSession(logger)
		logger.Warn().Msg("connectivity check denied, re-login required")
		outcome = model.OutcomeNeedsRelogin
	default:
		checkRunsTotal.WithLabelValues(resultTransportFailure).Inc()
		logger.Warn().Err(err).Msg("connectivity check failed")
		outcome = model.OutcomeFailed
	}
	if err == nil {
		checkRunsTotal.WithLabelValues(resultSuccess).Inc()
	}

	now := time.Now()
	updateErr := o.reg.Update(console.Name, func(c *model.Console) error {
		c.LastCheckAt = &now
		c.LastCheckOutcome = outcome
		c.UpdatedAt = now
		return nil
	})
	if updateErr != nil {
		logger.Error().Err(updateErr).Msg("failed to record check outcome")
	}
}

func (o *Orchestrator) expireSession(logger zerolog.Logger) {
	expired, err := o.sessions.Expire()
	if err != nil {
		logger.Error().Err(err).Msg("failed to persist session expiry")
		return
	}
	if expired {
		sessionExpiriesTotal.Inc()
		logger.Warn().Msg("session expired, automated runs paused until re-login")
	}
}

// markBlocked records a blocked-needs-re-login outcome without touching the
// last-run timestamp or the failure counter; no driver cycle was spent.
func (o *Orchestrator) markBlocked(name string) {
	err := o.reg.Update(name, func(c *model.Console) error {
		c.LastBackupOutcome = model.OutcomeNeedsRelogin
		c.LastBackupDetail = "blocked: needs re-login"
		c.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		o.logger.Error().Err(err).Str("console", name).Msg("failed to record blocked outcome")
	}
}

func (o *Orchestrator) recordSuccess(name, path string) {
	now := time.Now()
	err := o.reg.Update(name, func(c *model.Console) error {
		c.LastBackupAt = &now
		c.LastBackupOutcome = model.OutcomeSuccess
		c.LastBackupDetail = path
		c.ConsecutiveFailures = 0
		c.NeedsAttention = false
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		o.logger.Error().Err(err).Str("console", name).Msg("failed to record backup success")
	}
}

func (o *Orchestrator) recordFailure(name, outcome, detail string) {
	now := time.Now()
	var flagged bool
	err := o.reg.Update(name, func(c *model.Console) error {
		c.LastBackupAt = &now
		c.LastBackupOutcome = outcome
		c.LastBackupDetail = detail
		c.ConsecutiveFailures++
		if c.ConsecutiveFailures >= FailureThreshold && !c.NeedsAttention {
			c.NeedsAttention = true
			flagged = true
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		o.logger.Error().Err(err).Str("console", name).Msg("failed to record backup failure")
		return
	}
	if flagged {
		escalationsTotal.Inc()
		o.logger.Warn().Str("console", name).Int("threshold", FailureThreshold).Msg("console flagged for attention after repeated failures")
	}
}

// Wait blocks until in-flight operations finish. Used during shutdown.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
