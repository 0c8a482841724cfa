package core

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/model"
	"github.com/clementg/consoleback/internal/store"
)

// ConsoleService owns registry lifecycle: add, schedule updates, removal.
// Run-state mutation (outcomes, counters) belongs to the Orchestrator.
type ConsoleService struct {
	reg   *store.Registry
	guard *guard.Guard

	defaultBackupInterval time.Duration
	defaultCheckInterval  time.Duration
}

func NewConsoleService(reg *store.Registry, g *guard.Guard, defaultBackup, defaultCheck time.Duration) *ConsoleService {
	return &ConsoleService{
		reg:                   reg,
		guard:                 g,
		defaultBackupInterval: defaultBackup,
		defaultCheckInterval:  defaultCheck,
	}
}

// Add registers a new console with default intervals. Validation rejects the
// request before any state mutation.
func (s *ConsoleService) Add(ctx context.Context, name, backupURL string) (*model.Console, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: console name is required", ErrValidation)
	}
	if err := validateBackupURL(backupURL); err != nil {
		return nil, err
	}
	if s.reg.Exists(name) {
		return nil, fmt.Errorf("%w: console %q already exists", ErrValidation, name)
	}

	now := time.Now()
	console := model.Console{
		ID:             uuid.New().String(),
		Name:           name,
		BackupURL:      backupURL,
		BackupInterval: model.Duration(s.defaultBackupInterval),
		CheckInterval:  model.Duration(s.defaultCheckInterval),
		ChecksEnabled:  true,
		Enabled:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.reg.Add(console); err != nil {
		return nil, fmt.Errorf("add console: %w", err)
	}
	return &console, nil
}

// UpdateSchedule changes a console's intervals. Intervals below the minimum
// granularity are rejected and the prior schedule is left unchanged. The
// check interval is only validated when checks are enabled; a disabled check
// schedule carries no interval requirement.
func (s *ConsoleService) UpdateSchedule(ctx context.Context, name string, backupInterval, checkInterval time.Duration, checksEnabled bool) (*model.Console, error) {
	if backupInterval < MinInterval {
		return nil, fmt.Errorf("%w: backup interval %s is below the %s minimum", ErrValidation, backupInterval, MinInterval)
	}
	if checksEnabled && checkInterval < MinInterval {
		return nil, fmt.Errorf("%w: check interval %s is below the %s minimum", ErrValidation, checkInterval, MinInterval)
	}

	if !s.reg.Exists(name) {
		return nil, fmt.Errorf("%w: console %q", ErrNotFound, name)
	}

	err := s.reg.Update(name, func(c *model.Console) error {
		c.BackupInterval = model.Duration(backupInterval)
		c.CheckInterval = model.Duration(checkInterval)
		c.ChecksEnabled = checksEnabled
		c.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update schedule for %q: %w", name, err)
	}

	updated, _ := s.reg.Get(name)
	return &updated, nil
}

// SetEnabled pauses or resumes scheduling for a console.
func (s *ConsoleService) SetEnabled(ctx context.Context, name string, enabled bool) (*model.Console, error) {
	if !s.reg.Exists(name) {
		return nil, fmt.Errorf("%w: console %q", ErrNotFound, name)
	}

	err := s.reg.Update(name, func(c *model.Console) error {
		c.Enabled = enabled
		c.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set enabled for %q: %w", name, err)
	}

	updated, _ := s.reg.Get(name)
	return &updated, nil
}

// Remove deletes a console. A console whose lock is held is in the middle of
// an operation; removal answers Busy rather than yanking state out from
// under it.
func (s *ConsoleService) Remove(ctx context.Context, name string) error {
	if !s.reg.Exists(name) {
		return fmt.Errorf("%w: console %q", ErrNotFound, name)
	}
	if s.guard.IsHeld(guard.ConsoleKey(name)) {
		return fmt.Errorf("%w: console %q has a running operation", ErrBusy, name)
	}

	removed, err := s.reg.Remove(name)
	if err != nil {
		return fmt.Errorf("remove console %q: %w", name, err)
	}
	if !removed {
		return fmt.Errorf("%w: console %q", ErrNotFound, name)
	}
	return nil
}

// Get returns one console by name.
func (s *ConsoleService) Get(ctx context.Context, name string) (*model.Console, error) {
	c, ok := s.reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: console %q", ErrNotFound, name)
	}
	return &c, nil
}

// List returns all consoles sorted by name.
func (s *ConsoleService) List(ctx context.Context) []model.Console {
	return s.reg.List()
}

func validateBackupURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: backup URL is required", ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: backup URL %q is not well-formed", ErrValidation, raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: backup URL %q must be an absolute http(s) URL", ErrValidation, raw)
	}
	return nil
}
