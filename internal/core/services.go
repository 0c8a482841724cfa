package core

import (
	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/artifact"
	"github.com/clementg/consoleback/internal/config"
	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/store"
)

type Services struct {
	Console      *ConsoleService
	Session      *SessionService
	Orchestrator *Orchestrator
}

func NewServices(
	cfg *config.Config,
	reg *store.Registry,
	sessions *store.SessionStore,
	artifacts *artifact.Store,
	g *guard.Guard,
	drv driver.Driver,
	logger zerolog.Logger,
) *Services {
	return &Services{
		Console: NewConsoleService(reg, g, cfg.DefaultBackupInterval, cfg.DefaultCheckInterval),
		Session: NewSessionService(sessions, reg, g, drv, cfg.LoginTimeout, logger),
		Orchestrator: NewOrchestrator(
			reg, sessions, artifacts, g, drv,
			cfg.DriverConcurrency, cfg.DriverTimeout, logger,
		),
	}
}
