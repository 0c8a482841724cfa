package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/model"
	"github.com/clementg/consoleback/internal/store"
)

// SessionService owns the single shared login session. The only path from
// Expired (or Unauthenticated) back to Valid is the interactive login flow:
// credentials are never held by this system, so recovery always goes through
// a human.
type SessionService struct {
	sessions *store.SessionStore
	reg      *store.Registry
	guard    *guard.Guard
	driver   driver.Driver

	loginTimeout time.Duration
	logger       zerolog.Logger
}

func NewSessionService(sessions *store.SessionStore, reg *store.Registry, g *guard.Guard, drv driver.Driver, loginTimeout time.Duration, logger zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:     sessions,
		reg:          reg,
		guard:        g,
		driver:       drv,
		loginTimeout: loginTimeout,
		logger:       logger.With().Str("component", "session").Logger(),
	}
}

// Summary is the session view exposed to the control surface. Cookie values
// never leave the store.
type Summary struct {
	State       string     `json:"state"`
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	CookieCount int        `json:"cookie_count"`
}

func (s *SessionService) Summary() Summary {
	session := s.sessions.Get()
	return Summary{
		State:       session.State,
		CapturedAt:  session.CapturedAt,
		CookieCount: len(session.Cookies),
	}
}

// StartLogin kicks off the interactive login flow and returns immediately;
// the flow completes asynchronously relative to the scheduler, which only
// ever observes the resulting session state. Returns Busy when a login is
// already running or while any console operation is in flight: those hold
// their key for the whole run, so an in-flight backup could otherwise report
// a stale auth failure against the freshly captured session.
func (s *SessionService) StartLogin(ctx context.Context) error {
	release, ok := s.guard.TryAcquire(guard.LoginKey)
	if !ok {
		return fmt.Errorf("%w: login flow already running", ErrBusy)
	}
	if s.guard.ConsoleOpRunning() {
		release()
		return fmt.Errorf("%w: a console operation is running", ErrBusy)
	}

	// Old artifacts are cleared up front so a failed flow cannot leave a
	// half-trusted session behind.
	if err := s.sessions.Clear(); err != nil {
		release()
		return fmt.Errorf("clear saved session: %w", err)
	}
	s.logger.Info().Msg("cleared saved session, opening interactive login")

	go func() {
		defer release()

		// Detached from the request context: the operator finishes the
		// flow in the sidecar browser long after the HTTP response.
		loginCtx, cancel := context.WithTimeout(context.Background(), s.loginTimeout)
		defer cancel()

		cookies, err := s.driver.Login(loginCtx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("interactive login did not complete")
			return
		}
		s.complete(cookies)
	}()

	return nil
}

func (s *SessionService) complete(cookies []model.Cookie) {
	if err := s.sessions.Set(cookies); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist new session")
		return
	}
	if err := s.reg.ResetFailures(); err != nil {
		s.logger.Error().Err(err).Msg("failed to reset console failure counters")
	}
	s.logger.Info().Int("cookies", len(cookies)).Msg("login complete, session valid")
}
