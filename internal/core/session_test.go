package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/model"
)

func newSessionService(t *testing.T) (*SessionService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewSessionService(env.sessions, env.reg, env.guard, env.drv, time.Minute, zerolog.Nop())
	return svc, env
}

func TestSummary_NeverLeaksCookieValues(t *testing.T) {
	svc, env := newSessionService(t)

	env.validSession(t)

	summary := svc.Summary()
	assert.Equal(t, model.SessionValid, summary.State)
	assert.Equal(t, 1, summary.CookieCount)
	require.NotNil(t, summary.CapturedAt)
}

func TestStartLogin_CompletesAndResetsFailures(t *testing.T) {
	svc, env := newSessionService(t)
	env.addConsole(t, "Office")

	require.NoError(t, env.reg.Update("Office", func(c *model.Console) error {
		c.ConsecutiveFailures = 3
		c.NeedsAttention = true
		return nil
	}))

	env.drv.On("Login", mock.Anything).
		Return([]model.Cookie{{Name: "TOKEN", Value: "fresh"}}, nil)

	require.NoError(t, svc.StartLogin(context.Background()))

	require.Eventually(t, func() bool {
		return env.sessions.State() == model.SessionValid
	}, 2*time.Second, 10*time.Millisecond)

	updated, _ := env.reg.Get("Office")
	assert.Zero(t, updated.ConsecutiveFailures)
	assert.False(t, updated.NeedsAttention)

	// The login key is released once the flow completes.
	require.Eventually(t, func() bool {
		return !env.guard.IsHeld(guard.LoginKey)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartLogin_BusyWhileFlowRunning(t *testing.T) {
	svc, env := newSessionService(t)

	proceed := make(chan struct{})
	env.drv.On("Login", mock.Anything).
		Run(func(mock.Arguments) { <-proceed }).
		Return([]model.Cookie{{Name: "TOKEN", Value: "fresh"}}, nil).Once()

	require.NoError(t, svc.StartLogin(context.Background()))
	require.ErrorIs(t, svc.StartLogin(context.Background()), ErrBusy)

	close(proceed)
	require.Eventually(t, func() bool {
		return env.sessions.State() == model.SessionValid
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartLogin_BusyWhileBackupInFlight(t *testing.T) {
	svc, env := newSessionService(t)
	console := env.addConsole(t, "Office")
	env.validSession(t)

	proceed := make(chan struct{})
	env.drv.On("Retrieve", mock.Anything, console.BackupURL, mock.Anything).
		Run(func(mock.Arguments) { <-proceed }).
		Return(nil, driver.ErrAuthFailure).Once()

	require.NoError(t, env.orch.RequestBackupNow(context.Background(), "Office"))

	// The backup holds its console key inside the driver; a login flow
	// admitted now would have its fresh session expired by the backup's
	// stale auth failure.
	require.ErrorIs(t, svc.StartLogin(context.Background()), ErrBusy)
	assert.False(t, env.guard.IsHeld(guard.LoginKey))

	close(proceed)
	env.orch.Wait()
	require.Equal(t, model.SessionExpired, env.sessions.State())

	// With the backup finished the flow is admitted and recovers the session.
	env.drv.On("Login", mock.Anything).
		Return([]model.Cookie{{Name: "TOKEN", Value: "fresh"}}, nil)
	require.NoError(t, svc.StartLogin(context.Background()))
	require.Eventually(t, func() bool {
		return env.sessions.State() == model.SessionValid
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartLogin_ClearsSavedSessionUpFront(t *testing.T) {
	svc, env := newSessionService(t)
	env.validSession(t)

	proceed := make(chan struct{})
	env.drv.On("Login", mock.Anything).
		Run(func(mock.Arguments) { <-proceed }).
		Return(nil, &driver.TransportError{Detail: "operator closed the window"})

	require.NoError(t, svc.StartLogin(context.Background()))
	// Clearing happens before the flow runs, so a failed flow cannot leave
	// the old session looking trustworthy.
	assert.Equal(t, model.SessionUnauthenticated, env.sessions.State())

	close(proceed)
	require.Eventually(t, func() bool {
		return !env.guard.IsHeld(guard.LoginKey)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, model.SessionUnauthenticated, env.sessions.State())
}

func TestStartLogin_FailedFlowLeavesUnauthenticated(t *testing.T) {
	svc, env := newSessionService(t)

	env.drv.On("Login", mock.Anything).
		Return(nil, &driver.TransportError{Detail: "timed out waiting for operator"})

	require.NoError(t, svc.StartLogin(context.Background()))

	require.Eventually(t, func() bool {
		return !env.guard.IsHeld(guard.LoginKey)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, model.SessionUnauthenticated, env.sessions.State())
}
