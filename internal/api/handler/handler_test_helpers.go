package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/clementg/consoleback/internal/artifact"
	"github.com/clementg/consoleback/internal/core"
	"github.com/clementg/consoleback/internal/driver"
	"github.com/clementg/consoleback/internal/guard"
	"github.com/clementg/consoleback/internal/model"
	"github.com/clementg/consoleback/internal/store"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// stubDriver satisfies driver.Driver with per-call functions; nil functions
// answer success with empty payloads.
type stubDriver struct {
	login    func(context.Context) ([]model.Cookie, error)
	retrieve func(context.Context, string, []model.Cookie) (*driver.File, error)
	probe    func(context.Context, string, []model.Cookie) error
}

func (d *stubDriver) Login(ctx context.Context) ([]model.Cookie, error) {
	if d.login == nil {
		return []model.Cookie{{Name: "TOKEN", Value: "stub"}}, nil
	}
	return d.login(ctx)
}

func (d *stubDriver) Retrieve(ctx context.Context, url string, cookies []model.Cookie) (*driver.File, error) {
	if d.retrieve == nil {
		return &driver.File{Name: "backup.unf", Data: []byte("stub")}, nil
	}
	return d.retrieve(ctx, url, cookies)
}

func (d *stubDriver) Probe(ctx context.Context, url string, cookies []model.Cookie) error {
	if d.probe == nil {
		return nil
	}
	return d.probe(ctx, url, cookies)
}

type handlerEnv struct {
	consoles  *core.ConsoleService
	sessions  *core.SessionService
	orch      *core.Orchestrator
	reg       *store.Registry
	session   *store.SessionStore
	guard     *guard.Guard
	drv       *stubDriver
	artifacts *artifact.Store
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	dir := t.TempDir()

	reg, err := store.OpenRegistry(filepath.Join(dir, "registry.json"))
	require.NoError(t, err)
	session, err := store.OpenSession(filepath.Join(dir, "session.json"))
	require.NoError(t, err)

	artifacts := artifact.NewStore(filepath.Join(dir, "backups"), nil, zerolog.Nop())
	g := guard.New()
	drv := &stubDriver{}

	return &handlerEnv{
		consoles:  core.NewConsoleService(reg, g, 24*time.Hour, 4*time.Hour),
		sessions:  core.NewSessionService(session, reg, g, drv, time.Minute, zerolog.Nop()),
		orch:      core.NewOrchestrator(reg, session, artifacts, g, drv, 1, time.Minute, zerolog.Nop()),
		reg:       reg,
		session:   session,
		guard:     g,
		drv:       drv,
		artifacts: artifacts,
	}
}

func (e *handlerEnv) addConsole(t *testing.T, name string) {
	t.Helper()
	_, err := e.consoles.Add(context.Background(), name, "https://unifi.example.com/backup")
	require.NoError(t, err)
}
