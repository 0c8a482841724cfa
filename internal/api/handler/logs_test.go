package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clementg/consoleback/internal/logging"
	"github.com/clementg/consoleback/internal/model"
)

func TestLogsRecent(t *testing.T) {
	ring := logging.NewRing(10)
	logger := zerolog.New(io.Discard).Hook(ring)
	h := NewLogs(ring, zerolog.Nop())

	logger.Info().Msg("first")
	logger.Warn().Msg("second")

	rec := httptest.NewRecorder()
	h.Recent(rec, newRequest(http.MethodGet, "/logs/recent", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []model.LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "warn", entries[1].Level)
}

func TestLogsRecent_Empty(t *testing.T) {
	h := NewLogs(logging.NewRing(10), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Recent(rec, newRequest(http.MethodGet, "/logs/recent", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogsStream_RejectsPlainHTTP(t *testing.T) {
	h := NewLogs(logging.NewRing(10), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Stream(rec, newRequest(http.MethodGet, "/logs/stream", nil))

	// Without an Upgrade header the websocket accept fails.
	assert.NotEqual(t, http.StatusSwitchingProtocols, rec.Code)
}
