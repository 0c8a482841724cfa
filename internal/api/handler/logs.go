package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/api/response"
	"github.com/clementg/consoleback/internal/logging"
)

type Logs struct {
	ring   *logging.Ring
	logger zerolog.Logger
}

func NewLogs(ring *logging.Ring, logger zerolog.Logger) *Logs {
	return &Logs{ring: ring, logger: logger.With().Str("component", "logs-handler").Logger()}
}

func (h *Logs) Recent(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.ring.Recent())
}

// Stream upgrades to WebSocket and pushes the buffered entries followed by
// live ones until the client goes away.
func (h *Logs) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	entries, cancel := h.ring.Subscribe()
	defer cancel()

	// Replay the buffer first so the client starts with history.
	for _, entry := range h.ring.Recent() {
		if err := writeEntry(ctx, conn, entry); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-entries:
			if err := writeEntry(ctx, conn, entry); err != nil {
				return
			}
		}
	}
}

func writeEntry(ctx context.Context, conn *websocket.Conn, entry any) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, raw)
}
