package handler

import (
	"net/http"

	"github.com/clementg/consoleback/internal/api/response"
	"github.com/clementg/consoleback/internal/core"
)

type Session struct {
	svc *core.SessionService
}

func NewSession(svc *core.SessionService) *Session {
	return &Session{svc: svc}
}

func (h *Session) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.svc.Summary())
}

// Login starts the interactive re-login flow in the sidecar browser. The
// flow completes asynchronously; poll GET /session for the outcome.
func (h *Session) Login(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.StartLogin(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
