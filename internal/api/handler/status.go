package handler

import (
	"net/http"

	"github.com/clementg/consoleback/internal/api/response"
	"github.com/clementg/consoleback/internal/core"
)

type Status struct {
	orch    *core.Orchestrator
	session *core.SessionService
}

func NewStatus(orch *core.Orchestrator, session *core.SessionService) *Status {
	return &Status{orch: orch, session: session}
}

func (h *Status) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.orch.Status(h.session.Summary()))
}
