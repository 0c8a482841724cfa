package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clementg/consoleback/internal/api/request"
	"github.com/clementg/consoleback/internal/api/response"
	"github.com/clementg/consoleback/internal/core"
)

type Console struct {
	svc  *core.ConsoleService
	orch *core.Orchestrator
}

func NewConsole(svc *core.ConsoleService, orch *core.Orchestrator) *Console {
	return &Console{svc: svc, orch: orch}
}

func (h *Console) List(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.svc.List(r.Context()))
}

func (h *Console) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateConsole
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	console, err := h.svc.Add(r.Context(), req.Name, req.BackupURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, console)
}

func (h *Console) Get(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	console, err := h.svc.Get(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, console)
}

func (h *Console) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateSchedule
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	console, err := h.svc.UpdateSchedule(r.Context(), name,
		time.Duration(req.BackupIntervalMinutes)*time.Minute,
		time.Duration(req.CheckIntervalMinutes)*time.Minute,
		req.ChecksEnabled,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, console)
}

func (h *Console) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Remove(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Console) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *Console) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *Console) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	console, err := h.svc.SetEnabled(r.Context(), name, enabled)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, console)
}

// BackupNow triggers an immediate backup. The retrieval runs in the
// background; 202 means the run was admitted, 409 that the console or the
// login flow is busy.
func (h *Console) BackupNow(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orch.RequestBackupNow(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
