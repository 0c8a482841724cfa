package handler

import (
	"net/http"

	"github.com/clementg/consoleback/internal/api/response"
	"github.com/clementg/consoleback/internal/artifact"
	"github.com/clementg/consoleback/internal/core"
)

type Artifact struct {
	store    *artifact.Store
	consoles *core.ConsoleService
}

func NewArtifact(store *artifact.Store, consoles *core.ConsoleService) *Artifact {
	return &Artifact{store: store, consoles: consoles}
}

func (h *Artifact) List(w http.ResponseWriter, r *http.Request) {
	registered := h.consoles.List(r.Context())
	names := make([]string, 0, len(registered))
	for _, c := range registered {
		names = append(names, c.Name)
	}

	artifacts, err := h.store.List(names)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, artifacts)
}
