package handler

import (
	"errors"
	"net/http"

	"github.com/clementg/consoleback/internal/api/response"
	"github.com/clementg/consoleback/internal/core"
)

// writeServiceError maps the core error taxonomy onto HTTP statuses. Busy
// and validation failures are user-visible, non-fatal responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrBusy):
		response.WriteError(w, http.StatusConflict, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
