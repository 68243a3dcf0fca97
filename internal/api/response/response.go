package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/s3gate/internal/core"
)

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteServiceError translates a core error into an HTTP status. Expected
// failures pass their message through; anything unrecognized becomes a
// generic 500 with the detail logged server-side only.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		assumeErr     *core.RoleAssumptionError
		accessErr     *core.AccessError
	)

	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, validationErr.Msg)
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrNotVerified):
		WriteError(w, http.StatusConflict, "connection is not verified yet")
	case errors.As(err, &assumeErr):
		WriteError(w, http.StatusForbidden, assumeErr.Error())
	case errors.As(err, &accessErr):
		WriteError(w, http.StatusForbidden, accessErr.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("internal error")
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
