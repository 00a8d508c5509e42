package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"replate/internal/auth"
	"replate/internal/domain"
)

// WriteJSON emits the payload with the given status.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem emits the shared error envelope (simplified problem+json).
func WriteProblem(w http.ResponseWriter, code int, typ, detail string) {
	WriteJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

// WriteError maps a domain error kind to its HTTP status. Unclassified
// errors are infrastructure failures; the detail is replaced so internals
// don't leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		WriteProblem(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteProblem(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteProblem(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		WriteProblem(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrInvalidReference):
		WriteProblem(w, http.StatusBadRequest, "invalid_reference", err.Error())
	default:
		WriteProblem(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
