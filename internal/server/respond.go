package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tyrowin/webhooker/internal/security"
	"github.com/Tyrowin/webhooker/internal/store"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var (
	errValidation   = errors.New("validation failed")
	errAccessDenied = errors.New("access denied")
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeProblem sends an RFC7807 problem details response.
func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// respondError maps err onto a problem response. Unexpected errors are
// logged and their text is not exposed.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, security.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeProblem(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, security.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Inactive user")
	case errors.Is(err, errAccessDenied):
		writeProblem(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, store.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicate):
		writeProblem(w, http.StatusConflict, "Already exists")
	case errors.Is(err, errValidation):
		writeProblem(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		writeProblem(w, http.StatusInternalServerError, "")
	}
}
