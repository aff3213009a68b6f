package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Tyrowin/webhooker/internal/hub"
	"github.com/Tyrowin/webhooker/internal/security"
	"github.com/Tyrowin/webhooker/internal/store"
)

// Handler serves the page, health and REST endpoints.
type Handler struct {
	store    store.Store
	gate     *security.Gate
	hub      *hub.Hub
	logger   *slog.Logger
	validate *validator.Validate
	static   fs.FS
}

// NewHandler creates a Handler from its collaborators.
func NewHandler(s store.Store, gate *security.Gate, h *hub.Hub, static fs.FS, logger *slog.Logger) *Handler {
	return &Handler{
		store:    s,
		gate:     gate,
		hub:      h,
		logger:   logger,
		validate: validator.New(),
		static:   static,
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// HealthHandler reports liveness, store reachability and the current
// number of WebSocket connections.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Connections: h.hub.Size()}
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check: store unreachable", slog.Any("error", err))
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// IndexHandler serves the chat page.
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(h.static, "index.html")
	if err != nil {
		respondError(w, r, h.logger, fmt.Errorf("read index page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		h.logger.Warn("write index page", slog.Any("error", err))
	}
}

// FaviconHandler serves favicon.ico from the static tree.
func (h *Handler) FaviconHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.static, "favicon.ico")
}

// StaticHandler serves files below /static/.
func (h *Handler) StaticHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(h.static)))
}

// decodeJSON decodes the request body into target and validates it.
func (h *Handler) decodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: malformed JSON body", errValidation)
	}
	return h.validateStruct(target)
}

func (h *Handler) validateStruct(target any) error {
	if err := h.validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: field %s failed %s", errValidation, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", errValidation, err)
	}
	return nil
}

// pathID parses the named URL parameter as an int64.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errValidation, name)
	}
	return id, nil
}
