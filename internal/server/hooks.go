package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Tyrowin/webhooker/internal/store"
)

type hookRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content string `json:"content" validate:"max=65535"`
}

// ListHooksHandler lists the caller's hooks, or every hook for a superuser.
func (h *Handler) ListHooksHandler(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var (
		hooks []store.Hook
		err   error
	)
	if identity.Superuser {
		hooks, err = h.store.ListAllHooks(r.Context())
	} else {
		hooks, err = h.store.ListHooks(r.Context(), identity.ID)
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hooks)
}

// CreateHookHandler creates a hook owned by the caller.
func (h *Handler) CreateHookHandler(w http.ResponseWriter, r *http.Request) {
	var req hookRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	hook := &store.Hook{
		UserID:  IdentityFromContext(r.Context()).ID,
		Name:    req.Name,
		Content: req.Content,
	}
	if err := h.store.CreateHook(r.Context(), hook); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/hooks/%d", hook.ID))
	writeJSON(w, http.StatusCreated, hook)
}

// GetHookHandler returns one hook.
func (h *Handler) GetHookHandler(w http.ResponseWriter, r *http.Request) {
	hook, err := h.accessibleHook(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

// UpdateHookHandler replaces a hook's name and content.
func (h *Handler) UpdateHookHandler(w http.ResponseWriter, r *http.Request) {
	hook, err := h.accessibleHook(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req hookRequest
	if err := h.decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	hook.Name = req.Name
	hook.Content = req.Content
	if err := h.store.UpdateHook(r.Context(), hook); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

// DeleteHookHandler deletes a hook.
func (h *Handler) DeleteHookHandler(w http.ResponseWriter, r *http.Request) {
	hook, err := h.accessibleHook(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.store.DeleteHook(r.Context(), hook.ID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// accessibleHook loads the hook named in the path and checks the caller
// may access it. Hooks owned by someone else are reported as missing.
func (h *Handler) accessibleHook(r *http.Request) (*store.Hook, error) {
	id, err := pathID(r, "hookID")
	if err != nil {
		return nil, err
	}
	return loadOwnedHook(r.Context(), h.store, IdentityFromContext(r.Context()), id)
}

func loadOwnedHook(ctx context.Context, s store.HookStore, identity *store.Identity, id int64) (*store.Hook, error) {
	hook, err := s.GetHook(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(hook.UserID) {
		return nil, store.ErrNotFound
	}
	return hook, nil
}
