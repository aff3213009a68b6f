package server

import "net/http"

// MeHandler returns the authenticated identity.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IdentityFromContext(r.Context()))
}

// UserHooksHandler lists the hooks owned by the user in the path. Callers
// may list their own hooks; superusers may list anyone's.
func (h *Handler) UserHooksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	identity := IdentityFromContext(r.Context())
	if !identity.CanAccess(userID) {
		respondError(w, r, h.logger, errAccessDenied)
		return
	}
	if _, err := h.store.GetIdentity(r.Context(), userID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	hooks, err := h.store.ListHooks(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hooks)
}
