package server

import (
	"net/http"
	"time"
)

type tokenRequest struct {
	Username string `validate:"required,max=255"`
	Password string `validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenHandler exchanges a form-encoded username and password for a bearer
// token.
func (h *Handler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "malformed form body")
		return
	}
	req := tokenRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validateStruct(&req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	identity, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	token, expires, err := h.gate.IssueToken(identity)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(expires).Seconds()),
	})
}
