package handlers

import (
	"net/http"

	"github.com/xavierca1/frontdesk/internal/usecase"
)

type AuthHandler struct {
	Auth *usecase.AuthUseCase
}

func NewAuthHandler(auth *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Auth.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type meResponse struct {
	Username     string `json:"username"`
	Chiropractor string `json:"chiropractor"`
	Role         string `json:"role"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Username:     actor.Username,
		Chiropractor: actor.Chiropractor,
		Role:         string(actor.Role),
	})
}
