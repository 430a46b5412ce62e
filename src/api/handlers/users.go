package handlers

import (
	"context"
	"net/http"

	"investgame/src/schemas"
	"investgame/src/utils"
)

func (h *Handler) PostUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), utils.DefaultRequestTimeout)
	defer cancel()

	var req schemas.RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	resp, err := h.Controller.Register(ctx, req)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, resp, http.StatusCreated)
}

func (h *Handler) PostToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), utils.DefaultRequestTimeout)
	defer cancel()

	var req schemas.TokenRequest
	if err := h.decode(r, &req); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	tokenResponse, err := h.Controller.IssueToken(ctx, req)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, tokenResponse, http.StatusOK)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), utils.DefaultRequestTimeout)
	defer cancel()

	userID, err := userIDFromToken(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	dashboard, err := h.Controller.GetDashboard(ctx, userID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, dashboard, http.StatusOK)
}
