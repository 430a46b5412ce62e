package handlers

import (
	"context"
	"net/http"

	"investgame/src/utils"
)

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), utils.RefreshRequestTimeout)
	defer cancel()

	overview, err := h.Controller.GetOverview(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, overview, http.StatusOK)
}

func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), utils.RefreshRequestTimeout)
	defer cancel()

	result, err := h.Controller.RefreshPrices(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}
