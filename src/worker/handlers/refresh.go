package handlers

import (
	"context"
	"net/http"

	"investgame/src/utils"
)

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

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	next, ok := h.Controller.NextScheduledRefresh()
	if !ok {
		h.respond(w, r, map[string]interface{}{"scheduled": false}, http.StatusOK)
		return
	}
	h.respond(w, r, map[string]interface{}{"scheduled": true, "next_run": next}, http.StatusOK)
}
