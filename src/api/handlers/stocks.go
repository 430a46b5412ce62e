package handlers

import (
	"context"
	"net/http"
	"strconv"

	"investgame/src/schemas"
	"investgame/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetStocks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), utils.DefaultRequestTimeout)
	defer cancel()

	stocks, err := h.Controller.ListStocks(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, stocks, http.StatusOK)
}

func (h *Handler) GetStockPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.QuoteTimeout)
	defer cancel()

	stockID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || stockID <= 0 {
		h.HandleErrors(w, r, utils.BadRequest("invalid stock id"))
		return
	}

	price, err := h.Controller.GetStockPrice(ctx, stockID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	status := http.StatusOK
	if !price.OK {
		status = http.StatusServiceUnavailable
	}
	h.respond(w, r, price, status)
}

func (h *Handler) PostPurchase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.QuoteTimeout)
	defer cancel()

	userID, err := userIDFromToken(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var req schemas.PurchaseRequest
	if err := h.decode(r, &req); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	req.UserID = userID

	result, err := h.Controller.Buy(ctx, req)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusCreated)
}
