package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"investgame/src/api/controllers"
	"investgame/src/utils"

	"github.com/go-chi/jwtauth"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	Controller controllers.IController
	// QuoteTimeout bounds requests that may fetch a missing price upstream.
	QuoteTimeout time.Duration
	validate     *validator.Validate
}

func NewHandler(controller controllers.IController) *Handler {
	return &Handler{
		Controller:   controller,
		QuoteTimeout: utils.QuoteRequestTimeout(utils.DefaultRequestTimeout),
		validate:     validator.New(),
	}
}

func Healthcheck(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Im alive!")
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *utils.HTTPError
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, r, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	} else if errors.As(err, &httpErr) {
		h.respond(w, r, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if err != nil {
		utils.LoggerFromContext(r.Context()).WithError(err).Error("request failed")
		h.respond(w, r, map[string]string{"error": "Internal Server Error"}, http.StatusInternalServerError)
	} else {
		h.respond(w, r, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.BadRequest("invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return utils.UnprocessableEntity(err.Error())
	}
	return nil
}

// userIDFromToken reads the user id from the verified token's subject.
func userIDFromToken(ctx context.Context) (int, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return 0, utils.Unauthorized("invalid token")
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.Atoi(sub)
	if err != nil || id <= 0 {
		return 0, utils.Unauthorized("invalid token subject")
	}
	return id, nil
}
