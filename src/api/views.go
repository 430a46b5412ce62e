package api

import (
	"context"
	"net/http"
	"time"

	"investgame/src/api/controllers"
	handlers "investgame/src/api/handlers"
	"investgame/src/app"
	"investgame/src/config"
	"investgame/src/metrics"
	"investgame/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router    *chi.Mux
	Handler   *handlers.Handler
	TokenAuth *jwtauth.JWTAuth
	Logger    logrus.FieldLogger
	Port      string
	app       *app.App
}

// NewServer builds the API server and every dependency behind it.
func NewServer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Server, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	tokenAuth := jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil)
	controller := controllers.NewController(
		a.Users, a.Stocks, a.Prices, a.Purchases, a.Leaderboard, a.Refresher,
		tokenAuth, cfg.Auth.TokenTTL,
	)

	handler := handlers.NewHandler(controller)
	handler.QuoteTimeout = utils.QuoteRequestTimeout(cfg.ExternalClients.Yahoo.Timeout)

	server := NewServerWithHandler(handler, tokenAuth, logger)
	server.Port = cfg.Service.Port
	server.app = a
	return server, nil
}

// NewServerWithHandler wires routes around an existing handler.
func NewServerWithHandler(handler *handlers.Handler, tokenAuth *jwtauth.JWTAuth, logger logrus.FieldLogger) *Server {
	server := &Server{
		Router:    chi.NewRouter(),
		Handler:   handler,
		TokenAuth: tokenAuth,
		Logger:    logger,
		Port:      "8000",
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(utils.RequestLogger(s.Logger))
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(metrics.Middleware)

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Handle("/metrics", promhttp.Handler())

	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/users", s.Handler.PostUser)
		r.Post("/token", s.Handler.PostToken)

		r.Get("/stocks", s.Handler.GetStocks)
		r.Get("/stocks/{id}/price", s.Handler.GetStockPrice)
		r.Get("/overview", s.Handler.GetOverview)
		r.Post("/prices/refresh", s.Handler.PostRefresh)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.TokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/dashboard", s.Handler.GetDashboard)
			r.Post("/purchases", s.Handler.PostPurchase)
		})
	})
}

// Close releases the database pool and cache connections.
func (s *Server) Close() {
	if s.app != nil {
		s.app.Close()
	}
}

func NewHTTPServer(server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + server.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: utils.RefreshRequestTimeout + 30*time.Second,
		Handler:      server,
	}
	return httpServer
}
