package worker

import (
	"context"
	"net/http"
	"time"

	"investgame/src/app"
	"investgame/src/config"
	"investgame/src/metrics"
	"investgame/src/services"
	"investgame/src/utils"
	"investgame/src/worker/controllers"
	handlers "investgame/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	Logger  logrus.FieldLogger
	Port    string
	app     *app.App
}

// NewServer builds the worker and starts its refresh schedule.
func NewServer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Server, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	server, err := NewServerWithRefresher(a.Refresher, cfg.Worker.RefreshCron, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	server.Port = cfg.Service.Port
	server.app = a
	return server, nil
}

// NewServerWithRefresher wires the worker routes and schedule around refresher.
func NewServerWithRefresher(refresher services.RefreshServiceI, cronSpec string, logger logrus.FieldLogger) (*Server, error) {
	controller := controllers.NewController(refresher, logger)
	if err := controller.StartRefreshSchedule(cronSpec); err != nil {
		return nil, err
	}

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handlers.NewHandler(controller),
		Logger:  logger,
		Port:    "8000",
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(utils.RequestLogger(s.Logger))
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(metrics.Middleware)

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Handle("/metrics", promhttp.Handler())
	s.Router.Route("/api/refresh", func(r chi.Router) {
		r.Post("/", s.Handler.PostRefresh)
		r.Get("/schedule", s.Handler.GetSchedule)
	})
}

// Close stops the schedule and releases connections.
func (s *Server) Close() {
	s.Handler.Controller.StopRefreshSchedule()
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
