// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects the storage backend, the
// services, the handlers and the middleware, and decides:
//   - which URL patterns map to which handler functions
//   - what middleware runs on which routes
//   - how the server, the change feed and the file watcher start and stop
//
// DEPENDENCY INJECTION FLOW:
//
//	config → kv.Open → store.Journal → services → handlers → chi routes
//
// This is the "composition root": every dependency is built in New, and
// nothing below this package constructs its own collaborators.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/vininote/internal/auth"
	"github.com/sakif/vininote/internal/config"
	"github.com/sakif/vininote/internal/handler"
	"github.com/sakif/vininote/internal/kv"
	"github.com/sakif/vininote/internal/metrics"
	"github.com/sakif/vininote/internal/middleware"
	"github.com/sakif/vininote/internal/preview"
	"github.com/sakif/vininote/internal/service"
	"github.com/sakif/vininote/internal/store"
	"github.com/sakif/vininote/internal/watch"
)

// Server owns the router and every long-lived resource behind it.
//
// RESOURCE MANAGEMENT:
// The Server owns the kv backend. Run closes it after the HTTP server has
// drained, so no request writes to a closed database. Callers that never
// call Run (tests) call Close instead.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	backend kv.Backend
	journal *store.Journal
	hub     *handler.EventHub
}

// New opens the backend and wires every layer.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// === OPEN STORAGE ===
	backend, err := kv.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		backend: backend,
		journal: store.NewJournal(backend, logger),
		hub:     handler.NewEventHub(logger),
	}

	if err := s.setupRoutes(); err != nil {
		backend.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Journal is the store the server writes through.
func (s *Server) Journal() *store.Journal { return s.journal }

// Close releases the backend. Run does this itself.
func (s *Server) Close() error { return s.backend.Close() }

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique id to each request
//  2. RealIP: extracts the client IP from proxy headers
//  3. Recoverer: turns a panic into a 500 instead of a crash
//  4. Logger: logs each request with timing info and the request id
//  5. Metrics: counts requests per route pattern
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)

	// === SERVICES ===
	previews := preview.NewCache()
	j := s.journal

	tastings := service.NewTastingService(j.Tastings, j.Favorites, previews, s.logger)
	favorites := service.NewFavoriteService(j.Favorites, j.Tastings, s.logger)
	profiles := service.NewProfileService(j.Profile, previews, s.logger)
	quizzes := service.NewQuizService(j, s.logger)
	wizards := service.NewWizardService(tastings, previews, s.logger)

	tokens, err := auth.NewTokenService(s.config.Session.Secret, s.config.Session.TTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	sessions := auth.NewSessions(tokens, s.config.Session.CookieName, s.config.Session.Secure)

	// === CHANGE FEED ===
	// Every facade change reaches websocket clients and the metrics.
	j.Subscribe(s.hub.Publish)
	j.Subscribe(func(c store.Change) {
		metrics.ObserveChange(c.Key, string(c.Op))
	})

	// === HANDLERS ===
	maxUpload := s.config.Server.MaxUploadBytes
	home, err := handler.NewHomeHandler(tastings, s.logger)
	if err != nil {
		return fmt.Errorf("creating home handler: %w", err)
	}
	tastingHandler := handler.NewTastingHandler(tastings, s.logger)
	favoriteHandler := handler.NewFavoriteHandler(favorites, s.logger)
	sessionHandler := handler.NewSessionHandler(profiles, sessions, previews, maxUpload, s.logger)
	quizHandler := handler.NewQuizHandler(quizzes, s.logger)
	wizardHandler := handler.NewWizardHandler(wizards, maxUpload, s.logger)
	previewHandler := handler.NewPreviewHandler(previews, s.logger)

	// === PAGE AND OPERATIONAL ROUTES ===
	s.router.Get("/", home.HandleHome)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get(preview.PathPrefix+"{id}", previewHandler.HandleGet)

	// === API ROUTES ===
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/home", tastingHandler.HandleHome)
		r.Get("/events", s.hub.HandleEvents)

		r.Route("/tastings", func(r chi.Router) {
			r.Get("/", tastingHandler.HandleList)
			r.Delete("/", tastingHandler.HandleClear)
			r.Post("/quick", tastingHandler.HandleQuick)
			r.Get("/{id}", tastingHandler.HandleGet)
			r.Put("/{id}", tastingHandler.HandleReplace)
			r.Delete("/{id}", tastingHandler.HandleDelete)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.HandleList)
			r.Put("/{id}", favoriteHandler.HandleSet)
			r.Post("/{id}/toggle", favoriteHandler.HandleToggle)
		})

		r.Post("/session/login", sessionHandler.HandleLogin)
		r.Post("/session/logout", sessionHandler.HandleLogout)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", sessionHandler.HandleGetProfile)
			// Writes need the session cookie issued by login.
			r.Group(func(r chi.Router) {
				r.Use(sessions.RequireSession)
				r.Put("/", sessionHandler.HandleUpdateProfile)
				r.Post("/photo", sessionHandler.HandleProfilePhoto)
			})
		})

		r.Route("/learn", func(r chi.Router) {
			r.Get("/", quizHandler.HandleHub)
			r.Get("/{topic}/progress", quizHandler.HandleProgress)
			r.Post("/{topic}/sessions", quizHandler.HandleStart)
		})

		r.Route("/quiz/{sid}", func(r chi.Router) {
			r.Get("/", quizHandler.HandleGet)
			r.Post("/answer", quizHandler.HandleAnswer)
			r.Post("/next", quizHandler.HandleNext)
			r.Post("/restart", quizHandler.HandleRestart)
		})

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/", wizardHandler.HandleNew)
			r.Post("/edit/{tastingID}", wizardHandler.HandleEdit)
			r.Get("/suggestions/grapes", wizardHandler.HandleGrapeSuggestions)
			r.Get("/suggestions/aromas", wizardHandler.HandleAromaSuggestions)

			r.Route("/{wid}", func(r chi.Router) {
				r.Get("/", wizardHandler.HandleGet)
				r.Patch("/", wizardHandler.HandlePatch)
				r.Delete("/", wizardHandler.HandleDiscard)
				r.Post("/next", wizardHandler.HandleNext)
				r.Post("/back", wizardHandler.HandleBack)
				r.Post("/jump/{step}", wizardHandler.HandleJump)
				r.Post("/key", wizardHandler.HandleKey)
				r.Post("/photo", wizardHandler.HandlePhoto)
				r.Post("/finish", wizardHandler.HandleFinish)
			})
		})
	})

	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// The HTTP server, the change feed hub and the file watcher run in one
// errgroup. When ctx is cancelled (SIGINT/SIGTERM in main) or any of them
// fails, the group context is cancelled and:
//  1. the HTTP server stops accepting connections and drains in-flight
//     requests for at most ShutdownTimeout
//  2. the hub closes every websocket
//  3. the watcher stops
//  4. the backend is closed (flushes WAL, releases the file lock)
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("closing storage", slog.String("error", err.Error()))
		}
	}()

	cfg := s.config.Server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("addr", cfg.Addr()),
			slog.String("url", "http://"+cfg.Addr()),
			slog.String("storage", s.config.Storage.Driver),
			slog.String("path", s.config.Storage.Path),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	g.Go(func() error { return s.hub.Run(gctx) })

	if w := s.watcher(); w != nil {
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				// Losing the watcher only loses cross-process refresh.
				s.logger.Warn("journal watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	return g.Wait()
}

// watcher returns the fsnotify watcher for the configured storage, or nil
// when there is nothing another process could write to.
func (s *Server) watcher() *watch.Watcher {
	st := s.config.Storage
	if !st.Watch || st.Driver != config.DriverSQLite || !watch.Watchable(st.Path) {
		return nil
	}
	return watch.New(watch.Config{Path: st.Path}, s.journal, s.logger)
}
