package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Kattu2003/PRODUCT/config"
	"github.com/Kattu2003/PRODUCT/internal/db"
	"github.com/Kattu2003/PRODUCT/internal/handlers"
	"github.com/Kattu2003/PRODUCT/internal/metrics"
	"github.com/Kattu2003/PRODUCT/internal/mq"
	"github.com/Kattu2003/PRODUCT/internal/services"
	"github.com/Kattu2003/PRODUCT/internal/sessions"
	"github.com/Kattu2003/PRODUCT/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
	redis      *redis.Client
	log        zerolog.Logger
}

// New runs pending migrations, opens dependencies and builds the router.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := db.MigrateUp(cfg.Database); err != nil {
		return nil, err
	}
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Server{db: dbConn, log: log}

	denylist, err := s.newDenylist(ctx, cfg)
	if err != nil {
		s.closeDeps()
		return nil, err
	}

	queue, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		s.closeDeps()
		return nil, err
	}
	s.queue = queue

	userRepo := store.NewUserRepository(dbConn, cfg.Database.Driver)
	sessionManager := sessions.NewManager(cfg.Session.Secret, cfg.Session.TTL, denylist)
	accountService := services.NewAccountService(
		userRepo,
		sessionManager,
		services.WithEvents(mq.NewAccountEvents(queue, cfg.MQ.Channel)),
		services.WithLogger(log),
	)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		hlog.NewHandler(log),
		hlog.AccessHandler(accessLog),
		middleware.Recoverer,
		metrics.Instrument,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/health", handlers.Health)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, accountService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 9000
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router exposes the chi router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("backend listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.closeDeps()
	return err
}

func (s *Server) newDenylist(ctx context.Context, cfg config.Config) (sessions.Denylist, error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return sessions.NewMemoryDenylist(), nil
	}
	client, err := sessions.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	s.redis = client
	return sessions.NewRedisDenylist(client), nil
}

func (s *Server) closeDeps() {
	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close message queue")
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
