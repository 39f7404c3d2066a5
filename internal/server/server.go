package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/coursedesk/coursedesk/internal/config"
	"github.com/coursedesk/coursedesk/internal/handler"
	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/openapi"
	"github.com/coursedesk/coursedesk/internal/server/middleware"
	"github.com/coursedesk/coursedesk/internal/service"
	"github.com/coursedesk/coursedesk/internal/store"
)

// Server is the top-level HTTP server for Coursedesk. It owns the Chi
// router, the store, and the domain services.
type Server struct {
	cfg         config.Server
	router      chi.Router
	store       *store.Store
	authSvc     *service.AuthService
	coupons     *service.CouponService
	enrollments *service.EnrollmentService
	httpServer  *http.Server
	logger      *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg config.Server, st *store.Store, authSvc *service.AuthService, coupons *service.CouponService, enrollments *service.EnrollmentService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		store:       st,
		authSvc:     authSvc,
		coupons:     coupons,
		enrollments: enrollments,
		logger:      logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	if s.cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(s.cfg.RateLimitPerMin))
	}

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI spec (no auth required) ---
	r.Get("/openapi.json", s.handleOpenAPI)

	authHandler := handler.NewAuthHandler(s.authSvc)
	courseHandler := handler.NewCourseHandler(s.store)
	couponHandler := handler.NewCouponHandler(s.store, s.coupons)
	enrollHandler := handler.NewEnrollmentHandler(s.store, s.enrollments)
	paymentHandler := handler.NewPaymentHandler(s.enrollments)

	// --- API routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Admin session lifecycle
		r.Route("/admin-auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(10)).Post("/login", authHandler.Login)
			r.Post("/setup", authHandler.Setup)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(s.authSvc))
				r.Get("/verify", authHandler.Verify)
			})
		})

		// Public storefront
		r.Get("/courses", courseHandler.ListPublic)
		r.Get("/courses/{courseID}", courseHandler.GetPublic)
		r.Post("/coupons/validate", couponHandler.Validate)
		r.Post("/enrollments", enrollHandler.Create)
		r.Post("/payments/create-order", paymentHandler.CreateOrder)
		r.Post("/payments/verify", paymentHandler.Verify)

		// Admin APIs
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authSvc))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermCourses))
				r.Get("/courses", courseHandler.List)
				r.Post("/courses", courseHandler.Create)
				r.Get("/courses/{courseID}", courseHandler.Get)
				r.Put("/courses/{courseID}", courseHandler.Update)
				r.Delete("/courses/{courseID}", courseHandler.Delete)
				r.Put("/courses/{courseID}/details", courseHandler.UpsertDetails)

				r.Get("/coupons", couponHandler.List)
				r.Post("/coupons", couponHandler.Create)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermEnrollments))
				r.Get("/enrollments", enrollHandler.List)
			})
		})
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the database is
// reachable, or 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if err := s.store.Ping(r.Context()); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// handleOpenAPI serves the API description document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := openapi.BuildSpec()
	data, err := doc.MarshalJSON()
	if err != nil {
		http.Error(w, `{"success":false,"message":"failed to render spec"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the database.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
