package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/attendance"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/config"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/middleware"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/static"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server

	store      *gallery.Store
	recognizer facematch.Recognizer
	attendance *attendance.Log
	templates  *static.Templates
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, store *gallery.Store, recognizer facematch.Recognizer, attendanceLog *attendance.Log) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		router:     r,
		store:      store,
		recognizer: recognizer,
		attendance: attendanceLog,
		templates:  static.Load(),
	}

	// Requests wait on the face service, and registrations on a full rebuild.
	requestTimeout := 2*cfg.FaceService.Timeout() + 30*time.Second

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
