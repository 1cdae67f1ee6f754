package web

import (
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	attendanceHandler := handlers.NewAttendanceHandler(s.store, s.recognizer, s.attendance, s.config.Storage.UploadsDir, s.templates)
	registerHandler := handlers.NewRegisterHandler(s.store, s.templates)
	galleryHandler := handlers.NewGalleryHandler(s.store)

	// Pages
	s.router.Get("/", attendanceHandler.Index)
	s.router.Post("/", attendanceHandler.Identify)
	s.router.Get("/register", registerHandler.Form)
	s.router.Post("/register", registerHandler.Register)
	s.router.Get("/test", handlers.TestPage)

	// Saved uploads
	s.router.Handle(handlers.UploadsPrefix+"*", handlers.Uploads(s.config.Storage.UploadsDir))

	// API routes
	s.router.Get("/api/v1/health", galleryHandler.Health)
	s.router.Get("/api/v1/gallery", galleryHandler.List)
}
