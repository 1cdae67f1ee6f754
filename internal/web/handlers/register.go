package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/static"
)

// RegisterResponse is returned to JSON clients after a registration.
type RegisterResponse struct {
	Identity    gallery.Identity `json:"identity"`
	DisplayName string           `json:"display_name"`
	Cached      bool             `json:"cached"`
	GallerySize int              `json:"gallery_size"`
}

// RegisterHandler adds new identities to the gallery.
type RegisterHandler struct {
	store     *gallery.Store
	templates *static.Templates
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(store *gallery.Store, templates *static.Templates) *RegisterHandler {
	return &RegisterHandler{store: store, templates: templates}
}

// Form renders the registration form.
func (h *RegisterHandler) Form(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, static.RegisterPage, nil); err != nil {
		log.Printf("Rendering register page: %v", err)
	}
}

// Register stores the photo, appends the identity and rebuilds the gallery
// cache before redirecting to the index page.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	data, _, err := readImage(r)
	if err != nil {
		badUpload(w, r, err)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	rollNumber := strings.TrimSpace(r.FormValue("roll_number"))
	if name == "" || rollNumber == "" {
		fail(w, r, http.StatusBadRequest, "name and roll_number are required")
		return
	}

	id, report, err := h.store.Register(r.Context(), name, rollNumber, data)
	switch {
	case errors.Is(err, gallery.ErrMissingField):
		fail(w, r, http.StatusBadRequest, "name and roll_number are required")
		return
	case errors.Is(err, gallery.ErrInvalidImage):
		fail(w, r, http.StatusBadRequest, "uploaded file is not an image")
		return
	case err != nil:
		log.Printf("Register %s: %v", sanitizeForLog(name), err)
		fail(w, r, http.StatusInternalServerError, "registration failed")
		return
	}

	cached := true
	for _, skip := range report.Skipped {
		if skip.Identity == id {
			cached = false
			log.Printf("Registered %s but its photo was not usable: %v", sanitizeForLog(id.DisplayName()), skip.Reason)
		}
	}
	log.Printf("Registered %s, gallery has %d face(s)", sanitizeForLog(id.DisplayName()), report.Loaded)

	if wantsJSON(r) {
		respondJSON(w, http.StatusCreated, RegisterResponse{
			Identity:    id,
			DisplayName: id.DisplayName(),
			Cached:      cached,
			GallerySize: report.Loaded,
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
