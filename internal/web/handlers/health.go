package handlers

import (
	"log"
	"net/http"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
)

// TestPage answers the liveness probe with a fixed plain text body.
func TestPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Test page"))
}

// GalleryEntry is an identity together with whether it is matchable.
type GalleryEntry struct {
	gallery.Identity
	DisplayName string `json:"display_name"`
	Cached      bool   `json:"cached"`
}

// GalleryHandler exposes the state of the gallery.
type GalleryHandler struct {
	store *gallery.Store
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(store *gallery.Store) *GalleryHandler {
	return &GalleryHandler{store: store}
}

// Health reports the service status and the number of cached faces.
func (h *GalleryHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"gallery_size": h.store.Len(),
	})
}

// List returns every registered identity.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.Identities()
	if err != nil {
		log.Printf("Listing gallery: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read gallery")
		return
	}

	cached := make(map[string]struct{})
	for _, name := range h.store.CachedNames() {
		cached[name] = struct{}{}
	}

	entries := make([]GalleryEntry, len(ids))
	for i, id := range ids {
		_, ok := cached[id.DisplayName()]
		entries[i] = GalleryEntry{Identity: id, DisplayName: id.DisplayName(), Cached: ok}
	}
	respondJSON(w, http.StatusOK, entries)
}

// Uploads serves saved uploads from dir without listing directories.
func Uploads(dir string) http.Handler {
	files := http.StripPrefix(UploadsPrefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == UploadsPrefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
