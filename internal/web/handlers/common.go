package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/google/uuid"
)

// errNoImage is the message returned when a form has no usable image part.
const errNoImage = "No image uploaded"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// fail sends a JSON error to JSON clients and a plain text error to everyone else.
func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		respondError(w, status, message)
		return
	}
	http.Error(w, message, status)
}

// readImage returns the bytes and client filename of the "image" form part.
// A missing part or an empty filename yields http.ErrMissingFile.
func readImage(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, "", http.ErrMissingFile
		}
		return nil, "", fmt.Errorf("parsing multipart form: %w", err)
	}
	file, header, err := r.FormFile(constants.ImageField)
	if err != nil {
		return nil, "", http.ErrMissingFile
	}
	defer file.Close()
	if header.Filename == "" {
		return nil, "", http.ErrMissingFile
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	return data, header.Filename, nil
}

// badUpload reports a readImage error to the client.
func badUpload(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, http.ErrMissingFile) {
		fail(w, r, http.StatusBadRequest, errNoImage)
		return
	}
	log.Printf("Rejected upload: %v", err)
	fail(w, r, http.StatusBadRequest, "invalid upload")
}

// uploadName turns a client filename into a unique, safe file name.
func uploadName(clientName string) string {
	base := filepath.Base(strings.ReplaceAll(clientName, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if facematch.Slug(ext) != strings.TrimPrefix(ext, ".") {
		ext = ""
	}
	return uuid.NewString() + "-" + facematch.Slug(stem) + ext
}

// saveUpload writes data under dir and returns the stored file name.
func saveUpload(dir, clientName string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	name := uploadName(clientName)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	log.Printf("Saved upload %s as %s", sanitizeForLog(clientName), name)
	return name, nil
}
