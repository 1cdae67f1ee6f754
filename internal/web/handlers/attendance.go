package handlers

import (
	"errors"
	"log"
	"net/http"
	"path"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/attendance"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/imageutil"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/static"
)

// UploadsPrefix is the URL path under which saved uploads are served.
const UploadsPrefix = "/uploads/"

// IdentifyResult is the outcome of an identify request.
type IdentifyResult struct {
	UploadedImage string              `json:"uploaded_image"`
	Names         []string            `json:"names"`
	Recorded      []attendance.Record `json:"recorded"`
}

// indexPage is the data rendered into the index template.
type indexPage struct {
	IdentifyResult
	UnknownName string
}

// AttendanceHandler identifies faces in uploaded photos and records attendance.
type AttendanceHandler struct {
	store      *gallery.Store
	recognizer facematch.Recognizer
	log        *attendance.Log
	uploadsDir string
	templates  *static.Templates
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(store *gallery.Store, recognizer facematch.Recognizer, attendanceLog *attendance.Log, uploadsDir string, templates *static.Templates) *AttendanceHandler {
	return &AttendanceHandler{
		store:      store,
		recognizer: recognizer,
		log:        attendanceLog,
		uploadsDir: uploadsDir,
		templates:  templates,
	}
}

// Index renders the upload form.
func (h *AttendanceHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, indexPage{UnknownName: constants.UnknownName})
}

// Identify saves the uploaded photo, names every face found in it and appends
// an attendance record for each recognized identity. Faces are reported in
// detection order; unrecognized faces are reported as "Unknown".
func (h *AttendanceHandler) Identify(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readImage(r)
	if err != nil {
		badUpload(w, r, err)
		return
	}

	saved, err := saveUpload(h.uploadsDir, filename, data)
	if err != nil {
		log.Printf("Identify: %v", err)
		fail(w, r, http.StatusInternalServerError, "failed to save upload")
		return
	}

	result := IdentifyResult{
		UploadedImage: path.Join(UploadsPrefix, saved),
		Names:         []string{},
		Recorded:      []attendance.Record{},
	}

	locations, err := h.recognizer.LocateFaces(r.Context(), data)
	if err != nil {
		h.collaboratorError(w, r, err)
		return
	}

	if len(locations) > 0 {
		encodings, err := h.recognizer.EncodeFaces(r.Context(), data, locations)
		if err != nil {
			h.collaboratorError(w, r, err)
			return
		}

		for _, encoding := range encodings {
			name := h.store.Match(encoding)
			if name != constants.UnknownName {
				rec, err := h.log.Append(name)
				if err != nil {
					log.Printf("Identify: %v", err)
					fail(w, r, http.StatusInternalServerError, "failed to record attendance")
					return
				}
				result.Recorded = append(result.Recorded, rec)
			}
			result.Names = append(result.Names, name)
		}
	}

	log.Printf("Identified %d face(s) in %s: %v", len(result.Names), saved, result.Names)

	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, result)
		return
	}
	h.render(w, indexPage{IdentifyResult: result, UnknownName: constants.UnknownName})
}

func (h *AttendanceHandler) collaboratorError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, imageutil.ErrNotImage) {
		fail(w, r, http.StatusBadRequest, "uploaded file is not an image")
		return
	}
	log.Printf("Face service error: %v", err)
	fail(w, r, http.StatusBadGateway, "face recognition failed")
}

func (h *AttendanceHandler) render(w http.ResponseWriter, page indexPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, static.IndexPage, page); err != nil {
		log.Printf("Rendering index page: %v", err)
	}
}
