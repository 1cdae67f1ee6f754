package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/attendance"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch/mock"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/static"
)

// testEnv wires handlers to a temporary gallery, attendance log and mock recognizer.
type testEnv struct {
	dir        string
	recognizer *mock.MockRecognizer
	store      *gallery.Store
	log        *attendance.Log
	uploadsDir string
	templates  *static.Templates
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	rec := mock.NewMockRecognizer()
	return &testEnv{
		dir:        dir,
		recognizer: rec,
		store: gallery.NewStore(rec, gallery.Options{
			TablePath: filepath.Join(dir, "registered_users.csv"),
			FacesDir:  filepath.Join(dir, "known_faces"),
		}),
		log:        attendance.NewLog(filepath.Join(dir, "attendance.csv")),
		uploadsDir: filepath.Join(dir, "static"),
		templates:  static.Load(),
	}
}

func (e *testEnv) attendanceHandler() *AttendanceHandler {
	return NewAttendanceHandler(e.store, e.recognizer, e.log, e.uploadsDir, e.templates)
}

func (e *testEnv) registerHandler() *RegisterHandler {
	return NewRegisterHandler(e.store, e.templates)
}

// attendanceRows returns the logged attendance records.
func (e *testEnv) attendanceRows(t *testing.T) []attendance.Record {
	t.Helper()
	records, err := e.log.Records("")
	if err != nil {
		t.Fatalf("failed to read attendance: %v", err)
	}
	return records
}

// solidJPEG encodes a small single-color image; different colors give different bytes.
func solidJPEG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a POST request with form fields and an optional image part.
func multipartRequest(t *testing.T, path string, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if data != nil {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(data)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, expected) {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// countFiles returns the number of entries in dir, zero when it does not exist.
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	return len(entries)
}
