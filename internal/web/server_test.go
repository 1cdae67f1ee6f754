package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/attendance"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/config"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch/mock"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/web/handlers"
)

func newTestServer(t *testing.T) (*Server, *mock.MockRecognizer, *attendance.Log) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Load()
	cfg.Server.AllowedOrigins = []string{"https://school.example.com"}
	cfg.Storage.RegisteredUsersCSV = filepath.Join(dir, "registered_users.csv")
	cfg.Storage.AttendanceCSV = filepath.Join(dir, "attendance.csv")
	cfg.Storage.KnownFacesDir = filepath.Join(dir, "known_faces")
	cfg.Storage.UploadsDir = filepath.Join(dir, "static")

	rec := mock.NewMockRecognizer()
	store := gallery.NewStore(rec, gallery.Options{
		TablePath: cfg.Storage.RegisteredUsersCSV,
		FacesDir:  cfg.Storage.KnownFacesDir,
	})
	log := attendance.NewLog(cfg.Storage.AttendanceCSV)
	return NewServer(cfg, store, rec, log), rec, log
}

func testJPEG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, path string, fields map[string]string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	if data != nil {
		part, _ := writer.CreateFormFile("image", "photo.jpg")
		part.Write(data)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestServer_TestPage(t *testing.T) {
	s, _, _ := newTestServer(t)

	recorder := serve(s, httptest.NewRequest(http.MethodGet, "/test", nil))

	if recorder.Code != http.StatusOK || recorder.Body.String() != "Test page" {
		t.Errorf("unexpected response %d %q", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on every response")
	}
}

func TestServer_Pages(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, path := range []string{"/", "/register"} {
		recorder := serve(s, httptest.NewRequest(http.MethodGet, path, nil))
		if recorder.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, recorder.Code)
		}
	}
}

func TestServer_Health(t *testing.T) {
	s, _, _ := newTestServer(t)

	recorder := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if result["status"] != "ok" || result["gallery_size"] != float64(0) {
		t.Errorf("unexpected health response %v", result)
	}
}

func TestServer_IdentifyWithoutImage(t *testing.T) {
	s, _, log := newTestServer(t)

	recorder := serve(s, upload(t, "/", map[string]string{"name": "x"}, nil))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
	records, err := log.Records("")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no attendance rows, got %d", len(records))
	}
}

func TestServer_RegisterThenIdentify(t *testing.T) {
	s, rec, log := newTestServer(t)

	photo := testJPEG(t, color.RGBA{120, 80, 40, 255})
	rec.SetFaces(photo, facematch.Embedding{0.5, 0.5})

	recorder := serve(s, upload(t, "/register", map[string]string{"name": "Carol", "roll_number": "7"}, photo))
	if recorder.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", recorder.Code, recorder.Body.String())
	}

	req := upload(t, "/", nil, photo)
	req.Header.Set("Accept", "application/json")
	recorder = serve(s, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var result handlers.IdentifyResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(result.Names) != 1 || result.Names[0] != "Carol (7)" {
		t.Errorf("expected Carol (7), got %v", result.Names)
	}

	records, _ := log.Records("")
	if len(records) != 1 {
		t.Errorf("expected one attendance row, got %d", len(records))
	}

	// The saved upload is served back.
	recorder = serve(s, httptest.NewRequest(http.MethodGet, result.UploadedImage, nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("expected uploaded image to be served, got %d", recorder.Code)
	}
	if !bytes.Equal(recorder.Body.Bytes(), photo) {
		t.Error("served upload differs from the original")
	}
}

func TestServer_CORS(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://school.example.com")
	recorder := serve(s, req)

	if recorder.Header().Get("Access-Control-Allow-Origin") != "https://school.example.com" {
		t.Error("expected configured origin to be allowed")
	}
}
