package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusCreated, map[string]any{"count": 2})

	assertStatusCode(t, recorder, http.StatusCreated)
	assertContentType(t, recorder, "application/json")
	var result map[string]float64
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result["count"] != 2 {
		t.Errorf("expected count 2, got %v", result["count"])
	}
}

func TestRespondJSON_NilData(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondJSON(recorder, http.StatusNoContent, nil)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", recorder.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondError(recorder, http.StatusBadGateway, "face recognition failed")

	assertStatusCode(t, recorder, http.StatusBadGateway)
	assertJSONError(t, recorder, "face recognition failed")
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"text/html,application/xhtml+xml", false},
		{"application/json", true},
		{"application/json, text/plain, */*", true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", tt.accept)
		if got := wantsJSON(req); got != tt.want {
			t.Errorf("wantsJSON(%q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}

func TestUploadName(t *testing.T) {
	tests := []struct {
		client string
		suffix string
	}{
		{"photo.jpg", "-photo.jpg"},
		{"../../etc/passwd", "-passwd"},
		{`C:\Users\me\Selfie 1.PNG`, "-Selfie_1.png"},
		{"Jiří.jpeg", "-Jiri.jpeg"},
		{"", "-unnamed"},
		{"weird.j p g", "-weird"},
	}

	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			got := uploadName(tt.client)
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("uploadName(%q) = %q, want suffix %q", tt.client, got, tt.suffix)
			}
			if strings.ContainsAny(got, `/\ `) {
				t.Errorf("uploadName(%q) = %q contains separators", tt.client, got)
			}
		})
	}

	if uploadName("a.jpg") == uploadName("a.jpg") {
		t.Error("expected unique names for repeated uploads")
	}
}

func TestSaveUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "static")

	name, err := saveUpload(dir, "photo.jpg", []byte("data"))
	if err != nil {
		t.Fatalf("saveUpload failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if string(data) != "data" {
		t.Errorf("unexpected content %q", data)
	}
}
