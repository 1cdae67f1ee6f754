// Package mock provides a mock implementation of facematch.Recognizer for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
)

// MockRecognizer returns canned faces keyed by the exact image bytes.
// Unknown images contain no faces.
type MockRecognizer struct {
	mu    sync.RWMutex
	faces map[string][]facematch.Face
	calls int

	// Error injection
	LocateError error
	EncodeError error
}

var _ facematch.Recognizer = (*MockRecognizer)(nil)

// NewMockRecognizer creates a new mock recognizer
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{
		faces: make(map[string][]facematch.Face),
	}
}

// SetFaces registers one face per embedding for imageData, laid out left to
// right in 100px columns.
func (m *MockRecognizer) SetFaces(imageData []byte, embeddings ...facematch.Embedding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	faces := make([]facematch.Face, len(embeddings))
	for i, e := range embeddings {
		x := float64(i * 100)
		faces[i] = facematch.Face{BBox: facematch.BBox{x, 0, x + 80, 80}, Embedding: e, DetScore: 0.99}
	}
	m.faces[string(imageData)] = faces
}

// Calls returns how many times the recognizer was asked about an image.
func (m *MockRecognizer) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockRecognizer) lookup(imageData []byte) []facematch.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.faces[string(imageData)]
}

// LocateFaces returns the boxes registered for imageData
func (m *MockRecognizer) LocateFaces(ctx context.Context, imageData []byte) ([]facematch.BBox, error) {
	if m.LocateError != nil {
		return nil, m.LocateError
	}
	faces := m.lookup(imageData)
	boxes := make([]facematch.BBox, len(faces))
	for i, f := range faces {
		boxes[i] = f.BBox
	}
	return boxes, nil
}

// EncodeFaces returns the embeddings registered for imageData, one per location
func (m *MockRecognizer) EncodeFaces(ctx context.Context, imageData []byte, locations []facematch.BBox) ([]facematch.Embedding, error) {
	if m.EncodeError != nil {
		return nil, m.EncodeError
	}
	faces := m.lookup(imageData)
	if locations == nil {
		out := make([]facematch.Embedding, len(faces))
		for i, f := range faces {
			out[i] = f.Embedding
		}
		return out, nil
	}

	detected := make([]facematch.BBox, len(faces))
	for i, f := range faces {
		detected[i] = f.BBox
	}
	out := make([]facematch.Embedding, len(locations))
	for i, loc := range locations {
		idx := facematch.BestOverlap(loc, detected, constants.IoUThreshold)
		if idx < 0 {
			return nil, fmt.Errorf("no face at %v", loc)
		}
		out[i] = faces[idx].Embedding
	}
	return out, nil
}
