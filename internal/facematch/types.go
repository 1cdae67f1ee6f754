// Package facematch defines the face-matching contract shared by the gallery,
// the HTTP handlers and the embedding service client: face locations,
// embeddings, and the distance predicate used to accept a match.
package facematch

import "context"

// Embedding is a fixed-length vector summarizing one detected face.
type Embedding []float32

// Face is a single face found in an image.
type Face struct {
	BBox      BBox      // corners in pixels of the submitted image
	Embedding Embedding
	DetScore  float64   // detector confidence
}

// Recognizer locates and encodes faces in encoded image data (JPEG, PNG, ...).
type Recognizer interface {
	// LocateFaces returns one bounding box per detected face, in detection order.
	LocateFaces(ctx context.Context, imageData []byte) ([]BBox, error)

	// EncodeFaces returns one embedding per location. A nil locations slice
	// encodes every detected face.
	EncodeFaces(ctx context.Context, imageData []byte, locations []BBox) ([]Embedding, error)
}
