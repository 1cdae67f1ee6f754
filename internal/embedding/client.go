// Package embedding talks to the face embedding service: it submits photos to
// POST /embed/face and turns the detected faces into facematch types.
package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/imageutil"
	"github.com/patrickmn/go-cache"
)

const (
	defaultServiceURL = "http://localhost:8000"
	defaultTimeout    = 60 * time.Second
	defaultCacheTTL   = 2 * time.Minute
)

// ErrLocationNotFound is returned by EncodeFaces when a requested location
// does not overlap any detected face.
var ErrLocationNotFound = errors.New("no detected face at requested location")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	URL          string
	Timeout      time.Duration
	MaxImageSize int
	CacheTTL     time.Duration
}

// Client computes face locations and embeddings using the embedding service.
// Detection results are cached per image digest so that locating and then
// encoding the same upload costs a single request.
type Client struct {
	baseURL      string
	maxImageSize int
	client       *http.Client
	results      *cache.Cache
}

var _ facematch.Recognizer = (*Client)(nil)

// NewClient creates a new embedding service client.
func NewClient(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = defaultServiceURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = constants.MaxImageSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Client{
		baseURL:      strings.TrimSuffix(opts.URL, "/"),
		maxImageSize: opts.MaxImageSize,
		client:       &http.Client{Timeout: opts.Timeout},
		results:      cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

// faceDetection represents a single detected face on the wire.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse represents the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage posts the image as the "file" part of a multipart form.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	mimeType := "application/octet-stream"
	if format, err := imageutil.Format(imageData); err == nil {
		mimeType = "image/" + format
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DetectFaces detects every face in the image. Bounding boxes are in pixels
// of the submitted image even when it was downscaled for the service.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]facematch.Face, error) {
	key := digest(imageData)
	if cached, ok := c.results.Get(key); ok {
		return cached.([]facematch.Face), nil
	}

	submitted, scale, err := imageutil.FitWithin(imageData, c.maxImageSize)
	if err != nil {
		return nil, err
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", submitted)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	slices.SortStableFunc(faceResp.Faces, func(a, b faceDetection) int {
		return a.FaceIndex - b.FaceIndex
	})

	faces := make([]facematch.Face, 0, len(faceResp.Faces))
	for _, f := range faceResp.Faces {
		if len(f.Embedding) == 0 {
			continue
		}
		if len(f.BBox) != 4 {
			return nil, fmt.Errorf("face %d: malformed bbox %v", f.FaceIndex, f.BBox)
		}
		bbox := facematch.BBox{f.BBox[0], f.BBox[1], f.BBox[2], f.BBox[3]}
		faces = append(faces, facematch.Face{
			BBox:      bbox.Scale(scale),
			Embedding: f.Embedding,
			DetScore:  f.DetScore,
		})
	}

	c.results.SetDefault(key, faces)
	return faces, nil
}

// LocateFaces returns the bounding box of every detected face.
func (c *Client) LocateFaces(ctx context.Context, imageData []byte) ([]facematch.BBox, error) {
	faces, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	boxes := make([]facematch.BBox, len(faces))
	for i, f := range faces {
		boxes[i] = f.BBox
	}
	return boxes, nil
}

// EncodeFaces returns one embedding per requested location, pairing each
// location with the detected face it overlaps most. Nil locations encodes
// every detected face.
func (c *Client) EncodeFaces(ctx context.Context, imageData []byte, locations []facematch.BBox) ([]facematch.Embedding, error) {
	faces, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}

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
			return nil, fmt.Errorf("%w: %v", ErrLocationNotFound, loc)
		}
		out[i] = faces[idx].Embedding
	}
	return out, nil
}
