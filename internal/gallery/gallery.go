// Package gallery keeps the table of registered identities and the in-memory
// cache of their face embeddings used to recognize uploaded photos.
package gallery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/csvtable"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/imageutil"
)

// allowedExtensions are the reference photo types the loader reads.
var allowedExtensions = []string{".jpg", ".jpeg", ".png"}

// Options configures a Store.
type Options struct {
	TablePath string           // identity CSV
	FacesDir  string           // where reference photos are written
	Metric    facematch.Metric // defaults to euclidean
	Threshold float64          // defaults to constants.DefaultMatchThreshold
}

// Store owns the identity table and the embedding cache derived from it.
// Match may run concurrently with Load; registrations are serialized.
type Store struct {
	table      *csvtable.Table
	facesDir   string
	recognizer facematch.Recognizer
	metric     facematch.Metric
	threshold  float64

	mu         sync.RWMutex
	names      []string
	embeddings []facematch.Embedding

	registerMu sync.Mutex
}

// NewStore creates a store with an empty cache. Call Load to populate it.
func NewStore(recognizer facematch.Recognizer, opts Options) *Store {
	if opts.Metric == "" {
		opts.Metric = facematch.MetricEuclidean
	}
	if opts.Threshold <= 0 {
		opts.Threshold = constants.DefaultMatchThreshold
	}
	return &Store{
		table:      csvtable.New(opts.TablePath, identityColumns...),
		facesDir:   opts.FacesDir,
		recognizer: recognizer,
		metric:     opts.Metric,
		threshold:  opts.Threshold,
	}
}

// Identities returns every row of the identity table, creating the table if absent.
func (s *Store) Identities() ([]Identity, error) {
	if err := s.table.Ensure(); err != nil {
		return nil, err
	}
	rows, err := s.table.ReadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]Identity, len(rows))
	for i, row := range rows {
		ids[i] = Identity{Name: row[0], RollNumber: row[1], ImagePath: row[2]}
	}
	return ids, nil
}

// Load rebuilds the cache from the identity table.
func (s *Store) Load(ctx context.Context) (*LoadReport, error) {
	return s.LoadWithProgress(ctx, nil)
}

// LoadWithProgress rebuilds the cache, calling progress after every row.
// Rows whose photo is missing, has the wrong extension or shows no face are
// skipped and reported. The cache is replaced only when the whole table was
// processed; on error the previous cache stays in place.
func (s *Store) LoadWithProgress(ctx context.Context, progress ProgressFunc) (*LoadReport, error) {
	ids, err := s.Identities()
	if err != nil {
		return nil, fmt.Errorf("reading identity table: %w", err)
	}

	report := &LoadReport{Total: len(ids)}
	names := make([]string, 0, len(ids))
	embeddings := make([]facematch.Embedding, 0, len(ids))

	for _, id := range ids {
		embedding, err := s.encodeIdentity(ctx, id)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("rebuilding gallery: %w", ctxErr)
		}
		if progress != nil {
			progress(id, err)
		}
		if err != nil {
			log.Printf("gallery: skipping %s: %v", id.DisplayName(), err)
			report.Skipped = append(report.Skipped, Skip{Identity: id, Reason: err})
			continue
		}
		names = append(names, id.DisplayName())
		embeddings = append(embeddings, embedding)
	}
	report.Loaded = len(names)

	s.mu.Lock()
	s.names = names
	s.embeddings = embeddings
	s.mu.Unlock()

	return report, nil
}

// encodeIdentity returns the embedding of the first face in the identity's photo.
func (s *Store) encodeIdentity(ctx context.Context, id Identity) (facematch.Embedding, error) {
	ext := strings.ToLower(filepath.Ext(id.ImagePath))
	if !slices.Contains(allowedExtensions, ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, id.ImagePath)
	}

	data, err := os.ReadFile(id.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("reading reference photo: %w", err)
	}

	embeddings, err := s.recognizer.EncodeFaces(ctx, data, nil)
	if err != nil {
		return nil, fmt.Errorf("encoding reference photo: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFace, id.ImagePath)
	}
	return embeddings[0], nil
}

// PhotoPath returns where the reference photo for name and roll number is stored.
// The slugs keep the file readable; the digest of the raw values keeps names
// that slug alike ("CS/17" and "CS 17") in separate files.
func (s *Store) PhotoPath(name, rollNumber string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + rollNumber))
	file := fmt.Sprintf("%s_%s_%s.jpg", facematch.Slug(name), facematch.Slug(rollNumber), hex.EncodeToString(sum[:4]))
	return filepath.Join(s.facesDir, file)
}

// Register stores the photo, appends the identity to the table and rebuilds
// the cache before returning, so the new identity is matchable immediately.
// A second registration with the same name and roll number overwrites the photo.
// Once the row is written the rebuild ignores cancellation of ctx; the table
// and the cache must not disagree.
func (s *Store) Register(ctx context.Context, name, rollNumber string, imageData []byte) (Identity, *LoadReport, error) {
	name = strings.TrimSpace(name)
	rollNumber = strings.TrimSpace(rollNumber)
	if name == "" || rollNumber == "" {
		return Identity{}, nil, ErrMissingField
	}

	photo, err := imageutil.ToJPEG(imageData)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	id := Identity{Name: name, RollNumber: rollNumber, ImagePath: s.PhotoPath(name, rollNumber)}

	if err := os.MkdirAll(s.facesDir, 0o755); err != nil {
		return Identity{}, nil, fmt.Errorf("creating faces directory: %w", err)
	}
	if err := os.WriteFile(id.ImagePath, photo, 0o644); err != nil {
		return Identity{}, nil, fmt.Errorf("saving reference photo: %w", err)
	}
	if err := s.table.Append(id.Name, id.RollNumber, id.ImagePath); err != nil {
		return Identity{}, nil, fmt.Errorf("appending identity: %w", err)
	}

	report, err := s.Load(context.WithoutCancel(ctx))
	if err != nil {
		return id, nil, err
	}
	return id, report, nil
}

// Match returns the display name of the cached identity nearest to query, or
// constants.UnknownName when the cache is empty or the nearest identity is
// farther than the threshold. Only the nearest identity is considered: another
// identity within threshold does not rescue a failed nearest candidate.
func (s *Store) Match(query facematch.Embedding) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, _ := s.metric.Nearest(s.embeddings, query)
	if idx < 0 {
		return constants.UnknownName
	}
	if !s.metric.Matches(s.embeddings[idx:idx+1], query, s.threshold)[0] {
		return constants.UnknownName
	}
	return s.names[idx]
}

// Len returns the number of cached embeddings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.embeddings)
}

// CachedNames returns the display names currently in the cache.
func (s *Store) CachedNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.names)
}
