package facematch

import (
	"fmt"
	"math"

	"github.com/coder/hnsw"
)

// Metric selects how two embeddings are compared.
type Metric string

const (
	MetricEuclidean Metric = "euclidean" // dlib-style descriptors, threshold around 0.6
	MetricCosine    Metric = "cosine"    // normalized ArcFace-style embeddings
)

// ParseMetric validates a metric name.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(name); m {
	case MetricEuclidean, MetricCosine:
		return m, nil
	default:
		return "", fmt.Errorf("unknown distance metric %q", name)
	}
}

func (m Metric) distanceFunc() hnsw.DistanceFunc {
	if m == MetricCosine {
		return hnsw.CosineDistance
	}
	return hnsw.EuclideanDistance
}

// Distance compares two embeddings. Vectors of different or zero length are
// infinitely far apart.
func (m Metric) Distance(a, b Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	d := float64(m.distanceFunc()(a, b))
	if math.IsNaN(d) {
		return math.Inf(1) // zero vector under cosine
	}
	return d
}

// Distances returns the distance from query to every gallery entry.
func (m Metric) Distances(gallery []Embedding, query Embedding) []float64 {
	out := make([]float64, len(gallery))
	for i, g := range gallery {
		out[i] = m.Distance(g, query)
	}
	return out
}

// Matches reports, per gallery entry, whether it lies within threshold of query.
func (m Metric) Matches(gallery []Embedding, query Embedding, threshold float64) []bool {
	out := make([]bool, len(gallery))
	for i, d := range m.Distances(gallery, query) {
		out[i] = d <= threshold
	}
	return out
}

// Nearest returns the index and distance of the closest gallery entry,
// or -1 for an empty gallery.
func (m Metric) Nearest(gallery []Embedding, query Embedding) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, d := range m.Distances(gallery, query) {
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
