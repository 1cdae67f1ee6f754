package cmd

import (
	"fmt"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/config"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/embedding"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/facematch"
	"github.com/TrickyVikram/Face-Recognition-attendance/internal/gallery"
)

// newRecognizer creates the face embedding service client.
func newRecognizer(cfg *config.Config) *embedding.Client {
	return embedding.NewClient(embedding.Options{
		URL:          cfg.FaceService.URL,
		Timeout:      cfg.FaceService.Timeout(),
		MaxImageSize: cfg.FaceService.MaxImageSize,
		CacheTTL:     cfg.FaceService.CacheTTL(),
	})
}

// newStore creates the gallery store. Call Load to fill its cache.
func newStore(cfg *config.Config, recognizer facematch.Recognizer) (*gallery.Store, error) {
	metric, err := facematch.ParseMetric(cfg.Matching.Metric)
	if err != nil {
		return nil, err
	}
	return gallery.NewStore(recognizer, gallery.Options{
		TablePath: cfg.Storage.RegisteredUsersCSV,
		FacesDir:  cfg.Storage.KnownFacesDir,
		Metric:    metric,
		Threshold: cfg.Matching.Threshold,
	}), nil
}

// printSkipped lists the identities left out of the cache.
func printSkipped(report *gallery.LoadReport) {
	for _, skip := range report.Skipped {
		fmt.Printf("  skipped %s: %v\n", skip.Identity.DisplayName(), skip.Reason)
	}
}
