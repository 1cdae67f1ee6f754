// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Matching constants
const (
	// UnknownName is reported for a face that matches no registered identity
	UnknownName = "Unknown"

	// DefaultMatchThreshold is the default maximum Euclidean distance for a match
	// Lower values = stricter matching
	DefaultMatchThreshold = 0.6

	// IoUThreshold is the minimum Intersection over Union required to pair
	// a requested face location with a detected face
	IoUThreshold = 0.5
)

// Record layout constants
const (
	// DateLayout formats the attendance date column
	DateLayout = "2006-01-02"

	// TimeLayout formats the attendance time column
	TimeLayout = "15:04:05"
)

// Image constants
const (
	// MaxImageSize is the maximum dimension (width or height) sent to the face service
	MaxImageSize = 1920

	// JPEGQuality is used whenever an image is re-encoded
	JPEGQuality = 90
)

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (32MB)
	MaxUploadSize = 32 << 20

	// ImageField is the multipart field carrying the photo
	ImageField = "image"
)
