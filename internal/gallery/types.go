package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a registration lacks a name or roll number.
	ErrMissingField = errors.New("name and roll number are required")

	// ErrInvalidImage is returned when a registration photo cannot be decoded.
	ErrInvalidImage = errors.New("not a supported image")

	// ErrNoFace marks a reference photo in which no face was detected.
	ErrNoFace = errors.New("no face detected")

	// ErrUnsupportedExtension marks a reference photo with an extension the loader does not read.
	ErrUnsupportedExtension = errors.New("unsupported image extension")
)

// identityColumns is the header of the identity table.
var identityColumns = []string{"name", "roll_number", "image_path"}

// Identity is a registered person and their reference photo.
type Identity struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	ImagePath  string `json:"image_path"`
}

// DisplayName is the label reported for a recognized face and written to the attendance log.
func (i Identity) DisplayName() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.RollNumber)
}

// Skip records a table row left out of the cache.
type Skip struct {
	Identity Identity
	Reason   error
}

// LoadReport summarizes a cache rebuild.
type LoadReport struct {
	Total   int
	Loaded  int
	Skipped []Skip
}

// ProgressFunc is called once per table row during a rebuild; err is nil when
// the row made it into the cache.
type ProgressFunc func(id Identity, err error)
