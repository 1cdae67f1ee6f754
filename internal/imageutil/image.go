// Package imageutil decodes, re-encodes and downscales uploaded photos.
package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/TrickyVikram/Face-Recognition-attendance/internal/constants"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when data cannot be decoded by any registered format.
var ErrNotImage = errors.New("not a decodable image")

// Format returns the registered format name of the image ("jpeg", "png", ...).
func Format(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return format, nil
}

func decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, format, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ToJPEG returns data unchanged when it already is a JPEG and re-encodes any
// other decodable format.
func ToJPEG(data []byte) ([]byte, error) {
	format, err := Format(data)
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		return data, nil
	}

	img, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// FitWithin downscales an image so neither side exceeds maxSize, keeping the
// aspect ratio. It returns the image to submit and the factor that maps
// coordinates in the returned image back to the original. Images that already
// fit are returned as-is with factor 1.
func FitWithin(data []byte, maxSize int) ([]byte, float64, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	width, height := cfg.Width, cfg.Height
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return data, 1, nil
	}

	img, _, err := decode(data)
	if err != nil {
		return nil, 0, err
	}

	// Calculate new dimensions.
	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
	} else {
		newHeight = maxSize
		newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	out, err := encodeJPEG(resized)
	if err != nil {
		return nil, 0, err
	}
	return out, float64(width) / float64(newWidth), nil
}
