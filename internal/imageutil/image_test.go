package imageutil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
)

func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, c)
		}
	}
	return img
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFormat(t *testing.T) {
	img := createTestImage(10, 10, color.White)

	if f, err := Format(jpegBytes(t, img)); err != nil || f != "jpeg" {
		t.Errorf("expected jpeg, got %q (%v)", f, err)
	}
	if f, err := Format(pngBytes(t, img)); err != nil || f != "png" {
		t.Errorf("expected png, got %q (%v)", f, err)
	}
}

func TestFormat_NotImage(t *testing.T) {
	_, err := Format([]byte("definitely not an image"))
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
}

func TestToJPEG_KeepsJPEGBytes(t *testing.T) {
	data := jpegBytes(t, createTestImage(20, 20, color.Black))

	out, err := ToJPEG(data)
	if err != nil {
		t.Fatalf("ToJPEG failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("expected JPEG input to be returned unchanged")
	}
}

func TestToJPEG_ConvertsPNG(t *testing.T) {
	data := pngBytes(t, createTestImage(20, 20, color.RGBA{200, 10, 10, 255}))

	out, err := ToJPEG(data)
	if err != nil {
		t.Fatalf("ToJPEG failed: %v", err)
	}
	if f, _ := Format(out); f != "jpeg" {
		t.Errorf("expected jpeg output, got %q", f)
	}
}

func TestFitWithin_SmallImageUnchanged(t *testing.T) {
	data := jpegBytes(t, createTestImage(100, 50, color.White))

	out, scale, err := FitWithin(data, 200)
	if err != nil {
		t.Fatalf("FitWithin failed: %v", err)
	}
	if scale != 1 {
		t.Errorf("expected scale 1, got %v", scale)
	}
	if !bytes.Equal(out, data) {
		t.Error("expected image that fits to be returned unchanged")
	}
}

func TestFitWithin_Downscales(t *testing.T) {
	data := pngBytes(t, createTestImage(400, 200, color.White))

	out, scale, err := FitWithin(data, 100)
	if err != nil {
		t.Fatalf("FitWithin failed: %v", err)
	}
	if math.Abs(scale-4) > 1e-9 {
		t.Errorf("expected scale 4, got %v", scale)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("expected 100x50, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestFitWithin_Portrait(t *testing.T) {
	data := jpegBytes(t, createTestImage(100, 300, color.White))

	out, scale, err := FitWithin(data, 150)
	if err != nil {
		t.Fatalf("FitWithin failed: %v", err)
	}
	cfg, _, _ := image.DecodeConfig(bytes.NewReader(out))
	if cfg.Height != 150 || cfg.Width != 50 {
		t.Errorf("expected 50x150, got %dx%d", cfg.Width, cfg.Height)
	}
	if math.Abs(scale-2) > 1e-9 {
		t.Errorf("expected scale 2, got %v", scale)
	}
}

func TestFitWithin_NotImage(t *testing.T) {
	if _, _, err := FitWithin([]byte("nope"), 100); !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
}
