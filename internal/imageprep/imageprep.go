// Package imageprep cleans up phone photos of invoices before extraction.
package imageprep

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Options controls the enhancement pipeline.
type Options struct {
	// MaxDimension bounds the longer side in pixels. 0 disables resizing.
	MaxDimension int
	// Enhance applies grayscale, contrast and sharpening.
	Enhance bool
	Quality int
}

// DefaultOptions mirrors the ingestion defaults.
func DefaultOptions() Options {
	return Options{MaxDimension: 2000, Enhance: true, Quality: 90}
}

// Prepare decodes a JPEG or PNG, applies EXIF orientation, bounds its size
// and re-encodes it as JPEG. Other content types are returned untouched.
func Prepare(data []byte, contentType string, opts Options) ([]byte, string, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data, contentType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("imageprep.Prepare: decoding image: %w", err)
	}

	b := img.Bounds()
	if opts.MaxDimension > 0 && (b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension) {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	if opts.Enhance {
		gray := imaging.Grayscale(img)
		gray = imaging.AdjustContrast(gray, 20)
		img = imaging.Sharpen(gray, 1.0)
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = 90
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", fmt.Errorf("imageprep.Prepare: encoding image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
