// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging shrinks post images to the width the site renders them at
// and re-encodes them as compressed PNG. Images narrower than the target
// are re-encoded without upscaling.
package imaging

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultWidth is the content column width post images are resized to.
const DefaultWidth = 900

// ProcessedImage holds one optimised image ready to be written or uploaded.
type ProcessedImage struct {
	Width       int    // Actual output width
	Height      int    // Actual output height
	Data        []byte // PNG-encoded image bytes
	ContentType string // Always "image/png"
}

// Optimize decodes an image, scales it down to width keeping the aspect
// ratio, and encodes it as PNG with maximum compression. A width below 1
// uses DefaultWidth.
func Optimize(r io.Reader, width int) (*ProcessedImage, error) {
	if width < 1 {
		width = DefaultWidth
	}

	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode failed: %w", err)
	}

	img := src
	if src.Bounds().Dx() > width {
		img = imaging.Resize(src, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("imaging: encode failed: %w", err)
	}

	b := img.Bounds()
	slog.Debug("image optimised",
		"src_width", src.Bounds().Dx(),
		"width", b.Dx(),
		"height", b.Dy(),
		"bytes", buf.Len(),
	)

	return &ProcessedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Data:        buf.Bytes(),
		ContentType: "image/png",
	}, nil
}

// OptimizeFile rewrites the image at path in place. The result is written
// to a temporary file in the same directory and renamed over the original,
// so a failure never leaves a truncated image behind.
func OptimizeFile(path string, width int) (*ProcessedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	processed, err := Optimize(f, width)
	f.Close()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".optimize-*")
	if err != nil {
		return nil, fmt.Errorf("imaging: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(processed.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("imaging: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("imaging: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("imaging: replace %s: %w", filepath.Base(path), err)
	}
	return processed, nil
}
