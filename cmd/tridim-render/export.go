package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/smasonuk/tridim"
)

// FramePath returns the output path of one frame. Single frame renders use
// output as is, longer runs number every frame before the extension.
func FramePath(output string, frame, frames int) string {
	if frames <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(output, ext), frame, ext)
}

// SaveImage writes buffer as PNG, BMP or TIFF depending on the extension of
// path.
func SaveImage(path string, buffer *tridim.DrawBuffer) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create image file %s: %w", path, err)
	}
	defer file.Close()

	if err := encode(file, buffer.Image()); err != nil {
		return fmt.Errorf("could not encode image file %s: %w", path, err)
	}
	return file.Close()
}

type encoder func(f *os.File, img image.Image) error

func encoderFor(path string) (encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".bmp":
		return func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, nil
	case ".tif", ".tiff":
		return func(f *os.File, img image.Image) error {
			return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	}
	return nil, fmt.Errorf("unsupported image format %q", filepath.Ext(path))
}
