package renderer

import (
	"bufio"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrUnknownFormat is returned for an output format with no encoder
var ErrUnknownFormat = errors.New("unknown image format")

// Formats lists the supported output formats
var Formats = []string{"png", "bmp", "ppm"}

// WritePNG encodes the framebuffer as PNG
func WritePNG(w io.Writer, fb *Framebuffer) error {
	return png.Encode(w, fb.Image())
}

// WriteBMP encodes the framebuffer as a 24-bit BMP
func WriteBMP(w io.Writer, fb *Framebuffer) error {
	return bmp.Encode(w, fb.Image())
}

// WritePPM writes the framebuffer as a plain-text P3 pixmap, top row first
func WritePPM(w io.Writer, fb *Framebuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height)
	for i := 0; i < len(fb.Pix); i += 3 {
		fmt.Fprintf(bw, "%d %d %d\n", fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2])
	}
	return bw.Flush()
}

// Encode writes the framebuffer in the named format
func Encode(w io.Writer, fb *Framebuffer, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return WritePNG(w, fb)
	case "bmp":
		return WriteBMP(w, fb)
	case "ppm":
		return WritePPM(w, fb)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromPath returns the format implied by a file extension, or png
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "png"
	}
	return ext
}

// SaveFile encodes the framebuffer to path using its extension to pick the format
func SaveFile(path string, fb *Framebuffer) error {
	format := FormatFromPath(path)
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(f, fb, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
