package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/df07/go-tile-raytracer/pkg/material"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// ImageData contains a decoded image as interleaved 8-bit RGB, row 0 at the top
type ImageData struct {
	Width  int
	Height int
	Pixels []byte // 3 bytes per pixel
	Format string // Format name reported by the decoder
}

// LoadImage loads an image file and converts it to 8-bit RGB
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// DecodeImage decodes any registered image format from r
func DecodeImage(r io.Reader) (*ImageData, error) {
	// Auto-detects the format from the header
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	data := FromImage(img)
	data.Format = format
	return data, nil
}

// FromImage converts an image to 8-bit RGB, dropping alpha
func FromImage(img image.Image) *ImageData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]byte, 0, width*height*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixels = append(pixels, c.R, c.G, c.B)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Texture wraps the decoded pixels in an image texture without copying them
func (d *ImageData) Texture() (*material.ImageTexture, error) {
	return material.NewImageTexture(d.Width, d.Height, d.Pixels)
}

// LoadTexture loads an image file as a texture
func LoadTexture(filename string) (*material.ImageTexture, error) {
	data, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}
	return data.Texture()
}
