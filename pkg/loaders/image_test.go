package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// testImage is a 2x2 image: white, red on top; green, blue below
func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	return img
}

var testImagePixels = []byte{
	255, 255, 255, 255, 0, 0,
	0, 255, 0, 0, 0, 255,
}

// TestLoadImage creates a test PNG and verifies loading
func TestLoadImage(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.png")

	f, err := os.Create(testFile)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testImage()))
	require.NoError(t, f.Close())

	imageData, err := LoadImage(testFile)
	require.NoError(t, err)

	assert.Equal(t, 2, imageData.Width)
	assert.Equal(t, 2, imageData.Height)
	assert.Equal(t, "png", imageData.Format)
	assert.Equal(t, testImagePixels, imageData.Pixels)
}

func TestDecodeImage_ExtendedFormats(t *testing.T) {
	tests := []struct {
		format string
		encode func(w io.Writer, img image.Image) error
	}{
		{"bmp", bmp.Encode},
		{"tiff", func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, testImage()))

			data, err := DecodeImage(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.format, data.Format)
			assert.Equal(t, testImagePixels, data.Pixels)
		})
	}
}

func TestImageData_Texture(t *testing.T) {
	data := FromImage(testImage())
	tex, err := data.Texture()
	require.NoError(t, err)

	// v = 1 is the top row of the image
	assert.Equal(t, core.NewVec3(1, 0, 0), tex.Value(core.NewVec2(0.9, 0.9), core.Vec3{}))
	assert.Equal(t, core.NewVec3(0, 1, 0), tex.Value(core.NewVec2(0.1, 0.1), core.Vec3{}))
}

func TestFromImage_NonZeroBounds(t *testing.T) {
	img := testImage().SubImage(image.Rect(1, 1, 2, 2))
	data := FromImage(img)
	assert.Equal(t, 1, data.Width)
	assert.Equal(t, []byte{0, 0, 255}, data.Pixels)
}

// TestLoadImageNotFound verifies error handling for missing files
func TestLoadImageNotFound(t *testing.T) {
	_, err := LoadImage("nonexistent.png")
	assert.Error(t, err)

	_, err = LoadTexture("nonexistent.png")
	assert.Error(t, err)
}

func TestDecodeImage_Garbage(t *testing.T) {
	_, err := DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
