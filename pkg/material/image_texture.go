package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

var (
	// ErrEmptyTexture is returned when an image texture is built without pixel data
	ErrEmptyTexture = errors.New("image texture has no pixel data")
	// ErrTextureSize is returned when the pixel buffer does not match the dimensions
	ErrTextureSize = errors.New("image texture size mismatch")
)

// ImageTexture provides color from a decoded 8-bit RGB bitmap.
// The pixel buffer is referenced, never copied, and must not be mutated while rendering.
type ImageTexture struct {
	Width  int
	Height int
	Pixels []byte // Row-major, 3 interleaved channels: Pixels[3*(y*Width+x)+c]
}

// NewImageTexture creates a new image texture over pixels
func NewImageTexture(width, height int, pixels []byte) (*ImageTexture, error) {
	if len(pixels) == 0 {
		return nil, ErrEmptyTexture
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrTextureSize, width, height)
	}
	if len(pixels) < 3*width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d RGB", ErrTextureSize, len(pixels), width, height)
	}

	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// Value samples the texture at given UV coordinates using nearest-neighbor filtering.
// V=1 is the top row of the bitmap; out-of-range coordinates clamp to the edge.
func (t *ImageTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	i := int(uv.X * float64(t.Width))
	j := int((1-uv.Y)*float64(t.Height) - 0.001)

	i = max(0, min(t.Width-1, i))
	j = max(0, min(t.Height-1, j))

	offset := 3 * (j*t.Width + i)
	return core.NewVec3(
		float64(t.Pixels[offset])/255.0,
		float64(t.Pixels[offset+1])/255.0,
		float64(t.Pixels[offset+2])/255.0,
	)
}

func (t *ImageTexture) Kind() TextureKind { return TextureImage }
