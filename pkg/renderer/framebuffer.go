package renderer

import (
	"image"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Framebuffer is a row-major RGB image with 8 bits per channel. Row 0 is the top.
type Framebuffer struct {
	Width  int
	Height int
	Pix    []byte // Width*Height*3 bytes
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// At returns the color of pixel (x, y)
func (fb *Framebuffer) At(x, y int) [3]uint8 {
	i := (y*fb.Width + x) * 3
	return [3]uint8{fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2]}
}

// Set stores the color of the pixel with flat index row*Width + col
func (fb *Framebuffer) Set(index int, c [3]uint8) {
	copy(fb.Pix[index*3:index*3+3], c[:])
}

// Image converts the framebuffer to an opaque RGBA image for encoders
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, j := 0, 0; i < len(fb.Pix); i, j = i+3, j+4 {
		img.Pix[j] = fb.Pix[i]
		img.Pix[j+1] = fb.Pix[i+1]
		img.Pix[j+2] = fb.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// Quantize applies gamma 2 correction to a linear color and maps it to 8 bits per channel
func Quantize(c core.Vec3) [3]uint8 {
	g := c.Sqrt()
	return [3]uint8{quantizeChannel(g.X), quantizeChannel(g.Y), quantizeChannel(g.Z)}
}

func quantizeChannel(x float64) uint8 {
	if math.IsNaN(x) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Floor(255.99*x))))
}
