package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// TextureKind identifies a concrete texture variant
type TextureKind int

const (
	TextureConstant TextureKind = iota
	TextureChecker
	TextureImage
)

// Texture provides spatially-varying colors for materials.
// Value is a pure function of its inputs.
type Texture interface {
	// Value returns color at given UV coordinates and 3D point
	// UV is used for image textures, point for procedural textures
	Value(uv core.Vec2, point core.Vec3) core.Vec3
	Kind() TextureKind
}

// ConstantTexture provides a uniform color
type ConstantTexture struct {
	Color core.Vec3
}

// NewConstantTexture creates a new solid color texture
func NewConstantTexture(color core.Vec3) *ConstantTexture {
	return &ConstantTexture{Color: color}
}

// Value returns the solid color regardless of UV or position
func (c *ConstantTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	return c.Color
}

func (c *ConstantTexture) Kind() TextureKind { return TextureConstant }

// DefaultCheckerFrequency is the sine frequency used by NewCheckerTexture
const DefaultCheckerFrequency = 10.0

// CheckerTexture alternates between two sub-textures in a 3D sine lattice
type CheckerTexture struct {
	Even      Texture
	Odd       Texture
	Frequency float64
}

// NewCheckerTexture creates a checker with the default frequency
func NewCheckerTexture(even, odd Texture) *CheckerTexture {
	return &CheckerTexture{Even: even, Odd: odd, Frequency: DefaultCheckerFrequency}
}

// Value selects Odd where sin(k·x)·sin(k·y)·sin(k·z) is negative, Even otherwise
func (c *CheckerTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	k := c.Frequency
	sines := math.Sin(k*point.X) * math.Sin(k*point.Y) * math.Sin(k*point.Z)
	if sines < 0 {
		return c.Odd.Value(uv, point)
	}
	return c.Even.Value(uv, point)
}

func (c *CheckerTexture) Kind() TextureKind { return TextureChecker }
