package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// singularEpsilon is the determinant magnitude below which a matrix is treated as singular
const singularEpsilon = 1e-12

// Transform is an affine transform with a cached inverse.
// It is used to place loaded geometry in the world; the renderer itself never
// transforms rays.
type Transform struct {
	m   mgl64.Mat4
	inv mgl64.Mat4
}

// IdentityTransform returns the identity transform
func IdentityTransform() Transform {
	return Transform{m: mgl64.Ident4(), inv: mgl64.Ident4()}
}

// NewTransform creates a transform from a 4x4 column-major matrix.
// A near-singular matrix falls back to the identity transform and ok is false.
func NewTransform(m mgl64.Mat4) (t Transform, ok bool) {
	if math.Abs(m.Det()) < singularEpsilon {
		return IdentityTransform(), false
	}
	return Transform{m: m, inv: m.Inv()}, true
}

// Translate returns a translation transform
func Translate(offset Vec3) Transform {
	t, _ := NewTransform(mgl64.Translate3D(offset.X, offset.Y, offset.Z))
	return t
}

// Scale returns a non-uniform scale transform; any zero factor yields the identity
func Scale(factors Vec3) Transform {
	t, _ := NewTransform(mgl64.Scale3D(factors.X, factors.Y, factors.Z))
	return t
}

// Rotate returns a rotation of degrees about axis; a zero-length axis yields the identity
func Rotate(degrees float64, axis Vec3) Transform {
	if axis.NearZero(1e-12) {
		return IdentityTransform()
	}
	a := axis.Normalize()
	t, _ := NewTransform(mgl64.HomogRotate3D(mgl64.DegToRad(degrees), mgl64.Vec3{a.X, a.Y, a.Z}))
	return t
}

// Then returns the transform that applies t first and next second
func (t Transform) Then(next Transform) Transform {
	return Transform{m: next.m.Mul4(t.m), inv: t.inv.Mul4(next.inv)}
}

// Inverse returns the inverse transform
func (t Transform) Inverse() Transform {
	return Transform{m: t.inv, inv: t.m}
}

// Matrix returns the underlying matrix
func (t Transform) Matrix() mgl64.Mat4 {
	return t.m
}

// Point transforms a position (w = 1)
func (t Transform) Point(p Vec3) Vec3 {
	r := mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, t.m)
	return NewVec3(r[0], r[1], r[2])
}

// Vector transforms a direction (w = 0)
func (t Transform) Vector(v Vec3) Vec3 {
	r := mgl64.TransformNormal(mgl64.Vec3{v.X, v.Y, v.Z}, t.m)
	return NewVec3(r[0], r[1], r[2])
}

// Normal transforms a surface normal by the inverse transpose and renormalizes it
func (t Transform) Normal(n Vec3) Vec3 {
	r := mgl64.TransformNormal(mgl64.Vec3{n.X, n.Y, n.Z}, t.inv.Transpose())
	return NewVec3(r[0], r[1], r[2]).Normalize()
}
