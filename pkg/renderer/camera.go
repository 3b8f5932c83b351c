package renderer

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	LookFrom      core.Vec3 // Eye position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction (usually 0,1,0)
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole camera
	FocusDistance float64   // Distance to the focus plane, <= 0 means |LookFrom - LookAt|
	Time0, Time1  float64   // Shutter interval for motion blur
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	zero := core.Vec3{}
	if override.LookFrom != zero {
		base.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		base.LookAt = override.LookAt
	}
	if override.Up != zero {
		base.Up = override.Up
	}
	if override.VFov != 0 {
		base.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		base.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		base.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		base.FocusDistance = override.FocusDistance
	}
	if override.Time0 != 0 || override.Time1 != 0 {
		base.Time0 = override.Time0
		base.Time1 = override.Time1
	}
	return base
}

// Camera generates rays for rendering.
// It is immutable after NewCamera and safe for concurrent GetRay calls.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
	time0, time1    float64
}

// NewCamera creates a positionable thin-lens camera
func NewCamera(config CameraConfig) *Camera {
	vfov := config.VFov
	if vfov <= 0 || vfov >= 180 {
		vfov = 90
	}
	aspectRatio := config.AspectRatio
	if aspectRatio <= 0 {
		aspectRatio = 1
	}

	theta := vfov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspectRatio * halfHeight

	w := config.LookFrom.Subtract(config.LookAt)
	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = w.Length()
	}
	if focusDistance <= 0 {
		focusDistance = 1
	}
	if w.NearZero(1e-12) {
		w = core.NewVec3(0, 0, 1)
	}
	w = w.Normalize()

	u := config.Up.Cross(w)
	if u.NearZero(1e-9) {
		// Up is parallel to the view direction; pick any other axis
		u = alternateUp(w).Cross(w)
	}
	u = u.Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	horizontal := u.Multiply(2 * halfWidth * focusDistance)
	vertical := v.Multiply(2 * halfHeight * focusDistance)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		time0:           config.Time0,
		time1:           config.Time1,
	}
}

func alternateUp(w core.Vec3) core.Vec3 {
	if math.Abs(w.Y) < 0.9 {
		return core.NewVec3(0, 1, 0)
	}
	return core.NewVec3(1, 0, 0)
}

// GetRay generates a ray for viewport coordinates (s, t) where (0, 0) is the lower left.
// The lens offset and time stamp are drawn from sampler.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	time := c.time0
	if c.time1 != c.time0 {
		time += sampler.Get1D() * (c.time1 - c.time0)
	}

	return core.NewRayAt(origin, direction, time)
}

// Origin returns the eye position
func (c *Camera) Origin() core.Vec3 { return c.origin }

// Basis returns the camera's right, up and backward unit vectors
func (c *Camera) Basis() (u, v, w core.Vec3) { return c.u, c.v, c.w }

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float64 { return c.lensRadius }

// Shutter returns the time interval rays are stamped within
func (c *Camera) Shutter() (time0, time1 float64) { return c.time0, c.time1 }
