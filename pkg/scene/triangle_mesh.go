package scene

import (
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/loaders"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// pyramidOBJ is a square pyramid with its base on y=0, counter-clockwise faces seen from outside
const pyramidOBJ = `o pyramid
v -1 0 -1
v  1 0 -1
v  1 0  1
v -1 0  1
v  0 1.5 0
f 1 2 3 4
f 4 3 5
f 3 2 5
f 2 1 5
f 1 4 5
`

// floorOBJ is a textured quad on y=0
const floorOBJ = `o floor
v -1 0 -1
v  1 0 -1
v  1 0  1
v -1 0  1
vt 0 1
vt 1 1
vt 1 0
vt 0 0
f 4/4 3/3 2/2 1/1
`

// NewTriangleMeshScene creates a scene showcasing triangle mesh geometry
func NewTriangleMeshScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		LookFrom: core.NewVec3(0, 2, 6),
		LookAt:   core.NewVec3(0, 0.75, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     45,
		Aperture: 0.02,
	}, cameraOverrides)

	s := &Scene{
		Name:         "mesh",
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{Width: 320, Height: 180, SamplesPerPixel: 32},
	}

	checker := material.NewCheckerTexture(
		material.NewConstantTexture(core.NewVec3(0.8, 0.8, 0.8)),
		material.NewConstantTexture(core.NewVec3(0.1, 0.1, 0.1)),
	)
	checker.Frequency = 3
	s.Add(mustMesh(floorOBJ, core.Scale(core.NewVec3(6, 1, 6)), material.NewTexturedLambertian(checker)))

	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.05)
	s.Add(mustMesh(pyramidOBJ, core.Rotate(30, core.NewVec3(0, 1, 0)), gold))

	glass := material.NewDielectric(1.5)
	s.Add(mustMesh(pyramidOBJ,
		core.Scale(core.NewVec3(0.4, 0.4, 0.4)).Then(core.Translate(core.NewVec3(1.8, 0, 1))),
		glass))

	s.Add(geometry.NewSphere(core.NewVec3(-1.8, 0.5, 1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))))
	return s
}

// mustMesh parses an embedded OBJ; the sources are constants so errors are programming bugs
func mustMesh(src string, transform core.Transform, mat material.Material) *geometry.TriangleMesh {
	data, err := loaders.LoadOBJ(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	data.Apply(transform)

	mesh, err := data.Mesh(mat)
	if err != nil {
		panic(err)
	}
	return mesh
}
