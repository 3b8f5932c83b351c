package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadVertices is a unit square in the z=0 plane, counter-clockwise seen from +Z
func quadVertices() []core.Vec3 {
	return []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 0),
		core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 0), core.NewVec3(0, 1, 0),
	}
}

func TestTriangleMesh_Creation(t *testing.T) {
	mesh, err := NewTriangleMesh(quadVertices(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Len(t, mesh.Triangles(), 2)

	bbox, ok := mesh.BoundingBox(0, 1)
	require.True(t, ok)
	assert.Equal(t, core.NewVec3(0, 0, 0), bbox.Min)
	assert.Equal(t, core.NewVec3(1, 1, 0), bbox.Max)
}

func TestTriangleMesh_VertexCountError(t *testing.T) {
	_, err := NewTriangleMesh(quadVertices()[:4], nil, nil)
	assert.True(t, errors.Is(err, ErrMeshVertexCount))

	_, err = NewTriangleMesh(nil, nil, nil)
	assert.True(t, errors.Is(err, ErrMeshVertexCount))

	_, err = NewTriangleMesh(quadVertices(), make([]core.Vec2, 2), nil)
	assert.Error(t, err)
}

func TestTriangleMesh_Hit(t *testing.T) {
	mesh, err := NewTriangleMesh(quadVertices(), nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		expectHit bool
	}{
		{"first triangle from front", core.NewVec3(0.7, 0.2, 1), core.NewVec3(0, 0, -1), true},
		{"second triangle from front", core.NewVec3(0.2, 0.7, 1), core.NewVec3(0, 0, -1), true},
		{"from behind", core.NewVec3(0.7, 0.2, -1), core.NewVec3(0, 0, 1), true},
		{"outside", core.NewVec3(1.5, 0.5, 1), core.NewVec3(0, 0, -1), false},
		{"parallel", core.NewVec3(0.5, 0.5, 1), core.NewVec3(1, 0, 0), false},
		{"pointing away", core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := mesh.Hit(core.NewRay(tt.origin, tt.direction), 0.001, math.Inf(1))
			require.Equal(t, tt.expectHit, ok)
			if ok {
				assert.InDelta(t, 1.0, hit.T, 1e-9)
				assert.InDelta(t, 1.0, hit.Normal.Z, 1e-9)
			}
		})
	}
}

func TestTriangleMesh_CullBackFaces(t *testing.T) {
	mesh, err := NewTriangleMesh(quadVertices(), nil, nil)
	require.NoError(t, err)
	mesh.CullBackFaces = true

	_, ok := mesh.Hit(core.NewRay(core.NewVec3(0.7, 0.2, 1), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	assert.True(t, ok, "front face should still be hit")

	_, ok = mesh.Hit(core.NewRay(core.NewVec3(0.7, 0.2, -1), core.NewVec3(0, 0, 1)), 0.001, math.Inf(1))
	assert.False(t, ok, "back face should be culled")
}

func TestTriangleMesh_DegenerateTriangleNeverHits(t *testing.T) {
	p := core.NewVec3(0, 0, 0)
	mesh, err := NewTriangleMesh([]core.Vec3{p, p, p}, nil, nil)
	require.NoError(t, err)

	_, ok := mesh.Hit(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	assert.False(t, ok)
}

func TestTriangleMesh_InterpolatesUV(t *testing.T) {
	vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
	uvs := []core.Vec2{core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(0, 1)}
	mesh, err := NewTriangleMesh(vertices, uvs, nil)
	require.NoError(t, err)

	hit, ok := mesh.Hit(core.NewRay(core.NewVec3(0.25, 0.5, 1), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 0.25, hit.UV.X, 1e-9)
	assert.InDelta(t, 0.5, hit.UV.Y, 1e-9)
}

func TestTriangle_MatchesMesh(t *testing.T) {
	mesh, err := NewTriangleMesh(quadVertices(), nil, nil)
	require.NoError(t, err)
	faces := mesh.Triangles()

	ray := core.NewRay(core.NewVec3(0.2, 0.7, 1), core.NewVec3(0, 0, -1))
	_, ok := faces[0].Hit(ray, 0.001, math.Inf(1))
	assert.False(t, ok)
	hit, ok := faces[1].Hit(ray, 0.001, math.Inf(1))
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.T, 1e-9)
	assert.Equal(t, KindTriangle, faces[1].Kind())

	box, ok := faces[0].BoundingBox(0, 1)
	require.True(t, ok)
	assert.Equal(t, core.NewVec3(1, 1, 0), box.Max)
}
