package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

var (
	// ErrOBJSyntax is returned for a malformed OBJ statement
	ErrOBJSyntax = errors.New("invalid obj")
	// ErrNoFaces is returned when an OBJ file defines no faces
	ErrNoFaces = errors.New("obj has no faces")
)

// MeshData contains triangulated OBJ geometry: 3 vertices per triangle
type MeshData struct {
	Vertices []core.Vec3
	UVs      []core.Vec2 // nil if no face referenced texture coordinates
}

// TriangleCount returns the number of triangles
func (m *MeshData) TriangleCount() int {
	return len(m.Vertices) / 3
}

// Apply transforms every vertex in place
func (m *MeshData) Apply(t core.Transform) {
	for i, v := range m.Vertices {
		m.Vertices[i] = t.Point(v)
	}
}

// Mesh builds a triangle mesh sharing this data's slices
func (m *MeshData) Mesh(mat material.Material) (*geometry.TriangleMesh, error) {
	return geometry.NewTriangleMesh(m.Vertices, m.UVs, mat)
}

// LoadOBJFile loads a Wavefront OBJ file
func LoadOBJFile(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open obj file: %w", err)
	}
	defer file.Close()

	data, err := LoadOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// objParser accumulates the indexed vertex lists and the flattened triangles
type objParser struct {
	positions []core.Vec3
	texcoords []core.Vec2
	line      int
	mesh      MeshData
	hasUV     bool
}

// LoadOBJ parses positions, texture coordinates and faces. Polygons are
// triangulated as fans around their first vertex; normals, groups and
// materials are ignored.
func LoadOBJ(r io.Reader) (*MeshData, error) {
	p := &objParser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj: %w", err)
	}

	if len(p.mesh.Vertices) == 0 {
		return nil, ErrNoFaces
	}
	if !p.hasUV {
		p.mesh.UVs = nil
	}
	return &p.mesh, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		values, err := p.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, core.NewVec3(values[0], values[1], values[2]))
	case "vt":
		values, err := p.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, core.NewVec2(values[0], values[1]))
	case "f":
		return p.parseFace(fields[1:])
	}
	return nil
}

func (p *objParser) parseFloats(fields []string, count int) ([]float64, error) {
	if len(fields) < count {
		return nil, p.errorf("expected %d values, got %d", count, len(fields))
	}
	values := make([]float64, count)
	for i := range values {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, p.errorf("bad number %q", fields[i])
		}
		values[i] = v
	}
	return values, nil
}

// parseFace parses f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("face with %d vertices", len(fields))
	}

	positions := make([]core.Vec3, len(fields))
	uvs := make([]core.Vec2, len(fields))
	for i, field := range fields {
		parts := strings.Split(field, "/")

		vi, err := p.resolveIndex(parts[0], len(p.positions))
		if err != nil {
			return err
		}
		positions[i] = p.positions[vi]

		if len(parts) > 1 && parts[1] != "" {
			ti, err := p.resolveIndex(parts[1], len(p.texcoords))
			if err != nil {
				return err
			}
			uvs[i] = p.texcoords[ti]
			p.hasUV = true
		}
	}

	// Fan triangulation around the first vertex
	for i := 1; i+1 < len(fields); i++ {
		p.mesh.Vertices = append(p.mesh.Vertices, positions[0], positions[i], positions[i+1])
		p.mesh.UVs = append(p.mesh.UVs, uvs[0], uvs[i], uvs[i+1])
	}
	return nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to a 0-based one
func (p *objParser) resolveIndex(field string, count int) (int, error) {
	index, err := strconv.Atoi(field)
	if err != nil {
		return 0, p.errorf("bad index %q", field)
	}

	switch {
	case index > 0:
		index--
	case index < 0:
		index += count
	default:
		return 0, p.errorf("index 0 is not valid")
	}

	if index < 0 || index >= count {
		return 0, p.errorf("index %s out of range (%d defined)", field, count)
	}
	return index, nil
}

func (p *objParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrOBJSyntax, p.line, fmt.Sprintf(format, args...))
}
