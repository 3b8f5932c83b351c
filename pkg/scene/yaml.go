package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/loaders"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// ErrInvalidScene is returned when a scene file is malformed
var ErrInvalidScene = errors.New("invalid scene file")

// vec3 decodes a YAML sequence of exactly three numbers
type vec3 core.Vec3

func (v *vec3) UnmarshalYAML(node *yaml.Node) error {
	var values []float64
	if err := node.Decode(&values); err != nil {
		return err
	}
	if len(values) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(values))
	}
	*v = vec3{X: values[0], Y: values[1], Z: values[2]}
	return nil
}

func (v *vec3) vec() core.Vec3 {
	if v == nil {
		return core.Vec3{}
	}
	return core.Vec3(*v)
}

type fileCamera struct {
	LookFrom      *vec3   `yaml:"look_from"`
	LookAt        *vec3   `yaml:"look_at"`
	Up            *vec3   `yaml:"up"`
	VFov          float64 `yaml:"vfov"`
	Aperture      float64 `yaml:"aperture"`
	FocusDistance float64 `yaml:"focus_distance"`
	Time0         float64 `yaml:"time0"`
	Time1         float64 `yaml:"time1"`
}

type fileRender struct {
	Width           int   `yaml:"width"`
	Height          int   `yaml:"height"`
	SamplesPerPixel int   `yaml:"samples"`
	MaxDepth        int   `yaml:"max_depth"`
	Seed            *int64 `yaml:"seed"`
}

type fileTexture struct {
	Type      string       `yaml:"type"` // constant, checker or image
	Color     *vec3        `yaml:"color"`
	Even      *fileTexture `yaml:"even"`
	Odd       *fileTexture `yaml:"odd"`
	Frequency float64      `yaml:"frequency"`
	Path      string       `yaml:"path"`
}

type fileMaterial struct {
	Type    string       `yaml:"type"` // lambertian, metal or dielectric
	Albedo  *vec3        `yaml:"albedo"`
	Texture *fileTexture `yaml:"texture"`
	Fuzz    float64      `yaml:"fuzz"`
	IOR     float64      `yaml:"ior"`
}

type fileRotation struct {
	Degrees float64 `yaml:"degrees"`
	Axis    *vec3   `yaml:"axis"`
}

// fileTransform applies scale, then rotate, then translate
type fileTransform struct {
	Scale     *vec3         `yaml:"scale"`
	Rotate    *fileRotation `yaml:"rotate"`
	Translate *vec3         `yaml:"translate"`
}

type fileObject struct {
	Type      string         `yaml:"type"` // sphere, moving_sphere, mesh or triangle
	Material  string         `yaml:"material"`
	Center    *vec3          `yaml:"center"`
	Center1   *vec3          `yaml:"center1"`
	Time0     float64        `yaml:"time0"`
	Time1     float64        `yaml:"time1"`
	Radius    float64        `yaml:"radius"`
	Path      string         `yaml:"path"`
	Vertices  []vec3         `yaml:"vertices"`
	Transform *fileTransform `yaml:"transform"`
}

type sceneFile struct {
	Name      string                  `yaml:"name"`
	Camera    fileCamera              `yaml:"camera"`
	Render    fileRender              `yaml:"render"`
	Materials map[string]fileMaterial `yaml:"materials"`
	Objects   []fileObject            `yaml:"objects"`
}

// LoadYAML loads a scene file; relative mesh and texture paths resolve against its directory
func LoadYAML(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseYAML(file, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseYAML decodes a scene from r. Unknown keys are rejected.
func ParseYAML(r io.Reader, baseDir string) (*Scene, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc sceneFile
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	b := &sceneBuilder{baseDir: baseDir, materials: make(map[string]material.Material, len(doc.Materials))}
	for name, m := range doc.Materials {
		mat, err := b.material(m)
		if err != nil {
			return nil, fmt.Errorf("%w: material %q: %v", ErrInvalidScene, name, err)
		}
		b.materials[name] = mat
	}

	s := &Scene{
		Name: doc.Name,
		CameraConfig: renderer.CameraConfig{
			LookFrom:      doc.Camera.LookFrom.vec(),
			LookAt:        doc.Camera.LookAt.vec(),
			Up:            doc.Camera.Up.vec(),
			VFov:          doc.Camera.VFov,
			Aperture:      doc.Camera.Aperture,
			FocusDistance: doc.Camera.FocusDistance,
			Time0:         doc.Camera.Time0,
			Time1:         doc.Camera.Time1,
		},
		RenderConfig: renderer.RenderConfig{
			Width:           doc.Render.Width,
			Height:          doc.Render.Height,
			SamplesPerPixel: doc.Render.SamplesPerPixel,
			MaxDepth:        doc.Render.MaxDepth,
		},
	}
	if doc.Render.Seed != nil {
		s.RenderConfig.Seed = *doc.Render.Seed
		s.RenderConfig.SeedSet = true
	}
	if doc.Camera.Up == nil {
		s.CameraConfig.Up = core.NewVec3(0, 1, 0)
	}

	for i, o := range doc.Objects {
		obj, err := b.object(o)
		if err != nil {
			return nil, fmt.Errorf("%w: object %d (%s): %v", ErrInvalidScene, i, o.Type, err)
		}
		s.Add(obj)
	}
	if len(s.Primitives) == 0 {
		return nil, fmt.Errorf("%w: no objects", ErrInvalidScene)
	}

	return s, nil
}

type sceneBuilder struct {
	baseDir   string
	materials map[string]material.Material
}

func (b *sceneBuilder) resolve(path string) string {
	if filepath.IsAbs(path) || b.baseDir == "" {
		return path
	}
	return filepath.Join(b.baseDir, path)
}

func (b *sceneBuilder) material(m fileMaterial) (material.Material, error) {
	switch m.Type {
	case "lambertian":
		if m.Texture != nil {
			tex, err := b.texture(*m.Texture)
			if err != nil {
				return nil, err
			}
			return material.NewTexturedLambertian(tex), nil
		}
		if m.Albedo == nil {
			return nil, errors.New("lambertian needs albedo or texture")
		}
		return material.NewLambertian(m.Albedo.vec()), nil
	case "metal":
		if m.Albedo == nil {
			return nil, errors.New("metal needs albedo")
		}
		return material.NewMetal(m.Albedo.vec(), m.Fuzz), nil
	case "dielectric":
		if m.IOR <= 0 {
			return nil, fmt.Errorf("dielectric needs a positive ior, got %g", m.IOR)
		}
		return material.NewDielectric(m.IOR), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", m.Type)
	}
}

func (b *sceneBuilder) texture(t fileTexture) (material.Texture, error) {
	switch t.Type {
	case "constant":
		if t.Color == nil {
			return nil, errors.New("constant texture needs color")
		}
		return material.NewConstantTexture(t.Color.vec()), nil
	case "checker":
		if t.Even == nil || t.Odd == nil {
			return nil, errors.New("checker texture needs even and odd")
		}
		even, err := b.texture(*t.Even)
		if err != nil {
			return nil, fmt.Errorf("even: %w", err)
		}
		odd, err := b.texture(*t.Odd)
		if err != nil {
			return nil, fmt.Errorf("odd: %w", err)
		}
		checker := material.NewCheckerTexture(even, odd)
		if t.Frequency != 0 {
			checker.Frequency = t.Frequency
		}
		return checker, nil
	case "image":
		if t.Path == "" {
			return nil, errors.New("image texture needs path")
		}
		return loaders.LoadTexture(b.resolve(t.Path))
	default:
		return nil, fmt.Errorf("unknown texture type %q", t.Type)
	}
}

func (b *sceneBuilder) object(o fileObject) (geometry.Hittable, error) {
	mat, ok := b.materials[o.Material]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", o.Material)
	}

	switch o.Type {
	case "sphere":
		if o.Center == nil {
			return nil, errors.New("sphere needs center")
		}
		return geometry.NewSphere(o.Center.vec(), o.Radius, mat), nil
	case "moving_sphere":
		if o.Center == nil || o.Center1 == nil {
			return nil, errors.New("moving sphere needs center and center1")
		}
		return geometry.NewMovingSphere(o.Center.vec(), o.Center1.vec(), o.Time0, o.Time1, o.Radius, mat), nil
	case "triangle":
		if len(o.Vertices) != 3 {
			return nil, fmt.Errorf("triangle needs 3 vertices, got %d", len(o.Vertices))
		}
		vertices := make([]core.Vec3, 3)
		for i := range o.Vertices {
			vertices[i] = o.Vertices[i].vec()
		}
		return geometry.NewTriangleMesh(vertices, nil, mat)
	case "mesh":
		if o.Path == "" {
			return nil, errors.New("mesh needs path")
		}
		data, err := loaders.LoadOBJFile(b.resolve(o.Path))
		if err != nil {
			return nil, err
		}
		if o.Transform != nil {
			data.Apply(o.Transform.transform())
		}
		return data.Mesh(mat)
	default:
		return nil, fmt.Errorf("unknown object type %q", o.Type)
	}
}

func (t *fileTransform) transform() core.Transform {
	result := core.IdentityTransform()
	if t.Scale != nil {
		result = result.Then(core.Scale(t.Scale.vec()))
	}
	if t.Rotate != nil {
		result = result.Then(core.Rotate(t.Rotate.Degrees, t.Rotate.Axis.vec()))
	}
	if t.Translate != nil {
		result = result.Then(core.Translate(t.Translate.vec()))
	}
	return result
}
