package geometry

// CompileScene flattens lists and meshes into individual primitives and builds
// a BVH over them for the shutter interval [t0, t1].
func CompileScene(primitives []Hittable, t0, t1 float64) (*BVH, error) {
	flat := make([]Hittable, 0, len(primitives))
	for _, primitive := range primitives {
		flat = appendFlattened(flat, primitive)
	}

	if len(flat) == 0 {
		return nil, ErrEmptyScene
	}
	return NewBVH(flat, t0, t1)
}

func appendFlattened(dst []Hittable, h Hittable) []Hittable {
	switch v := h.(type) {
	case *List:
		for _, object := range v.Objects {
			dst = appendFlattened(dst, object)
		}
		return dst
	case *TriangleMesh:
		return append(dst, v.Triangles()...)
	case nil:
		return dst
	default:
		return append(dst, h)
	}
}
