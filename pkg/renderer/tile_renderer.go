package renderer

import (
	"context"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
)

// BlockPixel is one finished pixel, addressed by its flat index row*width + col
type BlockPixel struct {
	Index int
	Color [3]uint8
}

// BlockJob holds the output of one worker for a contiguous range of rows
type BlockJob struct {
	RowStart        int
	RowEnd          int
	Width           int
	SamplesPerPixel int
	Pixels          []BlockPixel

	rays int64
}

// TileRenderer renders row blocks of an image. Each worker owns its own
// TileRenderer because the sampler is not safe for concurrent use.
type TileRenderer struct {
	scene      geometry.Hittable
	camera     *Camera
	integrator integrator.Integrator
	width      int
	height     int
	spp        int
	sampler    core.Sampler
}

// NewTileRenderer creates a tile renderer drawing random numbers from sampler
func NewTileRenderer(scene geometry.Hittable, camera *Camera, config RenderConfig, integrator integrator.Integrator, sampler core.Sampler) *TileRenderer {
	return &TileRenderer{
		scene:      scene,
		camera:     camera,
		integrator: integrator,
		width:      config.Width,
		height:     config.Height,
		spp:        config.SamplesPerPixel,
		sampler:    sampler,
	}
}

// RenderRows renders every pixel in rows, checking ctx between rows
func (tr *TileRenderer) RenderRows(ctx context.Context, rows RowRange) (*BlockJob, error) {
	block := &BlockJob{
		RowStart:        rows.Start,
		RowEnd:          rows.End,
		Width:           tr.width,
		SamplesPerPixel: tr.spp,
		Pixels:          make([]BlockPixel, 0, rows.Len()*tr.width),
	}

	for row := rows.Start; row < rows.End; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Row 0 is the top of the image, viewport t grows upward
		flipped := tr.height - 1 - row
		for col := 0; col < tr.width; col++ {
			color, rays := tr.samplePixel(col, flipped)
			block.rays += int64(rays)
			block.Pixels = append(block.Pixels, BlockPixel{
				Index: row*tr.width + col,
				Color: Quantize(color),
			})
		}
	}

	return block, nil
}

// samplePixel averages spp jittered camera rays through pixel (i, j), j counted from the bottom
func (tr *TileRenderer) samplePixel(i, j int) (core.Vec3, int) {
	colorAccum := core.Vec3{}
	rays := 0

	for sample := 0; sample < tr.spp; sample++ {
		jitter := tr.sampler.Get2D()
		s := (float64(i) + jitter.X) / float64(tr.width)
		t := (float64(j) + jitter.Y) / float64(tr.height)

		ray := tr.camera.GetRay(s, t, tr.sampler)
		color, n := tr.integrator.RayColor(ray, tr.scene, tr.sampler)
		colorAccum = colorAccum.Add(color)
		rays += n
	}

	return colorAccum.Multiply(1.0 / float64(tr.spp)), rays
}
