package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	UV           [2]float64             `json:"uv"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

// extractMaterialInfo extracts material parameters with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if mat == nil {
		return "none", properties
	}

	switch m := mat.(type) {
	case *material.Lambertian:
		textureType, textureProps := extractTextureInfo(m.Albedo)
		properties["texture"] = map[string]interface{}{
			"type":       textureType,
			"properties": textureProps,
		}
	case *material.Metal:
		properties["albedo"] = vecJSON(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}
	return mat.Kind().String(), properties
}

// extractTextureInfo describes a texture and, for checkers, both of its halves
func extractTextureInfo(tex material.Texture) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch t := tex.(type) {
	case *material.ConstantTexture:
		properties["color"] = hexColor(t.Color)
		properties["albedo"] = vecJSON(t.Color)
		return "constant", properties
	case *material.CheckerTexture:
		evenType, evenProps := extractTextureInfo(t.Even)
		oddType, oddProps := extractTextureInfo(t.Odd)
		properties["even"] = map[string]interface{}{"type": evenType, "properties": evenProps}
		properties["odd"] = map[string]interface{}{"type": oddType, "properties": oddProps}
		properties["frequency"] = t.Frequency
		return "checker", properties
	case *material.ImageTexture:
		properties["width"] = t.Width
		properties["height"] = t.Height
		return "image", properties
	default:
		return "unknown", properties
	}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// inspectPixel casts a ray through the center of pixel (x, y), row 0 at the top,
// and returns the first hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (material.HitRecord, bool, error) {
	bvh, err := sceneObj.Compile()
	if err != nil {
		return material.HitRecord{}, false, err
	}

	// Fixed seed so the lens sample is the same on every request
	sampler := core.NewSeededSampler(0)
	camera := sceneObj.Camera(width, height)
	u := (float64(pixelX) + 0.5) / float64(width)
	v := 1 - (float64(pixelY)+0.5)/float64(height)
	ray := camera.GetRay(u, v, sampler)

	hit, ok := bvh.Hit(ray, 0.001, math.Inf(1))
	return hit, ok, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Unset sizes fall back to the scene's render size
	config := sceneObj.Config(req.renderConfig(nil, nil))

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= config.Width || pixelY < 0 || pixelY >= config.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	hit, ok, err := inspectPixel(sceneObj, config.Width, config.Height, pixelX, pixelY)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        vecJSON(hit.Point),
		Normal:       vecJSON(hit.Normal),
		UV:           [2]float64{hit.UV.X, hit.UV.Y},
		Distance:     hit.T,
		Properties:   materialProps,
	})
}
