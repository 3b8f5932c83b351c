package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// Scene types reported by discovery
const (
	TypeBuiltin = "builtin"
	TypeYAML    = "yaml"
)

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by Load
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "yaml"
	FilePath    string `json:"filePath"`    // Path to the scene file (yaml type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ListBuiltinScenes describes the built-in scenes in name order
func ListBuiltinScenes() []SceneInfo {
	names := BuiltinNames()
	scenes := make([]SceneInfo, 0, len(names))
	for _, name := range names {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        titleCase(name),
			Description: builtins[name].description,
			Group:       builtinGroup,
			Type:        TypeBuiltin,
		})
	}
	return scenes
}

// ListYAMLScenes scans dir for *.yaml and *.yml scene files.
// A missing directory yields an empty list.
func ListYAMLScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata extracts metadata from the leading comment block of a scene file:
//
//	# Scene: Glass Spheres
//	# Description: Three glass spheres
//	# Group: Materials
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       filePath,
		Name:     titleCase(nameWithoutExt),
		Group:    "Scene Files",
		Type:     TypeYAML,
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, fmt.Errorf("failed to read scene metadata: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		key, value, ok := strings.Cut(content, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Scene":
			info.Name = value
		case "Description":
			info.Description = value
		case "Group":
			info.Group = value
		}
	}

	return info, scanner.Err()
}

// ListAllScenes returns built-in scenes and the scene files in dir, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	files, err := ListYAMLScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	allScenes := append(ListBuiltinScenes(), files...)

	groupMap := make(map[string][]SceneInfo)
	for _, info := range allScenes {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if group, ok := groupMap[builtinGroup]; ok {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: group})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// Load resolves a built-in scene name or a path to a YAML scene file
func Load(nameOrPath string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if _, ok := builtins[nameOrPath]; ok {
		return Builtin(nameOrPath, cameraOverrides...)
	}

	ext := strings.ToLower(filepath.Ext(nameOrPath))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, nameOrPath)
	}

	s, err := LoadYAML(nameOrPath)
	if err != nil {
		return nil, err
	}
	s.CameraConfig = mergeCamera(s.CameraConfig, cameraOverrides)
	return s, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
