package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
	"github.com/df07/go-tile-raytracer/web/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "raytracer",
		Short:        "Tile ray tracer",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "TOML config file")
	root.PersistentFlags().String("scenes-dir", "", "directory with YAML scene files (default \"scenes\")")

	root.AddCommand(newRenderCmd(), newScenesCmd(), newServeCmd(), newConfigCmd())
	return root
}

// loadConfig reads --config when given and applies the shared flags
func loadConfig(cmd *cobra.Command) (config.File, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("scenes-dir") {
		cfg.ScenesDir, _ = cmd.Flags().GetString("scenes-dir")
	}
	return cfg, nil
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Long: "Render a built-in scene, a scene file by name from the scenes directory, or a scene file by path.\n" +
			"Output goes to output/<scene>/render_<timestamp>.<format> unless --output is set.",
		Args: cobra.NoArgs,
		RunE: runRender,
	}

	flags := cmd.Flags()
	flags.StringP("scene", "s", "", "scene name or path to a YAML scene file")
	flags.IntP("width", "W", 0, "image width (0 = scene default)")
	flags.IntP("height", "H", 0, "image height (0 = scene default)")
	flags.IntP("samples", "n", 0, "samples per pixel (0 = scene default)")
	flags.Int("depth", 0, "maximum ray depth (0 = scene default)")
	flags.IntP("workers", "j", 0, "worker count (0 = one per CPU)")
	flags.Int64("seed", 0, "random seed (default: the scene's seed)")
	flags.StringP("output", "o", "", "output file")
	flags.StringP("format", "f", "", "output format: "+strings.Join(renderer.Formats, ", "))
	flags.BoolP("quiet", "q", false, "only log errors")
	return cmd
}

// applyRenderFlags overrides config values with the flags the user set
func applyRenderFlags(cmd *cobra.Command, cfg *config.File) {
	flags := cmd.Flags()
	if flags.Changed("scene") {
		cfg.Scene, _ = flags.GetString("scene")
	}
	if flags.Changed("width") {
		cfg.Render.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.Render.Height, _ = flags.GetInt("height")
	}
	if flags.Changed("samples") {
		cfg.Render.SamplesPerPixel, _ = flags.GetInt("samples")
	}
	if flags.Changed("depth") {
		cfg.Render.MaxDepth, _ = flags.GetInt("depth")
	}
	if flags.Changed("workers") {
		cfg.Render.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		cfg.Render.Seed = &seed
	}
	if flags.Changed("output") {
		cfg.Output.Path, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRenderFlags(cmd, &cfg)

	logger := core.NewDefaultLogger()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		logger = core.NewNopLogger()
	}

	sceneObj, err := createScene(cfg.Scene, cfg.ScenesDir, cfg.CameraConfig())
	if err != nil {
		return err
	}

	filename := cfg.Output.Path
	if filename == "" {
		outputDir := createOutputDir(cfg.Scene)
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", timestamp, outputFormat(cfg.Output.Format)))
	}

	overrides := cfg.RenderConfig()
	overrides.Logger = logger
	overrides.Progress = func(done, total int) {
		logger.Printf("Progress: %d/%d blocks\n", done, total)
	}

	logger.Printf("Rendering scene %q...\n", sceneObj.Name)
	fb, stats, err := sceneObj.Render(cmd.Context(), overrides)
	if err != nil {
		return err
	}

	if err := saveImage(filename, fb, cfg.Output.Format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s (%s)\n", filename, stats)
	fmt.Fprintln(cmd.OutOrStdout(), filename)
	return nil
}

// saveImage writes fb to filename, in format when given, otherwise by extension
func saveImage(filename string, fb *renderer.Framebuffer, format string) error {
	if format == "" {
		return renderer.SaveFile(filename, fb)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	if err := renderer.Encode(file, fb, format); err != nil {
		file.Close()
		os.Remove(filename)
		return err
	}
	return file.Close()
}

func outputFormat(format string) string {
	if format == "" {
		return "png"
	}
	return strings.ToLower(format)
}

// createScene resolves a built-in scene, a scene file path, or a scene file name in scenesDir
func createScene(sceneType, scenesDir string, camera renderer.CameraConfig) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, errors.New("no scene given")
	}

	sceneObj, err := scene.Load(sceneType, camera)
	if err == nil {
		return sceneObj, nil
	}
	if !errors.Is(err, scene.ErrUnknownScene) {
		return nil, err
	}

	if path := sceneFilePath(sceneType, scenesDir); path != "" {
		return scene.Load(path, camera)
	}
	return nil, err
}

// sceneFilePath finds <scenesDir>/<name>.yaml or .yml, or returns ""
func sceneFilePath(name, scenesDir string) string {
	if scenesDir == "" || strings.ContainsAny(name, `/\`) {
		return ""
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(scenesDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// createOutputDir names the output directory for a scene: output/<scene name>
func createOutputDir(sceneType string) string {
	base := filepath.Base(sceneType)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "scene"
	}
	return filepath.Join("output", base)
}

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scenes and scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			response, err := scene.ListAllScenes(cfg.ScenesDir)
			if err != nil {
				return err
			}
			printScenes(cmd.OutOrStdout(), response)
			return nil
		},
	}
}

func printScenes(w io.Writer, response scene.ScenesResponse) {
	for i, group := range response.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			if info.Description != "" {
				fmt.Fprintf(w, "  %-24s %s\n", info.ID, info.Description)
			} else {
				fmt.Fprintf(w, "  %s\n", info.ID)
			}
		}
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered previews over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}

			logger := core.NewDefaultLogger()
			logger.Printf("Visit http://localhost:%d/render?scene=default to render\n", cfg.Server.Port)
			webServer := server.NewServer(server.Options{
				Port:      cfg.Server.Port,
				ScenesDir: cfg.ScenesDir,
				Logger:    logger,
			})
			return webServer.Start(cmd.Context())
		},
	}
	cmd.Flags().IntP("port", "p", 8080, "port to serve on")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
