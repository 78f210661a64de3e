// Command tridim-render draws a scene file into an image without opening a
// window.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/smasonuk/tridim"
	"github.com/smasonuk/tridim/internal/config"
	"github.com/smasonuk/tridim/internal/logger"
	"github.com/smasonuk/tridim/internal/scenefile"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	baseDir := ""
	if flags.Config != "" {
		baseDir = filepath.Dir(flags.Config)
	}
	if err := render(cfg, baseDir); err != nil {
		logger.Error("render failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func render(cfg *config.Config, baseDir string) error {
	store := tridim.NewMeshStore()
	scene, err := scenefile.Build(cfg, store, baseDir)
	if err != nil {
		return err
	}
	defer scene.Release()

	for frame := 0; frame < cfg.Render.Frames; frame++ {
		if frame > 0 {
			for _, entity := range scene.Entities() {
				entity.Rotate(cfg.Render.Spin)
			}
		}

		start := time.Now()
		buffer := scene.Draw()
		stats := scene.LastDrawStats()

		path := FramePath(cfg.Render.Output, frame, cfg.Render.Frames)
		if err := SaveImage(path, buffer); err != nil {
			return err
		}
		logger.Info("frame written",
			zap.String("path", path),
			zap.Duration("took", time.Since(start)),
			zap.Int("faces", stats.Faces),
			zap.Int("pixels", stats.PixelsWritten))
	}

	if cfg.Render.ExportPLY != "" {
		if err := tridim.SavePLY(cfg.Render.ExportPLY, scene.WorldMesh()); err != nil {
			return err
		}
		logger.Info("world mesh exported", zap.String("path", cfg.Render.ExportPLY))
	}
	return nil
}
