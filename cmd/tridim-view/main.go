// Command tridim-view shows a scene file in a window. Dragging with the left
// mouse button turns the camera and model files are reloaded when they
// change on disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/smasonuk/tridim"
	"github.com/smasonuk/tridim/internal/config"
	"github.com/smasonuk/tridim/internal/logger"
	"github.com/smasonuk/tridim/internal/reload"
	"github.com/smasonuk/tridim/internal/scenefile"
)

// Degrees of camera rotation per dragged pixel.
const dragSensitivity = 0.3

type Game struct {
	scene    *tridim.Scene
	spin     tridim.Vertex
	reloader *reload.Reloader
	frame    *ebiten.Image

	isDragging   bool
	lastX, lastY int
}

func (g *Game) Update() error {
	g.reloader.Apply()

	for _, entity := range g.scene.Entities() {
		entity.Rotate(g.spin)
	}

	// Mouse camera control
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.isDragging = true
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if g.isDragging {
		x, y := ebiten.CursorPosition()
		dx := float32(x-g.lastX) * dragSensitivity
		dy := float32(y-g.lastY) * dragSensitivity
		g.scene.Camera().Rotate(tridim.Vertex{dy, 0, dx})
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.isDragging = false
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	buffer := g.scene.Draw()
	g.frame.WritePixels(buffer.Pixels())
	screen.DrawImage(g.frame, nil)

	stats := g.scene.LastDrawStats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f\nfaces: %d (%d skipped)\npixels: %d",
		ebiten.ActualFPS(), stats.Faces, stats.SkippedFaces, stats.PixelsWritten))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.scene.Size()
}

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

	if err := run(cfg, flags.Config); err != nil {
		logger.Error("viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string) error {
	baseDir := ""
	if configPath != "" {
		baseDir = filepath.Dir(configPath)
	}

	store := tridim.NewMeshStore()
	scene, err := scenefile.Build(cfg, store, baseDir)
	if err != nil {
		return err
	}
	defer scene.Release()

	reloader, err := reload.New()
	if err != nil {
		return err
	}
	defer reloader.Close()
	if err := reloader.TrackScene(cfg, scene, baseDir); err != nil {
		return err
	}
	logger.Info("watching model files", zap.Int("files", reloader.Tracked()))

	width, height := scene.Size()
	game := &Game{
		scene:    scene,
		spin:     cfg.Render.Spin,
		reloader: reloader,
		frame:    ebiten.NewImage(width, height),
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("tridim")
	return ebiten.RunGame(game)
}
