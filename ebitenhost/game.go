// Package ebitenhost drives a scene.Scene from an Ebitengine game loop.
//
// Ebitengine calls Update at a fixed tick rate and Draw once per rendered
// frame. Game maps the first onto Scene.PhysicsProcess and the second onto
// Scene.Process, so an App attached to the scene sees both cadences the way
// it would inside a real engine.
package ebitenhost

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/grove/native"
	"github.com/phanxgames/grove/scene"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// TPS is the physics tick rate. Zero keeps Ebitengine's default of 60.
	TPS int
	// ShowFPS draws the FPS/TPS overlay in the top-left corner.
	ShowFPS bool
}

// Game implements ebiten.Game over a scene.
type Game struct {
	scene  *scene.Scene
	width  int
	height int

	// OnUpdate runs after each physics frame. Returning an error stops the
	// game loop.
	OnUpdate func() error

	background color.Color
	nodeColor  color.Color
	bodyColor  color.Color

	lastDraw time.Time
	now      func() time.Time

	showFPS   bool
	fpsImg    *ebiten.Image
	fpsElapse float64
}

// NewGame creates a Game that drives s with a logical screen of w by h.
func NewGame(s *scene.Scene, w, h int) *Game {
	return &Game{
		scene:      s,
		width:      w,
		height:     h,
		background: color.RGBA{R: 0x14, G: 0x10, B: 0x1e, A: 0xff},
		nodeColor:  color.RGBA{R: 0x6c, G: 0xc4, B: 0xff, A: 0xff},
		bodyColor:  color.RGBA{R: 0xff, G: 0xb0, B: 0x40, A: 0xff},
		now:        time.Now,
	}
}

// Scene returns the driven scene.
func (g *Game) Scene() *scene.Scene { return g.scene }

// Update advances one physics frame.
func (g *Game) Update() error {
	g.scene.PhysicsProcess(1 / float64(ebiten.TPS()))
	if g.OnUpdate != nil {
		return g.OnUpdate()
	}
	return nil
}

// Draw advances one visual frame with the wall time since the previous
// Draw, then renders every 2D node as a small square at its world position.
func (g *Game) Draw(screen *ebiten.Image) {
	now := g.now()
	dt := 0.0
	if !g.lastDraw.IsZero() {
		dt = now.Sub(g.lastDraw).Seconds()
	}
	g.lastDraw = now
	g.scene.Process(dt)

	screen.Fill(g.background)
	g.scene.Walk(func(nn native.Node) bool {
		n, ok := nn.(*scene.Node)
		if !ok || !n.IsClass(native.ClassNode2D) {
			return true
		}
		m := n.WorldTransform()
		clr := g.nodeColor
		if n.IsClass(native.ClassPhysicsBody2D) || n.IsClass(native.ClassArea2D) {
			clr = g.bodyColor
		}
		vector.DrawFilledRect(screen, float32(m[4])-4, float32(m[5])-4, 8, 8, clr, false)
		return true
	})

	if g.showFPS {
		g.drawFPS(screen, dt)
	}
}

// drawFPS refreshes the overlay every half second.
func (g *Game) drawFPS(screen *ebiten.Image, dt float64) {
	if g.fpsImg == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		g.fpsImg = ebiten.NewImage(100, 32)
		g.fpsElapse = 0.5
	}
	g.fpsElapse += dt
	if g.fpsElapse >= 0.5 {
		g.fpsElapse = 0
		g.fpsImg.Clear()
		g.fpsImg.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(g.fpsImg, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(g.fpsImg, nil)
}

// Layout returns the fixed logical screen size.
func (g *Game) Layout(int, int) (int, int) {
	return g.width, g.height
}

// Run opens a window and drives s until the window closes or onUpdate
// returns an error. ebiten.Termination is reported as a clean exit.
func Run(s *scene.Scene, cfg RunConfig, onUpdate func() error) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("ebitenhost: invalid screen size %dx%d", cfg.Width, cfg.Height)
	}
	g := NewGame(s, cfg.Width, cfg.Height)
	g.OnUpdate = onUpdate
	g.showFPS = cfg.ShowFPS

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
