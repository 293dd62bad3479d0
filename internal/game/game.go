// Package game runs the interactive map viewer: a window, a GL renderer and
// the session that walks the player around the loaded map.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/config"
	"github.com/Faultbox/isomap/internal/engine/debug"
	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/renderer"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/window"
	"github.com/Faultbox/isomap/internal/game/entity"
)

// Game is the main game instance.
type Game struct {
	cfg      *config.Config
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	arena    *sprite.Arena
	events   *input.Queue
	shots    *debug.ScreenshotCapture
	session  *Session
}

// New opens the window, creates the renderer and loads the configured map.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing game",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	g := &Game{
		cfg:    cfg,
		log:    log,
		events: input.NewQueue(),
		shots:  debug.NewScreenshotCapture("screenshots", "isomap"),
	}

	var err error
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// the GL context must exist before the renderer
	w, h := g.window.Size()
	g.renderer, err = renderer.New(renderer.Config{Width: w, Height: h, Logger: log})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	g.arena = sprite.NewArena(g.renderer, log)

	if err := g.open(ctx, cfg.Map); err != nil {
		g.Close()
		return nil, err
	}

	log.Info("game initialized successfully")
	return g, nil
}

// open loads a map and replaces the running session.
func (g *Game) open(ctx context.Context, mc config.MapConfig) error {
	f := entity.NewFactory(entity.NewManager(), g.arena)
	sc, err := LoadScene(ctx, mc, f, g.log)
	if err != nil {
		return err
	}

	w, h := g.renderer.Size()
	cfg := *g.cfg
	cfg.Map = mc
	s, err := NewSession(sc, &cfg, w, h, SessionOptions{Arena: g.arena, Logger: g.log})
	if err != nil {
		return err
	}
	if g.session != nil {
		// ids restart with each map, so cached sprites must go
		for _, a := range g.session.World.Entities.All() {
			g.arena.Evict(a.ID())
		}
	}
	g.session = s

	title := g.cfg.Window.Title
	if mc.Path != "" {
		title = fmt.Sprintf("%s - %s", title, mc.Path)
	}
	g.window.SetTitle(title)
	return nil
}

// Run drives the frame loop until the window closes or the quit key is
// pressed.
func (g *Game) Run(ctx context.Context) error {
	var frameTime time.Duration
	if g.cfg.Window.FPSLimit > 0 {
		frameTime = time.Second / time.Duration(g.cfg.Window.FPSLimit)
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting game loop")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if quit := g.window.PollEvents(g.events); quit {
			return nil
		}
		for _, ev := range g.events.Events() {
			if ev.Type == input.EventWindowResize {
				g.renderer.Resize(g.window.Size())
			}
			if !g.session.HandleEvent(ev) {
				return nil
			}
		}

		g.session.Update(dt)
		if target, ok := g.session.Travel(); ok {
			mc := g.cfg.Map
			mc.Path = target
			mc.FocusX, mc.FocusY = -1, -1
			if err := g.open(ctx, mc); err != nil {
				g.log.Error("portal target failed to load", zap.String("target", target), zap.Error(err))
			}
		}

		px, py, inside := g.window.Pointer()
		g.session.Render(g.renderer, px, py, inside)
		g.renderer.End()

		if g.session.TakeScreenshot() {
			g.screenshot()
		}

		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			draws, flushes := g.renderer.Stats()
			g.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draws", draws),
				zap.Int("flushes", flushes),
				zap.Int("textures", g.renderer.Textures()),
				zap.Int("lines", g.session.View.Lines()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameTime > 0 {
			if spent := time.Since(now); spent < frameTime {
				time.Sleep(frameTime - spent)
			}
		}
	}
}

func (g *Game) screenshot() {
	path, err := g.shots.Capture(g.renderer.ReadPixels())
	if err != nil {
		g.log.Error("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up game resources.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
