package game

import (
	"fmt"
	"image/color"

	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/config"
	"github.com/Faultbox/isomap/internal/engine/cursor"
	"github.com/Faultbox/isomap/internal/engine/debug"
	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/surface"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/engine/viewer"
	"github.com/Faultbox/isomap/internal/game/entity"
	"github.com/Faultbox/isomap/internal/game/world"
)

// Tiles revealed around the player when fog is enabled.
const sightRadius = 4

var (
	playerColor = color.NRGBA{R: 220, G: 60, B: 50, A: 255}
	cursorColor = color.NRGBA{R: 255, G: 230, B: 80, A: 255}
	hoverColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 160}
	pathColor   = color.NRGBA{R: 80, G: 180, B: 255, A: 200}
)

// Session is one map being viewed: the world, its camera and cursor, and the
// player walking on it. It owns no window and can be driven headless.
type Session struct {
	World  *world.World
	View   *viewer.Viewer
	Mover  *world.MovementController
	Player *entity.Entity

	cfg  *config.Config
	keys input.Bindings
	log  *zap.Logger

	quit       bool
	screenshot bool
	teleport   *tilemap.Point
	travel     string
}

// SessionOptions configure NewSession.
type SessionOptions struct {
	Arena  *sprite.Arena
	Logger *zap.Logger
}

// NewSession builds the world over a loaded scene and places the player at
// the scene's start tile, the configured focus tile or the map centre, in
// that order, moved to the nearest walkable tile.
func NewSession(sc *Scene, cfg *config.Config, screenW, screenH int, opts SessionOptions) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	keys, err := input.ParseBindings(cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("key bindings: %w", err)
	}

	m := sc.Map
	if cfg.Map.Fog {
		m.EnableFog()
	}

	w := world.New(m, sc.Entities, world.Options{Arena: opts.Arena, Logger: log})
	s := &Session{
		World: w,
		cfg:   cfg,
		keys:  keys,
		log:   log,
	}

	start := s.startTile(sc.Start)
	s.Player = entity.New(sc.Entities.NextID(), entity.KindPlayer, "player", 0, 0)
	s.Player.Sprite = entity.MarkerSprite(m.TileWidth/2, m.TileHeight*3/2, playerColor)
	s.Player.PlaceOn(start.X, start.Y)
	w.Spawn(s.Player)
	sc.Entities.SetPlayer(s.Player)
	s.Mover = world.NewMovementController(w, s.Player)

	for _, a := range sc.Entities.ByKind(entity.KindPortal) {
		if p, ok := a.(*entity.Portal); ok && p.OnArrive == nil {
			p.OnArrive = s.enterPortal
		}
	}

	s.reveal()
	s.View = viewer.New(m, screenW, screenH, s.viewerOptions())
	switch c := s.View.Cursor().(type) {
	case *cursor.TileCursor:
		c.SetPosition(m, start.X, start.Y)
	case *cursor.QuarterCursor:
		c.SetPosition(float64(start.X)+0.5, float64(start.Y)+0.5)
	}
	s.View.Focus(start.X, start.Y)

	log.Info("session started",
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Int("entities", sc.Entities.Count()),
		zap.Int("start_x", start.X),
		zap.Int("start_y", start.Y),
	)
	return s, nil
}

func (s *Session) viewerOptions() viewer.Options {
	m := s.World.Map
	opts := viewer.DefaultOptions()
	opts.ScrollMargin = s.cfg.View.ScrollMargin
	opts.ScrollStep = s.cfg.View.ScrollStep
	opts.PhaseModulus = s.cfg.View.PhaseModulus
	opts.Objects = s.cfg.View.ShowObjects
	opts.Logger = s.log

	layer := s.World.Actors().Layer()
	switch s.cfg.View.Cursor {
	case config.CursorTile:
		c := cursor.NewTileCursor(layer, sprite.FromFrames(sprite.Diamond(m.TileWidth, m.TileHeight, cursorColor)), s.keys)
		c.MustBeVisible = s.cfg.Map.Fog
		opts.Cursor = c
	case config.CursorQuarter:
		opts.Cursor = cursor.NewQuarterCursor(layer, sprite.Marker(m.TileWidth/8, m.TileHeight/2, cursorColor), 0, 0)
	}

	if s.cfg.View.ShowHover {
		opts.Hover = sprite.Diamond(m.TileWidth, m.TileHeight, hoverColor)
		marker := sprite.Diamond(m.TileWidth/2, m.TileHeight/2, pathColor)
		opts.PostFX = func(dst surface.Surface) {
			debug.DrawPath(dst, s.View, layer, marker, s.Mover.Path())
		}
	}
	return opts
}

// startTile picks the player's first tile.
func (s *Session) startTile(p tilemap.Point) tilemap.Point {
	m := s.World.Map
	switch {
	case m.OnTheMap(p.X, p.Y):
	case s.cfg.Map.FocusX >= 0 && s.cfg.Map.FocusY >= 0:
		p.X, p.Y = m.Clamp(s.cfg.Map.FocusX, s.cfg.Map.FocusY)
	default:
		p = tilemap.Point{X: m.Width / 2, Y: m.Height / 2}
	}
	return s.nearestWalkable(p)
}

// nearestWalkable searches square rings around p; p itself is returned when
// nothing on the map is walkable.
func (s *Session) nearestWalkable(p tilemap.Point) tilemap.Point {
	m := s.World.Map
	limit := max(m.Width, m.Height)
	for r := 0; r <= limit; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if x, y := p.X+dx, p.Y+dy; s.World.Walkable(x, y) {
					return tilemap.Point{X: x, Y: y}
				}
			}
		}
	}
	return p
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// enterPortal is the default portal hook: same-map portals teleport once the
// current step has finished, others record the requested map.
func (s *Session) enterPortal(p *entity.Portal, by entity.Actor) {
	if by.Base() != s.Player {
		return
	}
	if p.Target != "" {
		s.log.Info("portal to another map", zap.String("portal", p.Name), zap.String("target", p.Target))
		s.travel = p.Target
		return
	}
	if !s.World.Map.OnTheMap(p.Dest.X, p.Dest.Y) {
		return
	}
	dest := p.Dest
	s.teleport = &dest
}

// HandleEvent applies one input event. It reports false once the session
// should end.
func (s *Session) HandleEvent(ev input.Event) bool {
	switch ev.Type {
	case input.EventQuit:
		s.quit = true

	case input.EventWindowResize:
		s.View.Resize(ev.Width, ev.Height)

	case input.EventKeyDown:
		a, ok := s.keys.Match(ev.Key, input.ActionQuit, input.ActionPrintCoords, input.ActionScreenshot, input.ActionCenter)
		if !ok {
			s.View.HandleEvent(ev)
			break
		}
		switch a {
		case input.ActionQuit:
			s.quit = true
		case input.ActionPrintCoords:
			x, y := s.View.MouseTile()
			s.log.Info("tile", zap.Stringer("info", debug.GetTileInfo(s.World.Map, x, y)))
		case input.ActionScreenshot:
			s.screenshot = true
		case input.ActionCenter:
			x, y := s.Player.TilePos()
			s.View.Focus(x, y)
		}

	case input.EventMouseDown:
		s.View.HandleEvent(input.MouseMove(ev.MouseX, ev.MouseY))
		sx, sy := float64(ev.MouseX), float64(ev.MouseY)
		x, y := s.View.MapX(sx, sy), s.View.MapY(sx, sy)
		if !s.World.Map.IsVisible(x, y) {
			break
		}
		if path := s.Mover.MoveTo(x, y); path == nil {
			s.log.Debug("no path", zap.Int("x", x), zap.Int("y", y))
		}

	default:
		s.View.HandleEvent(ev)
	}
	return !s.quit
}

// Update advances entities by dt seconds.
func (s *Session) Update(dt float64) {
	s.World.Update(dt)
	s.Mover.Update()
	if s.teleport != nil {
		s.Mover.ClearPath()
		s.Player.PlaceOn(s.teleport.X, s.teleport.Y)
		s.teleport = nil
	}
	s.reveal()
}

// reveal uncovers the tiles around the player.
func (s *Session) reveal() {
	if !s.cfg.Map.Fog {
		return
	}
	px, py := s.Player.TilePos()
	for y := py - sightRadius; y <= py+sightRadius; y++ {
		for x := px - sightRadius; x <= px+sightRadius; x++ {
			s.World.Map.Reveal(x, y)
		}
	}
}

// Render paints one frame. The pointer position drives edge scrolling.
func (s *Session) Render(dst surface.Surface, pointerX, pointerY int, hasPointer bool) {
	s.View.Render(viewer.Context{
		Screen:     dst,
		PointerX:   float64(pointerX),
		PointerY:   float64(pointerY),
		HasPointer: hasPointer,
	})
}

// TakeScreenshot reports and clears a pending screenshot request.
func (s *Session) TakeScreenshot() bool {
	req := s.screenshot
	s.screenshot = false
	return req
}

// Travel reports and clears a pending request to open another map.
func (s *Session) Travel() (string, bool) {
	t := s.travel
	s.travel = ""
	return t, t != ""
}

// Done reports whether the session was asked to quit.
func (s *Session) Done() bool {
	return s.quit
}
