package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/config"
	"github.com/Faultbox/isomap/internal/engine/canvas"
	"github.com/Faultbox/isomap/internal/engine/debug"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/engine/viewer"
	"github.com/Faultbox/isomap/internal/game"
	"github.com/Faultbox/isomap/internal/game/entity"
	"github.com/Faultbox/isomap/internal/logger"
)

var gridColor = color.NRGBA{R: 255, G: 255, B: 255, A: 96}

// viewFlags are shared by the commands that place a camera.
type viewFlags struct {
	config string
	width  int
	height int
	x, y   int
}

func (v *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&v.config, "config", "", "config file")
	fs.IntVar(&v.width, "w", 0, "screen width")
	fs.IntVar(&v.height, "h", 0, "screen height")
	fs.IntVar(&v.x, "x", -1, "focus tile x")
	fs.IntVar(&v.y, "y", -1, "focus tile y")
}

// setup loads the config and starts logging on stderr.
func setup(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadScene(cfg *config.Config, mapPath string) (*game.Scene, error) {
	mc := cfg.Map
	mc.Path = mapPath
	f := entity.NewFactory(entity.NewManager(), nil)
	return game.LoadScene(context.Background(), mc, f, logger.Named("assets"))
}

// openView loads the map and places a camera as the flags ask.
func openView(v viewFlags, mapPath string) (*config.Config, *game.Scene, *viewer.Viewer, error) {
	cfg, err := setup(v.config)
	if err != nil {
		return nil, nil, nil, err
	}
	sc, err := loadScene(cfg, mapPath)
	if err != nil {
		return nil, nil, nil, err
	}

	w, h := v.width, v.height
	if w <= 0 {
		w = cfg.Window.Width
	}
	if h <= 0 {
		h = cfg.Window.Height
	}

	opts := viewer.DefaultOptions()
	opts.PhaseModulus = cfg.View.PhaseModulus
	opts.Objects = cfg.View.ShowObjects
	opts.Logger = logger.Named("viewer")
	view := viewer.New(sc.Map, w, h, opts)

	switch {
	case v.x >= 0 && v.y >= 0:
		view.Focus(v.x, v.y)
	case sc.Map.OnTheMap(sc.Start.X, sc.Start.Y):
		view.Focus(sc.Start.X, sc.Start.Y)
	}
	return cfg, sc, view, nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: isotool info <map>")
	}

	cfg, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := loadScene(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	m := sc.Map

	fmt.Printf("Map:       %s\n", fs.Arg(0))
	fmt.Printf("Size:      %dx%d tiles of %dx%d px\n", m.Width, m.Height, m.TileWidth, m.TileHeight)
	if sc.Start.X >= 0 {
		fmt.Printf("Start:     (%d,%d)\n", sc.Start.X, sc.Start.Y)
	}

	fmt.Println("\nTilesets:")
	for _, ts := range m.Catalog.Tilesets() {
		fmt.Printf("  %-20s first=%-5d tiles=%-5d %dx%d\n", ts.Name, ts.FirstGID, ts.Len(), ts.TileWidth, ts.TileHeight)
	}

	fmt.Println("\nLayers (paint order):")
	for _, l := range m.Layers {
		used := 0
		for _, g := range l.Cells() {
			if !g.Empty() {
				used++
			}
		}
		flags := ""
		if !l.Visible {
			flags = " hidden"
		}
		fmt.Printf("  %-20s cells=%-6d offset=(%d,%d)%s\n", l.Name, used, l.OffsetX, l.OffsetY, flags)
		if g := m.Group(l); g != nil {
			fmt.Printf("    objects %-12s count=%d\n", g.Name, g.Len())
		}
	}

	if n := sc.Entities.Count(); n > 0 {
		fmt.Println("\nEntities:")
		for _, k := range []entity.Kind{entity.KindNPC, entity.KindProp, entity.KindPortal} {
			if c := len(sc.Entities.ByKind(k)); c > 0 {
				fmt.Printf("  %-8s %d\n", k, c)
			}
		}
	}

	if len(m.Properties) > 0 {
		fmt.Println("\nProperties:")
		keys := make([]string, 0, len(m.Properties))
		for k := range m.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", k, m.Properties[k])
		}
	}
	return nil
}

func cmdRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var v viewFlags
	v.register(fs)
	out := fs.String("o", "map.png", "output PNG")
	scale := fs.Int("scale", 1, "integer upscale factor")
	grid := fs.Bool("grid", false, "outline every tile")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: isotool render [options] <map>")
	}

	_, sc, view, err := openView(v, fs.Arg(0))
	if err != nil {
		return err
	}
	defer logger.Sync()

	w, h := view.ScreenSize()
	c := canvas.New(w, h)
	view.Render(viewer.Context{Screen: c})

	if *grid {
		drawGrid(c, view, sc.Map)
	}

	img := c.Image()
	if *scale > 1 {
		img = c.Scaled(*scale)
	}
	if err := debug.SavePNG(*out, img); err != nil {
		return err
	}
	logger.Info("rendered",
		zap.String("output", *out),
		zap.Int("draws", c.Draws()),
		zap.Int("lines", view.Lines()),
	)
	fmt.Println(*out)
	return nil
}

// drawGrid outlines every on-map tile.
func drawGrid(c *canvas.Canvas, view *viewer.Viewer, m *tilemap.Map) {
	outline := sprite.Diamond(m.TileWidth, m.TileHeight, gridColor)
	path := make([]tilemap.Point, 0, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			path = append(path, tilemap.Point{X: x, Y: y})
		}
	}
	debug.DrawPath(c, view, nil, outline, path)
}

func cmdPick(args []string) error {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	var v viewFlags
	v.register(fs)
	fs.Parse(args)
	if fs.NArg() < 3 {
		return fmt.Errorf("usage: isotool pick [options] <map> <sx> <sy>")
	}
	sx, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return fmt.Errorf("screen x: %w", err)
	}
	sy, err := strconv.ParseFloat(fs.Arg(2), 64)
	if err != nil {
		return fmt.Errorf("screen y: %w", err)
	}

	_, sc, view, err := openView(v, fs.Arg(0))
	if err != nil {
		return err
	}
	defer logger.Sync()

	x, y := view.MapX(sx, sy), view.MapY(sx, sy)
	ex, ey := view.TilePosition(sx, sy)
	fmt.Printf("Screen:    (%.1f,%.1f)\n", sx, sy)
	fmt.Printf("Tile:      (%d,%d)\n", x, y)
	fmt.Printf("Exact:     (%.3f,%.3f)\n", ex, ey)
	fmt.Printf("Contents:  %s\n", debug.GetTileInfo(sc.Map, x, y))
	return nil
}

func cmdTile(args []string) error {
	fs := flag.NewFlagSet("tile", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file")
	fs.Parse(args)
	if fs.NArg() < 3 {
		return fmt.Errorf("usage: isotool tile <map> <x> <y>")
	}
	x, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("tile x: %w", err)
	}
	y, err := strconv.Atoi(fs.Arg(2))
	if err != nil {
		return fmt.Errorf("tile y: %w", err)
	}

	cfg, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := loadScene(cfg, fs.Arg(0))
	if err != nil {
		return err
	}

	info := debug.GetTileInfo(sc.Map, x, y)
	fmt.Println(info)
	for _, c := range info.Cells {
		fmt.Printf("  %-20s gid=%-6d flags=%s\n", c.Layer, c.GID.Index(), flagString(c.GID))
	}
	return nil
}

func flagString(g tilemap.GID) string {
	var parts []string
	if g.HFlip() {
		parts = append(parts, "h")
	}
	if g.VFlip() {
		parts = append(parts, "v")
	}
	if g.DFlip() {
		parts = append(parts, "d")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "")
}
