package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/pkg/formats"
)

// ErrUnknownMapFormat is returned for map files that are neither Tiled JSON nor XML.
var ErrUnknownMapFormat = errors.New("unknown map file format")

// ReferenceLayerName names the empty layer inserted under object groups that
// have no tile layer of their own.
const ReferenceLayerName = "reference"

// ObjectFunc builds a placeable from a map object at map position (x, y).
// Returning nil skips the object.
type ObjectFunc func(ob formats.TiledObject, x, y float64) (tilemap.Placeable, error)

// MapOptions tune LoadMap.
type MapOptions struct {
	// Objects overrides how map objects become placeables. By default objects
	// with a tile become tilemap.TileObjects and the rest are skipped.
	Objects ObjectFunc

	// Workers bounds concurrent tileset decoding. Zero uses one per CPU.
	Workers int
}

// LoadMap reads a Tiled map (.tmj/.json or .tmx/.xml) with its tilesets and
// sheet images, and builds a validated tilemap. Paths inside the map resolve
// relative to the map file.
func (m *Manager) LoadMap(ctx context.Context, mapPath string, opts MapOptions) (*tilemap.Map, error) {
	data, err := m.Load(mapPath)
	if err != nil {
		return nil, err
	}

	var tm *formats.TiledMap
	switch ext := strings.ToLower(path.Ext(mapPath)); ext {
	case ".tmj", ".json":
		tm, err = formats.ParseTMJ(data)
	case ".tmx", ".xml":
		tm, err = formats.ParseTMX(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMapFormat, mapPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapPath, err)
	}

	dir := path.Dir(mapPath)
	if err := m.resolveTilesets(tm, dir); err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapPath, err)
	}

	tilesets, err := m.buildTilesets(ctx, tm, dir, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapPath, err)
	}

	out, err := buildMap(tm, tilesets, opts.Objects)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapPath, err)
	}

	m.log.Info("map loaded",
		zap.String("path", mapPath),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int("layers", len(out.Layers)),
		zap.Int("tilesets", len(tilesets)),
	)
	return out, nil
}

// resolveTilesets replaces external tileset references with the parsed files.
// Image paths inside an external tileset are rebased onto the map directory.
func (m *Manager) resolveTilesets(tm *formats.TiledMap, dir string) error {
	for _, ts := range tm.ExternalTilesets() {
		src := path.Join(dir, ts.Source)
		data, err := m.Load(src)
		if err != nil {
			return err
		}

		var ext *formats.TiledTileset
		switch strings.ToLower(path.Ext(src)) {
		case ".tsj", ".json":
			ext, err = formats.ParseTSJ(data)
		case ".tsx", ".xml":
			ext, err = formats.ParseTSX(data)
		default:
			return fmt.Errorf("%w: tileset %s", ErrUnknownMapFormat, src)
		}
		if err != nil {
			return fmt.Errorf("tileset %s: %w", src, err)
		}

		if ext.Image != "" {
			ext.Image = path.Join(path.Dir(ts.Source), ext.Image)
		}
		ts.Resolve(ext)
	}
	return nil
}

// buildTilesets decodes and slices every tileset sheet concurrently.
func (m *Manager) buildTilesets(ctx context.Context, tm *formats.TiledMap, dir string, workers int) ([]*tilemap.Tileset, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]*tilemap.Tileset, len(tm.Tilesets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range tm.Tilesets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := src.Validate(); err != nil {
				return err
			}

			img, err := m.LoadImage(path.Join(dir, src.Image))
			if err != nil {
				return fmt.Errorf("tileset %s: %w", src.Name, err)
			}
			key, ok, err := src.ColorKey()
			if err != nil {
				return err
			}
			if ok {
				img = ApplyColorKey(img, key)
			}

			ts := tilemap.NewTileset(src.Name, src.FirstGID, src.TileWidth, src.TileHeight)
			ts.AllowHFlip = src.HFlip
			ts.AllowVFlip = src.VFlip
			if err := ts.AddSheet(img, src.TileCount); err != nil {
				return err
			}
			out[i] = ts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildMap converts the parsed file into a tilemap. Each object group hangs
// from the tile layer before it; a group with no layer of its own gets an
// empty, invisible reference layer sharing the previous layer's offsets.
func buildMap(tm *formats.TiledMap, tilesets []*tilemap.Tileset, objects ObjectFunc) (*tilemap.Map, error) {
	if objects == nil {
		objects = TileObjects
	}

	out := tilemap.New(tm.Width, tm.Height, tm.TileWidth, tm.TileHeight)
	for _, ts := range tilesets {
		out.Catalog.Add(ts)
	}
	for _, p := range tm.Properties {
		out.Properties[p.Name] = p.Value
	}

	for _, tl := range tm.Layers {
		switch {
		case tl.IsTiles():
			cells := make([]tilemap.GID, len(tl.Cells))
			for i, c := range tl.Cells {
				cells[i] = tilemap.GID(c)
			}
			l, err := tilemap.NewLayerFromCells(tl.Name, tl.Width, tl.Height, cells)
			if err != nil {
				return nil, err
			}
			l.OffsetX, l.OffsetY = int(tl.OffsetX), int(tl.OffsetY)
			l.Visible = tl.Visible
			out.AddLayer(l)

		case tl.IsObjects():
			ref := out.LastLayer()
			if ref == nil || out.Group(ref) != nil {
				empty := tilemap.EmptyLayer(ReferenceLayerName, tm.Width, tm.Height)
				if ref != nil {
					empty.OffsetX, empty.OffsetY = ref.OffsetX, ref.OffsetY
				}
				out.AddLayer(empty)
				ref = empty
			}

			group := tilemap.NewObjectGroup(tl.Name, int(tl.OffsetX), int(tl.OffsetY))
			group.Visible = tl.Visible
			for _, ob := range tl.Objects {
				x, y := ob.MapPosition(tm.TileHeight)
				p, err := objects(ob, x, y)
				if err != nil {
					return nil, fmt.Errorf("object %d (%s) in %q: %w", ob.ID, ob.Name, tl.Name, err)
				}
				if p != nil {
					group.Add(p)
				}
			}
			out.Attach(ref, group)
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// TileObjects is the default ObjectFunc: objects carrying a tile become
// tilemap.TileObjects, everything else is dropped.
func TileObjects(ob formats.TiledObject, x, y float64) (tilemap.Placeable, error) {
	if ob.GID == 0 {
		return nil, nil
	}
	return &tilemap.TileObject{
		Name:    ob.Name,
		Type:    ob.Type,
		X:       x,
		Y:       y,
		GID:     tilemap.GID(ob.GID),
		Visible: ob.Visible,
	}, nil
}
