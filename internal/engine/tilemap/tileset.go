package tilemap

import (
	"fmt"
	"image"

	"github.com/Faultbox/isomap/internal/engine/sprite"
)

// Tileset is a contiguous run of tiles starting at FirstGID.
type Tileset struct {
	Name       string
	FirstGID   uint32
	TileWidth  int
	TileHeight int

	// Orientation variants the tileset allows. Variants listed here are
	// prepared at load time; others are still built lazily on demand.
	AllowHFlip bool
	AllowVFlip bool

	tiles []*Tile
}

// NewTileset creates an empty tileset.
func NewTileset(name string, firstGID uint32, tileWidth, tileHeight int) *Tileset {
	return &Tileset{
		Name:       name,
		FirstGID:   firstGID,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
	}
}

// AddTile appends a tile image and returns the new tile.
func (ts *Tileset) AddTile(img *image.NRGBA) *Tile {
	t := NewTile(len(ts.tiles)+1, img)
	ts.tiles = append(ts.tiles, t)
	ts.prepare(t)
	return t
}

// AddSheet cuts count tiles out of a sprite sheet image.
func (ts *Tileset) AddSheet(img image.Image, count int) error {
	frames, err := sprite.Slice(img, ts.TileWidth, ts.TileHeight, count)
	if err != nil {
		return fmt.Errorf("tileset %s: %w", ts.Name, err)
	}
	for _, f := range frames {
		ts.AddTile(f)
	}
	return nil
}

func (ts *Tileset) prepare(t *Tile) {
	if ts.AllowHFlip {
		t.Prepare(OrientFlipH)
	}
	if ts.AllowVFlip {
		t.Prepare(OrientFlipV)
	}
	if ts.AllowHFlip && ts.AllowVFlip {
		t.Prepare(OrientFlipH | OrientFlipV)
	}
}

// Len returns the number of tiles.
func (ts *Tileset) Len() int {
	return len(ts.tiles)
}

// Contains reports whether index falls inside this tileset.
func (ts *Tileset) Contains(index uint32) bool {
	return index >= ts.FirstGID && index < ts.FirstGID+uint32(len(ts.tiles))
}

// Tile returns the tile for a catalog index, or nil.
func (ts *Tileset) Tile(index uint32) *Tile {
	if !ts.Contains(index) {
		return nil
	}
	return ts.tiles[index-ts.FirstGID]
}
