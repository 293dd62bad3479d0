package game

import (
	"image/color"

	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/game/world"
)

// Demo tile size and catalog indices.
const (
	DemoTileWidth  = 64
	DemoTileHeight = 32

	demoGround = 1
	demoWall   = 2
	demoPath   = 3
)

// DemoMap builds a walled field drawn from procedural tiles, used when no map
// file is configured.
func DemoMap(width, height int) *tilemap.Map {
	m := tilemap.New(width, height, DemoTileWidth, DemoTileHeight)

	ts := tilemap.NewTileset("demo", demoGround, DemoTileWidth, DemoTileHeight)
	ts.AddTile(sprite.Diamond(DemoTileWidth, DemoTileHeight, color.NRGBA{R: 90, G: 160, B: 80, A: 255}))
	ts.AddTile(sprite.Block(DemoTileWidth, DemoTileHeight, DemoTileHeight/2, color.NRGBA{R: 150, G: 150, B: 160, A: 255}))
	ts.AddTile(sprite.Diamond(DemoTileWidth, DemoTileHeight, color.NRGBA{R: 170, G: 140, B: 90, A: 255}))
	m.Catalog.Add(ts)

	ground := m.NewLayer("ground")
	ground.Fill(demoGround)
	for x := 1; x < width-1; x++ {
		ground.Set(x, height/2, demoPath)
	}

	walls := m.NewLayer(world.WallsLayerName)
	for i := 0; i < width; i++ {
		walls.Set(i, 0, demoWall)
		walls.Set(i, height-1, demoWall)
	}
	for i := 0; i < height; i++ {
		walls.Set(0, i, demoWall)
		walls.Set(width-1, i, demoWall)
	}
	// a short interior wall with a gap on the path
	for y := 2; y < height-2; y++ {
		if y != height/2 {
			walls.Set(width/3, y, demoWall)
		}
	}
	return m
}
