package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/pkg/formats"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: uint8(x), A: 255})
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestManagerLoadPriority(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(fstest.MapFS{
		"a.txt": {Data: []byte("base")},
		"b.txt": {Data: []byte("only base")},
	})
	m.AddFS(fstest.MapFS{
		"a.txt": {Data: []byte("patch")},
	})

	data, err := m.Load("a.txt")
	if err != nil || string(data) != "patch" {
		t.Errorf("expected later source to win, got %q %v", data, err)
	}
	data, err = m.Load("b.txt")
	if err != nil || string(data) != "only base" {
		t.Errorf("expected fallback to earlier source, got %q %v", data, err)
	}

	if _, err := m.Load("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCache(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(fstest.MapFS{"a.txt": {Data: []byte("x")}})

	m.Load("a.txt")
	m.Load("a.txt")

	hits, misses := m.cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
	if m.cache.Len() != 1 {
		t.Errorf("expected 1 cached file, got %d", m.cache.Len())
	}

	m.Close()
	if m.cache.Len() != 0 {
		t.Error("expected Close to clear the cache")
	}
	if _, err := m.Load("a.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no sources after Close, got %v", err)
	}
}

func TestAddDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil)
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if data, err := m.Load("hello.txt"); err != nil || string(data) != "hi" {
		t.Errorf("expected file from dir, got %q %v", data, err)
	}

	if err := m.AddDir(filepath.Join(dir, "hello.txt")); err == nil {
		t.Error("expected error adding a file as a dir")
	}
	if err := m.AddDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error adding a missing dir")
	}
}

func TestLoadImage(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(fstest.MapFS{
		"sheet.png": {Data: encodePNG(t, 8, 4)},
		"junk.png":  {Data: []byte("not an image")},
	})

	img, err := m.LoadImage("sheet.png")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Rect.Dx() != 8 || img.Rect.Dy() != 4 {
		t.Errorf("expected 8x4, got %v", img.Rect)
	}
	if got := img.NRGBAAt(5, 0); got.R != 5 || got.A != 255 {
		t.Errorf("unexpected pixel %v", got)
	}

	again, _ := m.LoadImage("sheet.png")
	if again != img {
		t.Error("expected cached image to be shared")
	}

	if _, err := m.LoadImage("junk.png"); err == nil {
		t.Error("expected decode error")
	}
}

const testTMJ = `{
  "width": 4, "height": 3, "tilewidth": 64, "tileheight": 32, "orientation": "isometric",
  "properties": [{"name": "title", "type": "string", "value": "Test"}],
  "tilesets": [
    {"firstgid": 1, "name": "ground", "tilewidth": 64, "tileheight": 32, "tilecount": 4,
     "columns": 2, "image": "img/ground.png", "transformations": {"hflip": true}},
    {"firstgid": 5, "source": "sets/walls.tsj"}
  ],
  "layers": [
    {"type": "objectgroup", "name": "markers", "objects": [
      {"id": 1, "name": "start", "x": 48, "y": 48}
    ]},
    {"type": "tilelayer", "name": "ground", "width": 4, "height": 3,
     "data": [1, 2, 3, 4, 1, 2, 3, 4, 2147483649, 0, 0, 0]},
    {"type": "objectgroup", "name": "props", "offsety": -4, "objects": [
      {"id": 2, "name": "pillar", "type": "prop", "x": 80, "y": 48, "gid": 5},
      {"id": 3, "name": "hidden", "x": 32, "y": 32, "gid": 6, "visible": false}
    ]},
    {"type": "objectgroup", "name": "extra", "objects": []},
    {"type": "tilelayer", "name": "walls", "width": 4, "height": 3, "offsety": -32,
     "data": [0, 0, 0, 0, 0, 5, 6, 0, 0, 0, 0, 0]}
  ]
}`

const testTSJ = `{"name": "walls", "tilewidth": 64, "tileheight": 64, "tilecount": 2,
  "columns": 2, "image": "walls.png"}`

func mapFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"maps/town.tmj":           {Data: []byte(testTMJ)},
		"maps/img/ground.png":     {Data: encodePNG(t, 128, 64)},
		"maps/sets/walls.tsj":     {Data: []byte(testTSJ)},
		"maps/sets/walls.png":     {Data: encodePNG(t, 128, 64)},
		"maps/broken.tmj":         {Data: []byte(`{"layers": [{"type": "tilelayer", "width": 2, "height": 2, "data": [1]}]}`)},
		"maps/noimage.tmj":        {Data: []byte(`{"width": 1, "height": 1, "tilewidth": 64, "tileheight": 32, "tilesets": [{"firstgid": 1, "name": "x", "tilewidth": 64, "tileheight": 32, "tilecount": 1, "image": "missing.png"}], "layers": [{"type": "tilelayer", "width": 1, "height": 1, "data": [1]}]}`)},
		"maps/town.txt":           {Data: []byte("?")},
		"maps/xml/town.tmx":       {Data: []byte(testTMX)},
		"maps/xml/ground.png":     {Data: encodePNG(t, 128, 64)},
		"maps/xml/sets/walls.tsx": {Data: []byte(testTSX)},
		"maps/xml/sets/walls.png": {Data: encodePNG(t, 128, 64)},
	}
}

func TestLoadMapTMJ(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(mapFS(t))

	tm, err := m.LoadMap(context.Background(), "maps/town.tmj", MapOptions{Workers: 1})
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	if tm.Width != 4 || tm.Height != 3 || tm.TileWidth != 64 || tm.TileHeight != 32 {
		t.Errorf("unexpected map size %dx%d tiles %dx%d", tm.Width, tm.Height, tm.TileWidth, tm.TileHeight)
	}
	if tm.Properties["title"] != "Test" {
		t.Errorf("expected title property, got %v", tm.Properties)
	}

	var names []string
	for _, l := range tm.Layers {
		names = append(names, l.Name)
	}
	want := []string{ReferenceLayerName, "ground", ReferenceLayerName, "walls"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("layers mismatch (-want +got):\n%s", diff)
	}

	if tm.Layers[0].Visible || tm.Layers[2].Visible {
		t.Error("expected reference layers invisible")
	}
	if tm.Layers[3].OffsetY != -32 {
		t.Errorf("expected walls offset -32, got %d", tm.Layers[3].OffsetY)
	}
	if g := tm.Layers[1].Get(0, 2); g != 0x80000001 {
		t.Errorf("expected flipped gid at (0,2), got %#x", uint32(g))
	}

	if n := len(tm.Catalog.Tilesets()); n != 2 {
		t.Fatalf("expected 2 tilesets, got %d", n)
	}
	if tm.Catalog.Len() != 6 {
		t.Errorf("expected 6 tiles, got %d", tm.Catalog.Len())
	}
	if tile := tm.Catalog.Tile(6); tile == nil || tile.Image().Rect.Dy() != 64 {
		t.Error("expected external tileset tiles of height 64")
	}
	if tile := tm.Catalog.Tile(4); tile == nil || tile.Image().Rect.Dx() != 64 {
		t.Error("expected four ground tiles")
	}

	markers := tm.Group(tm.Layers[0])
	if markers == nil || markers.Name != "markers" || markers.Len() != 0 {
		t.Errorf("expected empty markers group on first reference layer, got %+v", markers)
	}

	props := tm.Group(tm.Layers[1])
	if props == nil || props.Len() != 2 || props.OffsetY != -4 {
		t.Fatalf("unexpected props group %+v", props)
	}
	pillar := props.Contents()[0].(*tilemap.TileObject)
	wantPillar := &tilemap.TileObject{Name: "pillar", Type: "prop", X: 1.5, Y: 0.5, GID: 5, Visible: true}
	if diff := cmp.Diff(wantPillar, pillar); diff != "" {
		t.Errorf("pillar mismatch (-want +got):\n%s", diff)
	}
	if props.Contents()[1].IsVisible() {
		t.Error("expected hidden object to stay hidden")
	}

	if extra := tm.Group(tm.Layers[2]); extra == nil || extra.Name != "extra" {
		t.Error("expected second group on its own reference layer")
	}
}

func TestLoadMapCustomObjects(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(mapFS(t))

	var seen []string
	opts := MapOptions{Objects: func(ob formats.TiledObject, x, y float64) (tilemap.Placeable, error) {
		seen = append(seen, ob.Name)
		if ob.Name == "start" {
			return &tilemap.TileObject{Name: "start", X: x, Y: y, Visible: true}, nil
		}
		return nil, nil
	}}

	tm, err := m.LoadMap(context.Background(), "maps/town.tmj", opts)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if diff := cmp.Diff([]string{"start", "pillar", "hidden"}, seen); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}

	markers := tm.Group(tm.Layers[0])
	if markers.Len() != 1 {
		t.Fatalf("expected start marker, got %d objects", markers.Len())
	}
	if x, y := markers.Contents()[0].Position(); x != 0.5 || y != 0.5 {
		t.Errorf("expected start at (0.5,0.5), got (%v,%v)", x, y)
	}
	if tm.Group(tm.Layers[1]).Len() != 0 {
		t.Error("expected skipped objects left out")
	}

	boom := errors.New("boom")
	opts.Objects = func(formats.TiledObject, float64, float64) (tilemap.Placeable, error) {
		return nil, boom
	}
	if _, err := m.LoadMap(context.Background(), "maps/town.tmj", opts); !errors.Is(err, boom) {
		t.Errorf("expected object error, got %v", err)
	}
}

func TestLoadMapErrors(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(mapFS(t))
	ctx := context.Background()

	if _, err := m.LoadMap(ctx, "maps/missing.tmj", MapOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.LoadMap(ctx, "maps/town.txt", MapOptions{}); !errors.Is(err, ErrUnknownMapFormat) {
		t.Errorf("expected ErrUnknownMapFormat, got %v", err)
	}
	if _, err := m.LoadMap(ctx, "maps/broken.tmj", MapOptions{}); !errors.Is(err, formats.ErrLayerSize) {
		t.Errorf("expected ErrLayerSize, got %v", err)
	}
	if _, err := m.LoadMap(ctx, "maps/noimage.tmj", MapOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected missing sheet to fail, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.LoadMap(cancelled, "maps/town.tmj", MapOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

const testTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map orientation="isometric" width="2" height="2" tilewidth="64" tileheight="32">
 <tileset firstgid="1" name="ground" tilewidth="64" tileheight="32" tilecount="4">
  <image source="ground.png" width="128" height="64"/>
 </tileset>
 <tileset firstgid="5" source="sets/walls.tsx"/>
 <layer name="ground" width="2" height="2">
  <data encoding="csv">1,2,3,5</data>
 </layer>
 <objectgroup name="props">
  <object id="1" name="crate" x="32" y="32" gid="2"/>
 </objectgroup>
</map>`

const testTSX = `<tileset name="walls" tilewidth="64" tileheight="64" tilecount="2">
 <image source="walls.png" width="128" height="64"/>
</tileset>`

func TestLoadMapTMX(t *testing.T) {
	m := NewManager(nil)
	m.AddFS(mapFS(t))

	tm, err := m.LoadMap(context.Background(), "maps/xml/town.tmx", MapOptions{})
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(tm.Layers) != 1 || tm.Layers[0].Get(1, 1) != 5 {
		t.Errorf("unexpected layers %v", tm.Layers)
	}
	if tm.Catalog.Tile(5) == nil {
		t.Error("expected external tsx tileset resolved")
	}
	if g := tm.Group(tm.Layers[0]); g == nil || g.Len() != 1 {
		t.Error("expected crate on the ground layer")
	}
}
