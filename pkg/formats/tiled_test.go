package formats

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// encodeCells builds a base64 layer payload with the given compression.
func encodeCells(t *testing.T, cells []uint32, compression string) string {
	t.Helper()

	raw := new(bytes.Buffer)
	for _, c := range cells {
		binary.Write(raw, binary.LittleEndian, c)
	}

	out := new(bytes.Buffer)
	switch compression {
	case "":
		out = raw
	case "zlib":
		w := zlib.NewWriter(out)
		w.Write(raw.Bytes())
		w.Close()
	case "gzip":
		w := gzip.NewWriter(out)
		w.Write(raw.Bytes())
		w.Close()
	default:
		t.Fatalf("unknown compression %q", compression)
	}
	return base64.StdEncoding.EncodeToString(out.Bytes())
}

var sampleCells = []uint32{1, 2, 0, 0x80000007, 3, 4}

func TestDecodeBase64(t *testing.T) {
	for _, c := range []string{"", "zlib", "gzip"} {
		t.Run("compression="+c, func(t *testing.T) {
			cells, err := DecodeBase64(encodeCells(t, sampleCells, c), c)
			if err != nil {
				t.Fatalf("DecodeBase64: %v", err)
			}
			if diff := cmp.Diff(sampleCells, cells); diff != "" {
				t.Errorf("cells mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeBase64Errors(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		compression string
		want        error
	}{
		{"bad base64", "!!!", "", ErrInvalidLayerData},
		{"zstd", encodeCells(t, sampleCells, ""), "zstd", ErrUnsupportedCompression},
		{"not zlib", encodeCells(t, sampleCells, ""), "zlib", ErrInvalidLayerData},
		{"odd length", base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), "", ErrInvalidLayerData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBase64(tt.payload, tt.compression); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	cells, err := DecodeCSV("\n1,2,0,\n2147483655,3,4\n")
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if diff := cmp.Diff(sampleCells, cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}

	if _, err := DecodeCSV("1,x,3"); !errors.Is(err, ErrInvalidLayerData) {
		t.Errorf("expected ErrInvalidLayerData, got %v", err)
	}
}

func TestDecodeLayerDataSize(t *testing.T) {
	_, err := DecodeLayerData("1,2,3", "csv", "", 2, 2)
	if !errors.Is(err, ErrLayerSize) {
		t.Errorf("expected ErrLayerSize, got %v", err)
	}

	_, err = DecodeLayerData("1,2,3,4", "xml", "", 2, 2)
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("expected ErrUnsupportedEncoding, got %v", err)
	}
}

func TestObjectMapPosition(t *testing.T) {
	o := TiledObject{X: 176, Y: 96}
	x, y := o.MapPosition(32)
	if x != 4.5 || y != 2 {
		t.Errorf("expected (4.5,2), got (%v,%v)", x, y)
	}
}

func TestTilesetResolve(t *testing.T) {
	ref := &TiledTileset{FirstGID: 41, Source: "walls.tsj"}
	if !ref.IsExternal() {
		t.Fatal("expected reference to be external")
	}
	if err := ref.Validate(); !errors.Is(err, ErrMissingTilesetField) {
		t.Errorf("expected ErrMissingTilesetField, got %v", err)
	}

	ref.Resolve(&TiledTileset{FirstGID: 1, Name: "walls", TileWidth: 64, TileHeight: 64, TileCount: 8, Image: "walls.png", HFlip: true})

	want := &TiledTileset{FirstGID: 41, Source: "walls.tsj", Name: "walls", TileWidth: 64, TileHeight: 64, TileCount: 8, Image: "walls.png", HFlip: true}
	if diff := cmp.Diff(want, ref); diff != "" {
		t.Errorf("resolved tileset mismatch (-want +got):\n%s", diff)
	}
	if ref.IsExternal() {
		t.Error("expected resolved tileset to be internal")
	}
	if err := ref.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProperty(t *testing.T) {
	props := []TiledProperty{{Name: "music", Value: "town.ogg"}, {Name: "dark", Type: "bool", Value: "true"}}
	if v, ok := Property(props, "dark"); !ok || v != "true" {
		t.Errorf("expected dark=true, got %q %v", v, ok)
	}
	if _, ok := Property(props, "missing"); ok {
		t.Error("expected missing property")
	}
}

func sampleTMJ(t *testing.T) []byte {
	t.Helper()
	return []byte(fmt.Sprintf(`{
  "width": 3, "height": 2, "tilewidth": 64, "tileheight": 32,
  "orientation": "isometric", "renderorder": "right-down", "infinite": false,
  "properties": [{"name": "title", "type": "string", "value": "Test Map"},
                 {"name": "level", "type": "int", "value": 3}],
  "tilesets": [
    {"firstgid": 1, "name": "ground", "tilewidth": 64, "tileheight": 32, "tilecount": 4,
     "columns": 4, "image": "ground.png", "imagewidth": 256, "imageheight": 32,
     "transformations": {"hflip": true, "vflip": false}},
    {"firstgid": 5, "source": "walls.tsj"}
  ],
  "layers": [
    {"type": "objectgroup", "name": "early", "objects": []},
    {"type": "tilelayer", "name": "ground", "width": 3, "height": 2,
     "encoding": "base64", "compression": "zlib", "data": %q},
    {"type": "tilelayer", "name": "plain", "width": 3, "height": 2, "visible": false,
     "offsety": -16, "data": [1, 1, 1, 0, 0, 5]},
    {"type": "objectgroup", "name": "things", "offsetx": 4, "offsety": -8, "objects": [
      {"id": 1, "name": "chest", "type": "container", "x": 48, "y": 80, "gid": 2},
      {"id": 2, "name": "ghost", "class": "npc", "x": 64, "y": 64, "visible": false,
       "properties": [{"name": "hp", "type": "int", "value": 12}]}
    ]},
    {"type": "group", "name": "upper", "offsety": -32, "visible": false, "layers": [
      {"type": "tilelayer", "name": "roof", "width": 3, "height": 2, "offsety": -4,
       "encoding": "csv", "data": "0,0,5,5,0,0"}
    ]},
    {"type": "imagelayer", "name": "backdrop", "image": "sky.png"}
  ]
}`, encodeCells(t, sampleCells, "zlib")))
}

func TestParseTMJ(t *testing.T) {
	m, err := ParseTMJ(sampleTMJ(t))
	if err != nil {
		t.Fatalf("ParseTMJ failed: %v", err)
	}

	if m.Width != 3 || m.Height != 2 || m.TileWidth != 64 || m.TileHeight != 32 {
		t.Errorf("unexpected map header %+v", m)
	}
	if v, _ := Property(m.Properties, "title"); v != "Test Map" {
		t.Errorf("expected title property, got %q", v)
	}
	if v, _ := Property(m.Properties, "level"); v != "3" {
		t.Errorf("expected level property 3, got %q", v)
	}

	if len(m.Tilesets) != 2 {
		t.Fatalf("expected 2 tilesets, got %d", len(m.Tilesets))
	}
	if ts := m.Tilesets[0]; !ts.HFlip || ts.VFlip || ts.Image != "ground.png" || ts.TileCount != 4 {
		t.Errorf("unexpected ground tileset %+v", ts)
	}
	if ext := m.ExternalTilesets(); len(ext) != 1 || ext[0].Source != "walls.tsj" || ext[0].FirstGID != 5 {
		t.Errorf("unexpected external tilesets %+v", ext)
	}

	var names []string
	for _, l := range m.Layers {
		names = append(names, l.Type+":"+l.Name)
	}
	wantNames := []string{"objectgroup:early", "tilelayer:ground", "tilelayer:plain", "objectgroup:things", "tilelayer:roof"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("layer order mismatch (-want +got):\n%s", diff)
	}

	ground := m.Layers[1]
	if diff := cmp.Diff(sampleCells, ground.Cells); diff != "" {
		t.Errorf("ground cells mismatch (-want +got):\n%s", diff)
	}
	if !ground.Visible {
		t.Error("expected ground visible by default")
	}

	plain := m.Layers[2]
	if plain.Visible || plain.OffsetY != -16 {
		t.Errorf("unexpected plain layer %+v", plain)
	}
	if diff := cmp.Diff([]uint32{1, 1, 1, 0, 0, 5}, plain.Cells); diff != "" {
		t.Errorf("plain cells mismatch (-want +got):\n%s", diff)
	}

	things := m.Layers[3]
	want := []TiledObject{
		{ID: 1, Name: "chest", Type: "container", X: 48, Y: 80, GID: 2, Visible: true},
		{ID: 2, Name: "ghost", Type: "npc", X: 64, Y: 64, Visible: false,
			Properties: []TiledProperty{{Name: "hp", Type: "int", Value: "12"}}},
	}
	if diff := cmp.Diff(want, things.Objects); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
	if things.OffsetX != 4 || things.OffsetY != -8 {
		t.Errorf("unexpected object group offset (%v,%v)", things.OffsetX, things.OffsetY)
	}

	roof := m.Layers[4]
	if roof.Visible || roof.OffsetY != -36 {
		t.Errorf("expected group offset and visibility folded in, got %+v", roof)
	}
	if len(m.TileLayers()) != 3 {
		t.Errorf("expected 3 tile layers, got %d", len(m.TileLayers()))
	}
}

func TestParseTMJErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"staggered", `{"orientation": "staggered", "layers": []}`, ErrUnsupportedOrientation},
		{"hexagonal", `{"orientation": "hexagonal", "layers": []}`, ErrUnsupportedOrientation},
		{"infinite", `{"orientation": "isometric", "infinite": true}`, ErrInfiniteMap},
		{"short layer", `{"layers": [{"type": "tilelayer", "name": "a", "width": 2, "height": 2, "data": [1, 2]}]}`, ErrLayerSize},
		{"no data", `{"layers": [{"type": "tilelayer", "name": "a", "width": 2, "height": 2}]}`, ErrInvalidLayerData},
		{"bad compression", `{"layers": [{"type": "tilelayer", "name": "a", "width": 1, "height": 1, "encoding": "base64", "compression": "zstd", "data": "AQAAAA=="}]}`, ErrUnsupportedCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTMJ([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := ParseTMJ([]byte("{not json")); err == nil {
		t.Error("expected syntax error")
	}
}

func TestParseTSJ(t *testing.T) {
	ts, err := ParseTSJ([]byte(`{"name": "walls", "tilewidth": 64, "tileheight": 64, "tilecount": 6,
		"columns": 3, "image": "walls.png", "transformations": {"vflip": true}}`))
	if err != nil {
		t.Fatalf("ParseTSJ failed: %v", err)
	}
	want := &TiledTileset{Name: "walls", TileWidth: 64, TileHeight: 64, TileCount: 6, Columns: 3, Image: "walls.png", VFlip: true}
	if diff := cmp.Diff(want, ts); diff != "" {
		t.Errorf("tileset mismatch (-want +got):\n%s", diff)
	}
}

func sampleTMX(t *testing.T) []byte {
	t.Helper()
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="isometric" renderorder="right-down" width="3" height="2" tilewidth="64" tileheight="32" infinite="0">
 <properties>
  <property name="title" value="Test Map"/>
  <property name="intro">Once upon
a time</property>
 </properties>
 <tileset firstgid="1" name="ground" tilewidth="64" tileheight="32" tilecount="4" columns="4">
  <transformations hflip="1" vflip="0" rotate="0" preferuntransformed="0"/>
  <image source="ground.png" width="256" height="32"/>
 </tileset>
 <tileset firstgid="5" source="walls.tsx"/>
 <objectgroup name="early"/>
 <layer name="ground" width="3" height="2">
  <data encoding="base64" compression="gzip">
   %s
  </data>
 </layer>
 <layer name="legacy" width="3" height="2" visible="0" offsety="-16">
  <data>
   <tile gid="1"/><tile gid="1"/><tile gid="1"/><tile/><tile/><tile gid="5"/>
  </data>
 </layer>
 <objectgroup name="things" offsetx="4" offsety="-8">
  <object id="1" name="chest" type="container" x="48" y="80" gid="2"/>
  <object id="2" name="ghost" class="npc" x="64" y="64" visible="0">
   <properties><property name="hp" type="int" value="12"/></properties>
  </object>
 </objectgroup>
 <group name="upper" offsety="-32">
  <layer name="roof" width="3" height="2">
   <data encoding="csv">
0,0,5,
5,0,0
</data>
  </layer>
 </group>
</map>`, encodeCells(t, sampleCells, "gzip")))
}

func TestParseTMX(t *testing.T) {
	m, err := ParseTMX(sampleTMX(t))
	if err != nil {
		t.Fatalf("ParseTMX failed: %v", err)
	}

	if v, _ := Property(m.Properties, "intro"); v != "Once upon\na time" {
		t.Errorf("expected multi-line property, got %q", v)
	}
	if len(m.Tilesets) != 2 || !m.Tilesets[0].HFlip || m.Tilesets[0].Image != "ground.png" || m.Tilesets[0].ImageWidth != 256 {
		t.Errorf("unexpected tilesets %+v", m.Tilesets)
	}
	if !m.Tilesets[1].IsExternal() {
		t.Error("expected second tileset external")
	}

	var names []string
	for _, l := range m.Layers {
		names = append(names, l.Type+":"+l.Name)
	}
	wantNames := []string{"objectgroup:early", "tilelayer:ground", "tilelayer:legacy", "objectgroup:things", "tilelayer:roof"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("layer order mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(sampleCells, m.Layers[1].Cells); diff != "" {
		t.Errorf("ground cells mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{1, 1, 1, 0, 0, 5}, m.Layers[2].Cells); diff != "" {
		t.Errorf("legacy cells mismatch (-want +got):\n%s", diff)
	}
	if m.Layers[2].Visible {
		t.Error("expected legacy layer hidden")
	}

	want := []TiledObject{
		{ID: 1, Name: "chest", Type: "container", X: 48, Y: 80, GID: 2, Visible: true},
		{ID: 2, Name: "ghost", Type: "npc", X: 64, Y: 64, Visible: false,
			Properties: []TiledProperty{{Name: "hp", Type: "int", Value: "12"}}},
	}
	if diff := cmp.Diff(want, m.Layers[3].Objects); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}

	roof := m.Layers[4]
	if roof.OffsetY != -32 || !roof.Visible {
		t.Errorf("unexpected roof %+v", roof)
	}
	if diff := cmp.Diff([]uint32{0, 0, 5, 5, 0, 0}, roof.Cells); diff != "" {
		t.Errorf("roof cells mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTMXErrors(t *testing.T) {
	if _, err := ParseTMX([]byte(`<map orientation="orthogonal"/>`)); !errors.Is(err, ErrUnsupportedOrientation) {
		t.Errorf("expected ErrUnsupportedOrientation, got %v", err)
	}
	if _, err := ParseTMX([]byte(`<map orientation="isometric" infinite="1"/>`)); !errors.Is(err, ErrInfiniteMap) {
		t.Errorf("expected ErrInfiniteMap, got %v", err)
	}
	_, err := ParseTMX([]byte(`<map><layer name="a" width="2" height="1"/></map>`))
	if !errors.Is(err, ErrInvalidLayerData) {
		t.Errorf("expected ErrInvalidLayerData, got %v", err)
	}
}

func TestParseTSX(t *testing.T) {
	ts, err := ParseTSX([]byte(`<tileset name="walls" tilewidth="64" tileheight="64" tilecount="6" columns="3">
 <image source="walls.png" width="192" height="128"/>
</tileset>`))
	if err != nil {
		t.Fatalf("ParseTSX failed: %v", err)
	}
	want := &TiledTileset{Name: "walls", TileWidth: 64, TileHeight: 64, TileCount: 6, Columns: 3, Image: "walls.png", ImageWidth: 192, ImageHeight: 128}
	if diff := cmp.Diff(want, ts); diff != "" {
		t.Errorf("tileset mismatch (-want +got):\n%s", diff)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#ff00ff", want: color.NRGBA{R: 255, B: 255, A: 255}},
		{in: "00ff00", want: color.NRGBA{G: 255, A: 255}},
		{in: "#80102030", want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
		{in: "#fff", wantErr: true},
		{in: "#gg00ff", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("ParseColor(%q): expected ErrInvalidColor, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTilesetColorKey(t *testing.T) {
	ts, err := ParseTSX([]byte(`<tileset name="k" tilewidth="4" tileheight="2" tilecount="1">
 <image source="k.png" width="4" height="2" trans="ff00ff"/>
</tileset>`))
	if err != nil {
		t.Fatalf("ParseTSX: %v", err)
	}
	key, ok, err := ts.ColorKey()
	if err != nil || !ok {
		t.Fatalf("ColorKey() = %v, %v, %v", key, ok, err)
	}
	if key != (color.NRGBA{R: 255, B: 255, A: 255}) {
		t.Errorf("key = %v", key)
	}

	ts.TransparentColor = ""
	if _, ok, _ := ts.ColorKey(); ok {
		t.Error("expected no key when unset")
	}
	ts.TransparentColor = "nope"
	if _, _, err := ts.ColorKey(); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor, got %v", err)
	}
}
