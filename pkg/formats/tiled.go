// Package formats parses Tiled isometric maps and tilesets in their JSON
// (.tmj, .tsj) and XML (.tmx, .tsx) forms.
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
	"io"
	"strconv"
	"strings"
)

// Tiled map errors.
var (
	ErrUnsupportedOrientation = errors.New("unsupported map orientation: expected isometric")
	ErrInfiniteMap            = errors.New("infinite maps are not supported")
	ErrUnsupportedEncoding    = errors.New("unsupported layer encoding")
	ErrUnsupportedCompression = errors.New("unsupported layer compression")
	ErrInvalidLayerData       = errors.New("invalid layer data")
	ErrLayerSize              = errors.New("layer data does not match layer size")
	ErrMissingTilesetField    = errors.New("tileset is missing a required field")
	ErrInvalidColor           = errors.New("invalid colour")
)

// Tiled layer types.
const (
	LayerTiles   = "tilelayer"
	LayerObjects = "objectgroup"
	LayerGroup   = "group"
	LayerImage   = "imagelayer"
)

// TiledMap is a parsed Tiled map, in either the JSON (.tmj) or XML (.tmx) flavour.
type TiledMap struct {
	Width       int
	Height      int
	TileWidth   int
	TileHeight  int
	Orientation string
	RenderOrder string

	Tilesets   []*TiledTileset
	Layers     []*TiledLayer // file order; group layers are flattened
	Properties []TiledProperty
}

// TiledTileset is a tileset entry. External tilesets carry only FirstGID and
// Source until Resolve merges the referenced file in.
type TiledTileset struct {
	FirstGID   uint32
	Source     string
	Name       string
	TileWidth  int
	TileHeight int
	TileCount  int
	Columns    int
	Image      string

	ImageWidth  int
	ImageHeight int

	HFlip bool
	VFlip bool

	// TransparentColor is the sheet's colour key as hex, empty when unset.
	TransparentColor string

	Properties []TiledProperty
}

// IsExternal reports whether the tileset still refers to another file.
func (ts *TiledTileset) IsExternal() bool {
	return ts.Source != "" && ts.Image == ""
}

// Resolve fills an external reference from the parsed tileset file, keeping
// the map's first GID.
func (ts *TiledTileset) Resolve(ext *TiledTileset) {
	first, src := ts.FirstGID, ts.Source
	*ts = *ext
	ts.FirstGID, ts.Source = first, src
}

// ColorKey returns the tileset's transparent colour, if it has one.
func (ts *TiledTileset) ColorKey() (color.NRGBA, bool, error) {
	if ts.TransparentColor == "" {
		return color.NRGBA{}, false, nil
	}
	c, err := ParseColor(ts.TransparentColor)
	if err != nil {
		return color.NRGBA{}, false, fmt.Errorf("tileset %q: %w", ts.Name, err)
	}
	return c, true, nil
}

// ParseColor reads a Tiled colour: "#RRGGBB" or "#AARRGGBB", the leading
// hash optional.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c := color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	if len(h) == 8 {
		c.A = uint8(v >> 24)
	}
	return c, nil
}

// Validate checks that the tileset can be sliced into tiles.
func (ts *TiledTileset) Validate() error {
	switch {
	case ts.Image == "":
		return fmt.Errorf("%w: image (tileset %q)", ErrMissingTilesetField, ts.Name)
	case ts.TileWidth <= 0 || ts.TileHeight <= 0:
		return fmt.Errorf("%w: tile size (tileset %q)", ErrMissingTilesetField, ts.Name)
	case ts.TileCount <= 0:
		return fmt.Errorf("%w: tile count (tileset %q)", ErrMissingTilesetField, ts.Name)
	}
	return nil
}

// TiledLayer is a tile layer or an object group.
type TiledLayer struct {
	Type    string
	Name    string
	Visible bool
	OffsetX float64
	OffsetY float64
	Width   int
	Height  int

	Cells   []uint32 // tile layers only, row-major
	Objects []TiledObject

	Properties []TiledProperty
}

// IsTiles reports whether the layer holds tiles.
func (l *TiledLayer) IsTiles() bool { return l.Type == LayerTiles }

// IsObjects reports whether the layer is an object group.
func (l *TiledLayer) IsObjects() bool { return l.Type == LayerObjects }

// TiledObject is one entry of an object group.
type TiledObject struct {
	ID      int
	Name    string
	Type    string
	X       float64
	Y       float64
	Width   float64
	Height  float64
	GID     uint32
	Visible bool

	Properties []TiledProperty
}

// MapPosition converts the object's Tiled pixel position to map coordinates.
// On isometric maps Tiled stores object positions as the cell index scaled by
// the tile height, on both axes.
func (o *TiledObject) MapPosition(tileHeight int) (float64, float64) {
	th := float64(tileHeight)
	return o.X/th - 1, o.Y/th - 1
}

// TiledProperty is a custom property. Values are kept in their string form.
type TiledProperty struct {
	Name  string
	Type  string
	Value string
}

// Property looks up a custom property by name.
func Property(props []TiledProperty, name string) (string, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// TileLayers returns the tile layers in file order.
func (m *TiledMap) TileLayers() []*TiledLayer {
	var out []*TiledLayer
	for _, l := range m.Layers {
		if l.IsTiles() {
			out = append(out, l)
		}
	}
	return out
}

// ExternalTilesets returns the tilesets that still need their source file.
func (m *TiledMap) ExternalTilesets() []*TiledTileset {
	var out []*TiledTileset
	for _, ts := range m.Tilesets {
		if ts.IsExternal() {
			out = append(out, ts)
		}
	}
	return out
}

func (m *TiledMap) checkOrientation() error {
	switch m.Orientation {
	case "", "isometric":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOrientation, m.Orientation)
	}
}

// DecodeBase64 decodes a base64 layer payload, optionally compressed, into
// little-endian GIDs. Compression is "", "zlib" or "gzip".
func DecodeBase64(payload, compression string) ([]uint32, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidLayerData, err)
	}

	var r io.Reader
	switch compression {
	case "":
		r = bytes.NewReader(raw)
	case "zlib":
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrInvalidLayerData, err)
		}
		defer zr.Close()
		r = zr
	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrInvalidLayerData, err)
		}
		defer gr.Close()
		r = gr
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, compression)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayerData, err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of tiles", ErrInvalidLayerData, len(data))
	}

	cells := make([]uint32, len(data)/4)
	for i := range cells {
		cells[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return cells, nil
}

// DecodeCSV parses comma separated GIDs.
func DecodeCSV(payload string) ([]uint32, error) {
	fields := strings.FieldsFunc(payload, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	cells := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: csv field %d: %v", ErrInvalidLayerData, i, err)
		}
		cells[i] = uint32(v)
	}
	return cells, nil
}

// DecodeLayerData decodes a payload in the given encoding ("base64" or "csv")
// and checks it holds exactly width*height cells.
func DecodeLayerData(payload, encoding, compression string, width, height int) ([]uint32, error) {
	var (
		cells []uint32
		err   error
	)
	switch encoding {
	case "base64":
		cells, err = DecodeBase64(payload, compression)
	case "csv":
		cells, err = DecodeCSV(payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
	if err != nil {
		return nil, err
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: got %d cells for %dx%d", ErrLayerSize, len(cells), width, height)
	}
	return cells, nil
}
