package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonMap struct {
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	TileWidth   int            `json:"tilewidth"`
	TileHeight  int            `json:"tileheight"`
	Orientation string         `json:"orientation"`
	RenderOrder string         `json:"renderorder"`
	Infinite    bool           `json:"infinite"`
	Tilesets    []jsonTileset  `json:"tilesets"`
	Layers      []jsonLayer    `json:"layers"`
	Properties  []jsonProperty `json:"properties"`
}

type jsonTileset struct {
	FirstGID        uint32         `json:"firstgid"`
	Source          string         `json:"source"`
	Name            string         `json:"name"`
	TileWidth       int            `json:"tilewidth"`
	TileHeight      int            `json:"tileheight"`
	TileCount       int            `json:"tilecount"`
	Columns         int            `json:"columns"`
	Image           string         `json:"image"`
	ImageWidth      int            `json:"imagewidth"`
	ImageHeight     int            `json:"imageheight"`
	Transparent     string         `json:"transparentcolor"`
	Transformations *jsonTransform `json:"transformations"`
	Properties      []jsonProperty `json:"properties"`
}

type jsonTransform struct {
	HFlip bool `json:"hflip"`
	VFlip bool `json:"vflip"`
}

type jsonLayer struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Visible     *bool           `json:"visible"`
	OffsetX     float64         `json:"offsetx"`
	OffsetY     float64         `json:"offsety"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Data        json.RawMessage `json:"data"`
	Encoding    string          `json:"encoding"`
	Compression string          `json:"compression"`
	Objects     []jsonObject    `json:"objects"`
	Layers      []jsonLayer     `json:"layers"`
	Properties  []jsonProperty  `json:"properties"`
}

type jsonObject struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Class      string         `json:"class"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	GID        uint32         `json:"gid"`
	Visible    *bool          `json:"visible"`
	Properties []jsonProperty `json:"properties"`
}

type jsonProperty struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// ParseTMJ parses a Tiled JSON map. Tile layer payloads are decoded; external
// tilesets are left for the caller to resolve.
func ParseTMJ(data []byte) (*TiledMap, error) {
	var jm jsonMap
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("parse tmj: %w", err)
	}

	m := &TiledMap{
		Width:       jm.Width,
		Height:      jm.Height,
		TileWidth:   jm.TileWidth,
		TileHeight:  jm.TileHeight,
		Orientation: jm.Orientation,
		RenderOrder: jm.RenderOrder,
		Properties:  convertJSONProperties(jm.Properties),
	}
	if err := m.checkOrientation(); err != nil {
		return nil, err
	}
	if jm.Infinite {
		return nil, ErrInfiniteMap
	}

	for i := range jm.Tilesets {
		m.Tilesets = append(m.Tilesets, convertJSONTileset(&jm.Tilesets[i]))
	}

	if err := flattenJSONLayers(m, jm.Layers, 0, 0, true); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseTSJ parses an external Tiled JSON tileset.
func ParseTSJ(data []byte) (*TiledTileset, error) {
	var jt jsonTileset
	if err := json.Unmarshal(data, &jt); err != nil {
		return nil, fmt.Errorf("parse tsj: %w", err)
	}
	return convertJSONTileset(&jt), nil
}

func convertJSONTileset(jt *jsonTileset) *TiledTileset {
	ts := &TiledTileset{
		FirstGID:    jt.FirstGID,
		Source:      jt.Source,
		Name:        jt.Name,
		TileWidth:   jt.TileWidth,
		TileHeight:  jt.TileHeight,
		TileCount:   jt.TileCount,
		Columns:     jt.Columns,
		Image:       jt.Image,
		ImageWidth:  jt.ImageWidth,
		ImageHeight: jt.ImageHeight,
		Properties:  convertJSONProperties(jt.Properties),

		TransparentColor: jt.Transparent,
	}
	if jt.Transformations != nil {
		ts.HFlip = jt.Transformations.HFlip
		ts.VFlip = jt.Transformations.VFlip
	}
	return ts
}

// flattenJSONLayers appends layers in file order, folding group layers into
// their children: offsets add up and a hidden group hides its contents.
func flattenJSONLayers(m *TiledMap, layers []jsonLayer, offX, offY float64, visible bool) error {
	for i := range layers {
		jl := &layers[i]
		vis := visible && (jl.Visible == nil || *jl.Visible)
		ox, oy := offX+jl.OffsetX, offY+jl.OffsetY

		switch jl.Type {
		case LayerGroup:
			if err := flattenJSONLayers(m, jl.Layers, ox, oy, vis); err != nil {
				return err
			}
			continue
		case LayerTiles, LayerObjects:
		default:
			// image layers have no place in an isometric tile scan
			continue
		}

		l := &TiledLayer{
			Type:       jl.Type,
			Name:       jl.Name,
			Visible:    vis,
			OffsetX:    ox,
			OffsetY:    oy,
			Width:      jl.Width,
			Height:     jl.Height,
			Properties: convertJSONProperties(jl.Properties),
		}

		if l.IsTiles() {
			cells, err := decodeJSONData(jl)
			if err != nil {
				return fmt.Errorf("layer %q: %w", jl.Name, err)
			}
			l.Cells = cells
		} else {
			for j := range jl.Objects {
				l.Objects = append(l.Objects, convertJSONObject(&jl.Objects[j]))
			}
		}
		m.Layers = append(m.Layers, l)
	}
	return nil
}

// decodeJSONData handles both a plain GID array and an encoded string payload.
func decodeJSONData(jl *jsonLayer) ([]uint32, error) {
	raw := bytes.TrimSpace(jl.Data)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrInvalidLayerData)
	}

	if raw[0] == '[' {
		var cells []uint32
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLayerData, err)
		}
		if len(cells) != jl.Width*jl.Height {
			return nil, fmt.Errorf("%w: got %d cells for %dx%d", ErrLayerSize, len(cells), jl.Width, jl.Height)
		}
		return cells, nil
	}

	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayerData, err)
	}
	encoding := jl.Encoding
	if encoding == "" {
		encoding = "base64"
	}
	return DecodeLayerData(payload, encoding, jl.Compression, jl.Width, jl.Height)
}

func convertJSONObject(jo *jsonObject) TiledObject {
	typ := jo.Type
	if typ == "" {
		typ = jo.Class
	}
	return TiledObject{
		ID:         jo.ID,
		Name:       jo.Name,
		Type:       typ,
		X:          jo.X,
		Y:          jo.Y,
		Width:      jo.Width,
		Height:     jo.Height,
		GID:        jo.GID,
		Visible:    jo.Visible == nil || *jo.Visible,
		Properties: convertJSONProperties(jo.Properties),
	}
}

func convertJSONProperties(in []jsonProperty) []TiledProperty {
	if len(in) == 0 {
		return nil
	}
	out := make([]TiledProperty, len(in))
	for i, p := range in {
		value := string(p.Value)
		var s string
		if json.Unmarshal(p.Value, &s) == nil {
			value = s
		}
		out[i] = TiledProperty{Name: p.Name, Type: p.Type, Value: value}
	}
	return out
}
