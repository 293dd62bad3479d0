package formats

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type xmlMap struct {
	Width       int           `xml:"width,attr"`
	Height      int           `xml:"height,attr"`
	TileWidth   int           `xml:"tilewidth,attr"`
	TileHeight  int           `xml:"tileheight,attr"`
	Orientation string        `xml:"orientation,attr"`
	RenderOrder string        `xml:"renderorder,attr"`
	Infinite    int           `xml:"infinite,attr"`
	Tilesets    []xmlTileset  `xml:"tileset"`
	Properties  []xmlProperty `xml:"properties>property"`

	// Layers and object groups interleave; their relative order decides
	// which layer an object group hangs from.
	Layers []xmlLayer `xml:",any"`
}

type xmlTileset struct {
	FirstGID        uint32        `xml:"firstgid,attr"`
	Source          string        `xml:"source,attr"`
	Name            string        `xml:"name,attr"`
	TileWidth       int           `xml:"tilewidth,attr"`
	TileHeight      int           `xml:"tileheight,attr"`
	TileCount       int           `xml:"tilecount,attr"`
	Columns         int           `xml:"columns,attr"`
	Image           *xmlImage     `xml:"image"`
	Transformations *xmlTransform `xml:"transformations"`
	Properties      []xmlProperty `xml:"properties>property"`
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	Trans  string `xml:"trans,attr"`
}

type xmlTransform struct {
	HFlip int `xml:"hflip,attr"`
	VFlip int `xml:"vflip,attr"`
}

type xmlLayer struct {
	XMLName    xml.Name
	Name       string        `xml:"name,attr"`
	Visible    *int          `xml:"visible,attr"`
	OffsetX    float64       `xml:"offsetx,attr"`
	OffsetY    float64       `xml:"offsety,attr"`
	Width      int           `xml:"width,attr"`
	Height     int           `xml:"height,attr"`
	Data       *xmlData      `xml:"data"`
	Objects    []xmlObject   `xml:"object"`
	Properties []xmlProperty `xml:"properties>property"`
	Layers     []xmlLayer    `xml:",any"`
}

type xmlData struct {
	Encoding    string    `xml:"encoding,attr"`
	Compression string    `xml:"compression,attr"`
	Text        string    `xml:",chardata"`
	Tiles       []xmlTile `xml:"tile"`
}

type xmlTile struct {
	GID uint32 `xml:"gid,attr"`
}

type xmlObject struct {
	ID         int           `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Type       string        `xml:"type,attr"`
	Class      string        `xml:"class,attr"`
	X          float64       `xml:"x,attr"`
	Y          float64       `xml:"y,attr"`
	Width      float64       `xml:"width,attr"`
	Height     float64       `xml:"height,attr"`
	GID        uint32        `xml:"gid,attr"`
	Visible    *int          `xml:"visible,attr"`
	Properties []xmlProperty `xml:"properties>property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

// ParseTMX parses a Tiled XML map into the same model as ParseTMJ.
func ParseTMX(data []byte) (*TiledMap, error) {
	var xm xmlMap
	if err := xml.Unmarshal(data, &xm); err != nil {
		return nil, fmt.Errorf("parse tmx: %w", err)
	}

	m := &TiledMap{
		Width:       xm.Width,
		Height:      xm.Height,
		TileWidth:   xm.TileWidth,
		TileHeight:  xm.TileHeight,
		Orientation: xm.Orientation,
		RenderOrder: xm.RenderOrder,
		Properties:  convertXMLProperties(xm.Properties),
	}
	if err := m.checkOrientation(); err != nil {
		return nil, err
	}
	if xm.Infinite != 0 {
		return nil, ErrInfiniteMap
	}

	for i := range xm.Tilesets {
		m.Tilesets = append(m.Tilesets, convertXMLTileset(&xm.Tilesets[i]))
	}

	if err := flattenXMLLayers(m, xm.Layers, 0, 0, true); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseTSX parses an external Tiled XML tileset.
func ParseTSX(data []byte) (*TiledTileset, error) {
	var xt xmlTileset
	if err := xml.Unmarshal(data, &xt); err != nil {
		return nil, fmt.Errorf("parse tsx: %w", err)
	}
	return convertXMLTileset(&xt), nil
}

func convertXMLTileset(xt *xmlTileset) *TiledTileset {
	ts := &TiledTileset{
		FirstGID:   xt.FirstGID,
		Source:     xt.Source,
		Name:       xt.Name,
		TileWidth:  xt.TileWidth,
		TileHeight: xt.TileHeight,
		TileCount:  xt.TileCount,
		Columns:    xt.Columns,
		Properties: convertXMLProperties(xt.Properties),
	}
	if xt.Image != nil {
		ts.Image = xt.Image.Source
		ts.ImageWidth = xt.Image.Width
		ts.ImageHeight = xt.Image.Height
		ts.TransparentColor = xt.Image.Trans
	}
	if xt.Transformations != nil {
		ts.HFlip = xt.Transformations.HFlip == 1
		ts.VFlip = xt.Transformations.VFlip == 1
	}
	return ts
}

func flattenXMLLayers(m *TiledMap, layers []xmlLayer, offX, offY float64, visible bool) error {
	for i := range layers {
		xl := &layers[i]
		vis := visible && (xl.Visible == nil || *xl.Visible != 0)
		ox, oy := offX+xl.OffsetX, offY+xl.OffsetY

		var typ string
		switch xl.XMLName.Local {
		case "group":
			if err := flattenXMLLayers(m, xl.Layers, ox, oy, vis); err != nil {
				return err
			}
			continue
		case "layer":
			typ = LayerTiles
		case "objectgroup":
			typ = LayerObjects
		default:
			continue
		}

		l := &TiledLayer{
			Type:       typ,
			Name:       xl.Name,
			Visible:    vis,
			OffsetX:    ox,
			OffsetY:    oy,
			Width:      xl.Width,
			Height:     xl.Height,
			Properties: convertXMLProperties(xl.Properties),
		}

		if l.IsTiles() {
			cells, err := decodeXMLData(xl)
			if err != nil {
				return fmt.Errorf("layer %q: %w", xl.Name, err)
			}
			l.Cells = cells
		} else {
			for j := range xl.Objects {
				l.Objects = append(l.Objects, convertXMLObject(&xl.Objects[j]))
			}
		}
		m.Layers = append(m.Layers, l)
	}
	return nil
}

// decodeXMLData handles encoded payloads and the legacy one-element-per-tile form.
func decodeXMLData(xl *xmlLayer) ([]uint32, error) {
	d := xl.Data
	if d == nil {
		return nil, fmt.Errorf("%w: no <data>", ErrInvalidLayerData)
	}
	if d.Encoding == "" {
		cells := make([]uint32, len(d.Tiles))
		for i, t := range d.Tiles {
			cells[i] = t.GID
		}
		if len(cells) != xl.Width*xl.Height {
			return nil, fmt.Errorf("%w: got %d cells for %dx%d", ErrLayerSize, len(cells), xl.Width, xl.Height)
		}
		return cells, nil
	}
	return DecodeLayerData(d.Text, d.Encoding, d.Compression, xl.Width, xl.Height)
}

func convertXMLObject(xo *xmlObject) TiledObject {
	typ := xo.Type
	if typ == "" {
		typ = xo.Class
	}
	return TiledObject{
		ID:         xo.ID,
		Name:       xo.Name,
		Type:       typ,
		X:          xo.X,
		Y:          xo.Y,
		Width:      xo.Width,
		Height:     xo.Height,
		GID:        xo.GID,
		Visible:    xo.Visible == nil || *xo.Visible != 0,
		Properties: convertXMLProperties(xo.Properties),
	}
}

func convertXMLProperties(in []xmlProperty) []TiledProperty {
	if len(in) == 0 {
		return nil
	}
	out := make([]TiledProperty, len(in))
	for i, p := range in {
		value := p.Value
		if value == "" {
			// multi-line string properties keep their value as text
			value = strings.TrimSpace(p.Text)
		}
		out[i] = TiledProperty{Name: p.Name, Type: p.Type, Value: value}
	}
	return out
}
