package tilemap

import "fmt"

// Layer is a dense grid of tile identifiers, stored row-major.
// Every tile drawn from the layer is shifted by (OffsetX, OffsetY) pixels.
type Layer struct {
	Name    string
	Width   int
	Height  int
	OffsetX int
	OffsetY int
	Visible bool

	cells []GID
}

// NewLayer creates a visible layer of empty cells.
func NewLayer(name string, width, height int) *Layer {
	return &Layer{
		Name:    name,
		Width:   width,
		Height:  height,
		Visible: true,
		cells:   make([]GID, width*height),
	}
}

// NewLayerFromCells creates a layer over existing cell data.
// The slice is used directly, not copied.
func NewLayerFromCells(name string, width, height int, cells []GID) (*Layer, error) {
	if len(cells) != width*height {
		return nil, fmt.Errorf("layer %q: %w: have %d, want %dx%d", name, ErrCellCount, len(cells), width, height)
	}
	return &Layer{
		Name:    name,
		Width:   width,
		Height:  height,
		Visible: true,
		cells:   cells,
	}, nil
}

// EmptyLayer creates an invisible layer with no tiles, used as the reference
// frame for object groups that have no tile layer beneath them.
func EmptyLayer(name string, width, height int) *Layer {
	l := NewLayer(name, width, height)
	l.Visible = false
	return l
}

// Len returns the number of cells.
func (l *Layer) Len() int {
	return len(l.cells)
}

// InBounds reports whether (x, y) is a cell of this layer.
func (l *Layer) InBounds(x, y int) bool {
	return x >= 0 && x < l.Width && y >= 0 && y < l.Height
}

// Get returns the identifier at (x, y), or 0 outside the grid.
func (l *Layer) Get(x, y int) GID {
	if !l.InBounds(x, y) {
		return 0
	}
	return l.cells[y*l.Width+x]
}

// Set stores an identifier at (x, y). Writes outside the grid are ignored.
func (l *Layer) Set(x, y int, g GID) {
	if !l.InBounds(x, y) {
		return
	}
	l.cells[y*l.Width+x] = g
}

// Fill sets every cell to g.
func (l *Layer) Fill(g GID) {
	for i := range l.cells {
		l.cells[i] = g
	}
}

// Cells returns the backing cell slice.
func (l *Layer) Cells() []GID {
	return l.cells
}

func (l *Layer) String() string {
	return fmt.Sprintf("<Layer %q %dx%d>", l.Name, l.Width, l.Height)
}
