// Package tilemap holds the in-memory world map: tile catalog, layers and
// object groups.
package tilemap

// GID is a global tile identifier. The high bits carry orientation flags and
// the low 28 bits the catalog index; index 0 means no tile.
type GID uint32

// Orientation flag bits, as written by Tiled.
const (
	FlipHorizontal GID = 0x80000000
	FlipVertical   GID = 0x40000000
	FlipDiagonal   GID = 0x20000000
	RotateHex120   GID = 0x10000000 // hex maps only; decoded and ignored

	flagBits  = FlipHorizontal | FlipVertical | FlipDiagonal | RotateHex120
	IndexMask = ^flagBits
)

// Index returns the catalog index without orientation flags.
func (g GID) Index() uint32 {
	return uint32(g & IndexMask)
}

// Empty reports whether the identifier refers to no tile.
func (g GID) Empty() bool {
	return g.Index() == 0
}

// HFlip reports the horizontal flip flag.
func (g GID) HFlip() bool { return g&FlipHorizontal != 0 }

// VFlip reports the vertical flip flag.
func (g GID) VFlip() bool { return g&FlipVertical != 0 }

// DFlip reports the diagonal flip flag.
func (g GID) DFlip() bool { return g&FlipDiagonal != 0 }

// Orientation returns the drawable orientation encoded in the flags.
func (g GID) Orientation() Orientation {
	var o Orientation
	if g.HFlip() {
		o |= OrientFlipH
	}
	if g.VFlip() {
		o |= OrientFlipV
	}
	if g.DFlip() {
		o |= OrientFlipD
	}
	return o
}

// WithIndex returns a GID with the same flags and a new index.
func (g GID) WithIndex(index uint32) GID {
	return g&flagBits | GID(index)&IndexMask
}

// Orientation selects one of the eight flip variants of a tile.
type Orientation uint8

const (
	OrientFlipH Orientation = 1 << iota
	OrientFlipV
	OrientFlipD

	orientCount = 8
)

// MakeOrientation builds an orientation from individual flags.
func MakeOrientation(hflip, vflip, dflip bool) Orientation {
	var o Orientation
	if hflip {
		o |= OrientFlipH
	}
	if vflip {
		o |= OrientFlipV
	}
	if dflip {
		o |= OrientFlipD
	}
	return o
}
