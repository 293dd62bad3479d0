package tilemap

import "sort"

// Catalog resolves tile identifiers across all tilesets of a map.
type Catalog struct {
	tilesets []*Tileset
}

// NewCatalog creates a catalog from tilesets in any order.
func NewCatalog(tilesets ...*Tileset) *Catalog {
	c := &Catalog{}
	for _, ts := range tilesets {
		c.Add(ts)
	}
	return c
}

// Add registers a tileset, keeping tilesets ordered by FirstGID.
func (c *Catalog) Add(ts *Tileset) {
	c.tilesets = append(c.tilesets, ts)
	sort.SliceStable(c.tilesets, func(i, j int) bool {
		return c.tilesets[i].FirstGID < c.tilesets[j].FirstGID
	})
}

// Tilesets returns the registered tilesets ordered by FirstGID.
func (c *Catalog) Tilesets() []*Tileset {
	return c.tilesets
}

// Tile resolves g to a drawable tile, ignoring orientation flags.
// It returns nil for the empty identifier and for indices no tileset covers.
func (c *Catalog) Tile(g GID) *Tile {
	index := g.Index()
	if index == 0 {
		return nil
	}

	// last tileset whose FirstGID is <= index
	i := sort.Search(len(c.tilesets), func(i int) bool {
		return c.tilesets[i].FirstGID > index
	})
	if i == 0 {
		return nil
	}
	return c.tilesets[i-1].Tile(index)
}

// Len returns the total number of tiles.
func (c *Catalog) Len() int {
	n := 0
	for _, ts := range c.tilesets {
		n += ts.Len()
	}
	return n
}
