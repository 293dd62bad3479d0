package world

import (
	"container/heap"

	"github.com/Faultbox/isomap/internal/engine/tilemap"
)

// PathNode represents a node in the A* search.
type PathNode struct {
	X, Y   int     // Tile coordinates
	G      float32 // Cost from start
	H      float32 // Heuristic (estimated cost to goal)
	F      float32 // Total cost (G + H)
	Parent *PathNode
	Index  int // Index in heap
}

// PathHeap implements a priority queue for A* pathfinding.
type PathHeap []*PathNode

func (h PathHeap) Len() int           { return len(h) }
func (h PathHeap) Less(i, j int) bool { return h[i].F < h[j].F }
func (h PathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *PathHeap) Push(x any) {
	node := x.(*PathNode)
	node.Index = len(*h)
	*h = append(*h, node)
}

func (h *PathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*h = old[0 : n-1]
	return node
}

// Step costs. Diagonal steps cost sqrt(2).
const (
	straightCost = float32(1.0)
	diagonalCost = float32(1.414)
)

// neighbours in map space; odd entries are diagonal
var neighbours = [8][2]int{
	{0, 1},
	{-1, 1},
	{-1, 0},
	{-1, -1},
	{0, -1},
	{1, -1},
	{1, 0},
	{1, 1},
}

// PathFinder searches a width x height tile grid.
type PathFinder struct {
	width    int
	height   int
	walkable func(x, y int) bool
}

// NewPathFinder creates a pathfinder over walkable.
func NewPathFinder(width, height int, walkable func(x, y int) bool) *PathFinder {
	return &PathFinder{
		width:    width,
		height:   height,
		walkable: walkable,
	}
}

// PathFinder returns a pathfinder over the world's walkable tiles.
func (w *World) PathFinder() *PathFinder {
	return NewPathFinder(w.Map.Width, w.Map.Height, w.Walkable)
}

// FindPath finds a path from start to goal, both included.
// The start tile itself need not be walkable. Returns nil if no path exists.
func (pf *PathFinder) FindPath(startX, startY, goalX, goalY int) []tilemap.Point {
	if !pf.inBounds(startX, startY) || !pf.IsWalkable(goalX, goalY) {
		return nil
	}

	openSet := &PathHeap{}
	heap.Init(openSet)

	closedSet := make(map[int]bool)
	nodeMap := make(map[int]*PathNode)

	startNode := &PathNode{
		X: startX,
		Y: startY,
		H: pf.heuristic(startX, startY, goalX, goalY),
	}
	startNode.F = startNode.H
	heap.Push(openSet, startNode)
	nodeMap[pf.key(startX, startY)] = startNode

	maxIterations := pf.width * pf.height // Prevent infinite loops
	for iterations := 0; openSet.Len() > 0 && iterations < maxIterations; iterations++ {
		current := heap.Pop(openSet).(*PathNode)

		if current.X == goalX && current.Y == goalY {
			return pf.reconstructPath(current)
		}

		closedSet[pf.key(current.X, current.Y)] = true

		for i, dir := range neighbours {
			nx, ny := current.X+dir[0], current.Y+dir[1]
			if !pf.IsWalkable(nx, ny) || closedSet[pf.key(nx, ny)] {
				continue
			}

			moveCost := straightCost
			if i%2 == 1 {
				moveCost = diagonalCost
				// no cutting corners
				if !pf.IsWalkable(current.X+dir[0], current.Y) ||
					!pf.IsWalkable(current.X, current.Y+dir[1]) {
					continue
				}
			}

			g := current.G + moveCost

			neighbor, exists := nodeMap[pf.key(nx, ny)]
			if !exists {
				neighbor = &PathNode{
					X:      nx,
					Y:      ny,
					G:      g,
					H:      pf.heuristic(nx, ny, goalX, goalY),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				nodeMap[pf.key(nx, ny)] = neighbor
				heap.Push(openSet, neighbor)
			} else if g < neighbor.G {
				neighbor.G = g
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return nil
}

// IsWalkable checks if a tile is on the grid and walkable.
func (pf *PathFinder) IsWalkable(x, y int) bool {
	return pf.inBounds(x, y) && pf.walkable(x, y)
}

// heuristic is the octile distance.
func (pf *PathFinder) heuristic(x1, y1, x2, y2 int) float32 {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	if dx < dy {
		return float32(dx)*diagonalCost + float32(dy-dx)
	}
	return float32(dy)*diagonalCost + float32(dx-dy)
}

func (pf *PathFinder) inBounds(x, y int) bool {
	return x >= 0 && x < pf.width && y >= 0 && y < pf.height
}

func (pf *PathFinder) key(x, y int) int {
	return y*pf.width + x
}

func (pf *PathFinder) reconstructPath(node *PathNode) []tilemap.Point {
	var path []tilemap.Point
	for node != nil {
		path = append(path, tilemap.Point{X: node.X, Y: node.Y})
		node = node.Parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
