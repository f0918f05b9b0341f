package ogcsim

import (
	"math"
	"slices"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCellSpan is the number of cells per axis above which a body is tested
// against every other body instead of being inserted (planes, huge boxes)
const maxCellSpan = 64

// ============================================================================
// Types
// ============================================================================

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - indices of the bodies overlapping a cell
type Cell struct {
	bodyIndices []int
}

// Pair - bodies whose margin-expanded AABBs overlap, A before B in body order
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	indexA, indexB int
}

// SpatialGrid - uniform hashed grid for the broad phase
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	aabbs     []actor.AABB
	unbounded []int
	stamps    []int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - numCells is rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - rounds up to the next power of 2
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.aabbs = sg.aabbs[:0]
	sg.unbounded = sg.unbounded[:0]
}

// Insert - registers body in every cell its AABB, grown by margin, touches.
// Indices must be inserted in increasing order.
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody, margin float64) {
	aabb := body.Shape.GetAABB().Expand(margin)
	for len(sg.aabbs) <= bodyIndex {
		sg.aabbs = append(sg.aabbs, actor.AABB{})
	}
	sg.aabbs[bodyIndex] = aabb

	minCell, maxCell, ok := sg.cellRange(aabb)
	if !ok {
		sg.unbounded = append(sg.unbounded, bodyIndex)
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
			}
		}
	}
}

// FindPairs - candidate pairs of the inserted bodies, sorted by body index.
// Every body must have been inserted. Pairs of two inactive bodies and pairs
// rejected by the collision filter are skipped.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)

	if cap(sg.stamps) < len(bodies) {
		sg.stamps = make([]int, len(bodies))
	}
	sg.stamps = sg.stamps[:len(bodies)]
	clear(sg.stamps)

	visit := func(i, j int) {
		bodyA, bodyB := bodies[i], bodies[j]
		if collidable(bodyA, bodyB) && sg.aabbs[i].Overlaps(sg.aabbs[j]) {
			pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB, indexA: i, indexB: j})
		}
	}

	// ========== BOUNDED BODIES, THROUGH THE CELLS ==========
	for bodyIdx := range bodies {
		minCell, maxCell, ok := sg.cellRange(sg.aabbs[bodyIdx])
		if !ok {
			continue
		}
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					for _, otherIdx := range sg.cells[sg.hashCell(CellKey{x, y, z})].bodyIndices {
						// Stamps avoid testing twice a pair sharing several cells
						if otherIdx <= bodyIdx || sg.stamps[otherIdx] == bodyIdx+1 {
							continue
						}
						sg.stamps[otherIdx] = bodyIdx + 1
						visit(bodyIdx, otherIdx)
					}
				}
			}
		}
	}

	// ========== UNBOUNDED BODIES, AGAINST EVERYTHING ==========
	for _, bodyIdx := range sg.unbounded {
		for otherIdx := range bodies {
			if otherIdx == bodyIdx {
				continue
			}
			if _, _, bounded := sg.cellRange(sg.aabbs[otherIdx]); !bounded && otherIdx < bodyIdx {
				continue
			}
			visit(min(bodyIdx, otherIdx), max(bodyIdx, otherIdx))
		}
	}

	slices.SortFunc(pairs, func(p, q Pair) int {
		if p.indexA != q.indexA {
			return p.indexA - q.indexA
		}
		return p.indexB - q.indexB
	})
	return pairs
}

// collidable applies the activity rule and the group / mask filter
func collidable(a, b *actor.RigidBody) bool {
	if !a.IsActive() && !b.IsActive() {
		return false
	}
	return a.CollisionGroup&b.CollisionMask != 0 && b.CollisionGroup&a.CollisionMask != 0
}

func (sg *SpatialGrid) cellRange(aabb actor.AABB) (CellKey, CellKey, bool) {
	extent := aabb.Max.Sub(aabb.Min)
	for i := 0; i < 3; i++ {
		if !(extent[i]/sg.cellSize <= maxCellSpan) {
			return CellKey{}, CellKey{}, false
		}
	}
	return sg.worldToCell(aabb.Min), sg.worldToCell(aabb.Max), true
}

// worldToCell - converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
