package ogcsim

import (
	"testing"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func createTestBox(name string, position mgl64.Vec3, halfExtents mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		name,
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: halfExtents},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createTestSphere(name string, position mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(
		name,
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: radius},
		actor.BodyTypeDynamic,
		1.0,
	)
}

// createTestPlane - plane through distance along normal, static
func createTestPlane(name string, normal mgl64.Vec3, distance float64) *actor.RigidBody {
	return actor.NewRigidBody(
		name,
		actor.NewTransform(),
		&actor.Plane{Normal: normal, Distance: distance},
		actor.BodyTypeStatic,
		0.0,
	)
}

func insertAll(grid *SpatialGrid, bodies []*actor.RigidBody, margin float64) {
	grid.Clear()
	for i, body := range bodies {
		grid.Insert(i, body, margin)
	}
}

func cellContains(grid *SpatialGrid, key CellKey, bodyIdx int) bool {
	for _, idx := range grid.cells[grid.hashCell(key)].bodyIndices {
		if idx == bodyIdx {
			return true
		}
	}
	return false
}

// ============================================================================
// Cells
// ============================================================================

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origine", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positif", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negatif", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractionnaire", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"grand", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestWorldToCellSize(t *testing.T) {
	grid := NewSpatialGrid(2.0, 16)

	if got := grid.worldToCell(mgl64.Vec3{3.9, -0.1, 4.0}); got != (CellKey{1, -1, 2}) {
		t.Errorf("worldToCell = %v, want {1 -1 2}", got)
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // 16 cellules, mask = 15

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origine", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 6},
		{"negatif", CellKey{-1, -2, -3}, 10},
		{"grand", CellKey{100, 200, 300}, 8},
		{"mixte", CellKey{5, 0, -7}, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Errorf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32}, {1000, 1024},
	}

	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Insert / Clear
// ============================================================================

func TestInsertSingleBody(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	body := createTestBox("box", mgl64.Vec3{1.5, 2.5, 3.5}, mgl64.Vec3{0.4, 0.4, 0.4})

	grid.Insert(0, body, 0)

	if !cellContains(grid, CellKey{1, 2, 3}, 0) {
		t.Error("Body not found in its cell after insertion")
	}
	if len(grid.unbounded) != 0 {
		t.Errorf("Expected no unbounded body, got %d", len(grid.unbounded))
	}
}

func TestInsertMargin(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024)
	body := createTestBox("box", mgl64.Vec3{1.5, 1.5, 1.5}, mgl64.Vec3{0.4, 0.4, 0.4})

	// Sans marge la boite reste dans une seule cellule
	grid.Insert(0, body, 0)
	if cellContains(grid, CellKey{2, 1, 1}, 0) {
		t.Error("Body should not reach the neighbour cell without margin")
	}

	grid.Clear()
	grid.Insert(0, body, 0.2)
	if !cellContains(grid, CellKey{2, 1, 1}, 0) {
		t.Error("Body should reach the neighbour cell with a 0.2 margin")
	}
	if grid.aabbs[0].Max.X() < 2.09 {
		t.Errorf("Expected the stored AABB to be expanded, got max %v", grid.aabbs[0].Max)
	}
}

func TestInsertPlane(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	plane := createTestPlane("ground", mgl64.Vec3{0, 1, 0}, 0)

	grid.Insert(0, plane, 0)

	// Les planes ne passent pas par les cellules
	if len(grid.unbounded) != 1 || grid.unbounded[0] != 0 {
		t.Error("Plane not correctly registered as unbounded")
	}
	for _, cell := range grid.cells {
		if len(cell.bodyIndices) > 0 {
			t.Error("Regular cells should be empty when inserting plane")
		}
	}
}

func TestInsertHugeBox(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	box := createTestBox("slab", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{100, 0.5, 100})

	grid.Insert(0, box, 0)

	if len(grid.unbounded) != 1 {
		t.Errorf("Expected a box wider than %d cells to be unbounded", maxCellSpan)
	}
}

func TestClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestBox("a", mgl64.Vec3{1.0, 1.0, 1.0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestPlane("ground", mgl64.Vec3{0, 1, 0}, 0),
	}
	insertAll(grid, bodies, 0)

	if !cellContains(grid, CellKey{1, 1, 1}, 0) {
		t.Error("Bodies should be present before clear")
	}

	grid.Clear()

	if len(grid.unbounded) != 0 {
		t.Error("Unbounded list should be empty after clear")
	}
	if len(grid.aabbs) != 0 {
		t.Error("AABBs should be empty after clear")
	}
	for _, cell := range grid.cells {
		if len(cell.bodyIndices) != 0 {
			t.Error("Cells should be empty after clear")
		}
	}
}

// ============================================================================
// FindPairs
// ============================================================================

func TestFindPairs(t *testing.T) {
	tests := []struct {
		name      string
		positions []mgl64.Vec3
		margin    float64
		expected  int
	}{
		{"eloignes", []mgl64.Vec3{{0, 0, 0}, {10, 10, 10}}, 0, 0},
		{"chevauchement", []mgl64.Vec3{{0, 0, 0}, {0.5, 0.5, 0.5}}, 0, 1},
		{"proches sans marge", []mgl64.Vec3{{0, 0, 0}, {0.9, 0, 0}}, 0, 0},
		{"proches avec marge", []mgl64.Vec3{{0, 0, 0}, {0.9, 0, 0}}, 0.1, 1},
		{"trois en ligne", []mgl64.Vec3{{0, 0, 0}, {0.7, 0, 0}, {1.4, 0, 0}}, 0, 2},
		{"empiles", []mgl64.Vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewSpatialGrid(1.0, 64)
			bodies := make([]*actor.RigidBody, len(tt.positions))
			for i, position := range tt.positions {
				bodies[i] = createTestBox(string(rune('a'+i)), position, mgl64.Vec3{0.4, 0.4, 0.4})
			}
			insertAll(grid, bodies, tt.margin)

			pairs := grid.FindPairs(bodies)
			if len(pairs) != tt.expected {
				t.Errorf("Expected %d pairs, got %d", tt.expected, len(pairs))
			}
		})
	}
}

func TestFindPairsSharedCells(t *testing.T) {
	// Deux boites qui partagent plusieurs cellules ne donnent qu'une paire
	grid := NewSpatialGrid(0.25, 256)
	bodies := []*actor.RigidBody{
		createTestBox("a", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
		createTestBox("b", mgl64.Vec3{0.2, 0.1, 0}, mgl64.Vec3{0.5, 0.5, 0.5}),
	}
	insertAll(grid, bodies, 0)

	pairs := grid.FindPairs(bodies)
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].BodyA != bodies[0] || pairs[0].BodyB != bodies[1] {
		t.Error("Expected the pair in body order")
	}
}

func TestFindPairsSorted(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestBox("a", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestBox("b", mgl64.Vec3{5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestBox("c", mgl64.Vec3{5.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestBox("d", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
	}
	insertAll(grid, bodies, 0)

	pairs := grid.FindPairs(bodies)
	expected := [][2]int{{0, 3}, {1, 2}}
	if len(pairs) != len(expected) {
		t.Fatalf("Expected %d pairs, got %d", len(expected), len(pairs))
	}
	for i, pair := range pairs {
		if pair.indexA != expected[i][0] || pair.indexB != expected[i][1] {
			t.Errorf("Pair %d: expected %v, got (%d, %d)", i, expected[i], pair.indexA, pair.indexB)
		}
	}
}

func TestFindPairsWithPlane(t *testing.T) {
	tests := []struct {
		name     string
		position mgl64.Vec3
		expected int
	}{
		{"au sol", mgl64.Vec3{0, 0.3, 0}, 1},
		{"en l'air", mgl64.Vec3{0, 5, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewSpatialGrid(1.0, 16)
			bodies := []*actor.RigidBody{
				createTestBox("box", tt.position, mgl64.Vec3{0.4, 0.4, 0.4}),
				createTestPlane("ground", mgl64.Vec3{0, 1, 0}, 0),
			}
			insertAll(grid, bodies, 0)

			pairs := grid.FindPairs(bodies)
			if len(pairs) != tt.expected {
				t.Fatalf("Expected %d pairs, got %d", tt.expected, len(pairs))
			}
			if tt.expected == 1 && (pairs[0].BodyA != bodies[0] || pairs[0].BodyB != bodies[1]) {
				t.Error("Expected the plane pair in body order")
			}
		})
	}
}

func TestFindPairsTiltedPlane(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	normal := mgl64.Vec3{1, 1, 0}.Normalize()
	bodies := []*actor.RigidBody{
		createTestPlane("ramp", normal, 0),
		createTestBox("far", mgl64.Vec3{50, 50, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
	}
	insertAll(grid, bodies, 0)

	// Un plan incline reste infini, la phase etroite tranche
	if pairs := grid.FindPairs(bodies); len(pairs) != 1 {
		t.Errorf("Expected 1 pair with a tilted plane, got %d", len(pairs))
	}
}

func TestFindPairsMultiplePlanes(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestPlane("ground", mgl64.Vec3{0, 1, 0}, 0),
		createTestPlane("wall", mgl64.Vec3{-1, 0, 0}, -0.3),
		createTestBox("box", mgl64.Vec3{0, 0.3, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
	}
	insertAll(grid, bodies, 0)

	pairs := grid.FindPairs(bodies)

	// Deux plans statiques ne forment jamais de paire
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	for _, pair := range pairs {
		if pair.BodyB != bodies[2] {
			t.Errorf("Expected every pair to end with the box, got %s-%s", pair.BodyA.Name, pair.BodyB.Name)
		}
	}
}

func TestFindPairsStaticBodies(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	a := createTestBox("a", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	b := createTestBox("b", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	a.BodyType = actor.BodyTypeStatic
	b.BodyType = actor.BodyTypeStatic
	bodies := []*actor.RigidBody{a, b}
	insertAll(grid, bodies, 0)

	if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
		t.Errorf("Expected no pair between static bodies, got %d", len(pairs))
	}
}

func TestFindPairsSleepingBodies(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	a := createTestBox("a", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	b := createTestBox("b", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
	a.Sleep()
	b.Sleep()
	bodies := []*actor.RigidBody{a, b}
	insertAll(grid, bodies, 0)

	if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
		t.Errorf("Expected no pair between sleeping bodies, got %d", len(pairs))
	}

	// Un seul corps eveille suffit
	b.Awake()
	if pairs := grid.FindPairs(bodies); len(pairs) != 1 {
		t.Errorf("Expected 1 pair once a body wakes up, got %d", len(pairs))
	}
}

func TestFindPairsCollisionFilter(t *testing.T) {
	tests := []struct {
		name          string
		groupA, maskA int
		groupB, maskB int
		expected      int
	}{
		{"defaut", 1, -1, 1, -1, 1},
		{"groupes compatibles", 1, 2, 2, 1, 1},
		{"masque A refuse B", 1, 4, 2, 1, 0},
		{"masque B refuse A", 1, 2, 2, 4, 0},
		{"masque nul", 1, 0, 1, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewSpatialGrid(1.0, 16)
			a := createTestBox("a", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
			b := createTestBox("b", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4})
			a.CollisionGroup, a.CollisionMask = tt.groupA, tt.maskA
			b.CollisionGroup, b.CollisionMask = tt.groupB, tt.maskB
			bodies := []*actor.RigidBody{a, b}
			insertAll(grid, bodies, 0)

			if pairs := grid.FindPairs(bodies); len(pairs) != tt.expected {
				t.Errorf("Expected %d pairs, got %d", tt.expected, len(pairs))
			}
		})
	}
}

func TestFindPairsReuse(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	bodies := []*actor.RigidBody{
		createTestBox("a", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
		createTestBox("b", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.4, 0.4, 0.4}),
	}

	for i := 0; i < 3; i++ {
		insertAll(grid, bodies, 0)
		if pairs := grid.FindPairs(bodies); len(pairs) != 1 {
			t.Fatalf("Iteration %d: expected 1 pair, got %d", i, len(pairs))
		}
	}
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkFindPairs(b *testing.B) {
	grid := NewSpatialGrid(1.0, 4096)
	bodies := make([]*actor.RigidBody, 0, 1000)
	for i := 0; i < 1000; i++ {
		x := float64(i%10) * 0.9
		y := float64((i/10)%10) * 0.9
		z := float64(i/100) * 0.9
		bodies = append(bodies, createTestBox("box", mgl64.Vec3{x, y, z}, mgl64.Vec3{0.5, 0.5, 0.5}))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		insertAll(grid, bodies, 0.01)
		grid.FindPairs(bodies)
	}
}
