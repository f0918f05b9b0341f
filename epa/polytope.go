package epa

import (
	"fmt"
	"sync"

	"github.com/akmonengine/ogcsim/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a polytope triangle, indices into the builder vertices.
// Normal points outward and Distance is the distance of its plane to the origin.
type Face struct {
	Indices  [3]int
	Normal   mgl64.Vec3
	Distance float64
}

// edge is a directed edge of a face
type edge struct {
	From, To int
}

// PolytopeBuilder grows a convex polytope inside the Minkowski difference.
// Slices keep their capacity between uses from the pool.
type PolytopeBuilder struct {
	vertices []mgl64.Vec3
	faces    []Face
	horizon  []edge
	kept     []Face

	// interior stays inside the polytope while it only grows, faces are
	// oriented against it even when the origin lies on their plane
	interior mgl64.Vec3
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			vertices: make([]mgl64.Vec3, 0, 16),
			faces:    make([]Face, 0, 32),
			horizon:  make([]edge, 0, 16),
			kept:     make([]Face, 0, 32),
		}
	},
}

func (b *PolytopeBuilder) Reset() {
	b.vertices = b.vertices[:0]
	b.faces = b.faces[:0]
	b.horizon = b.horizon[:0]
	b.kept = b.kept[:0]
	b.interior = mgl64.Vec3{}
}

// BuildInitialFaces creates the 4 faces of the GJK tetrahedron
func (b *PolytopeBuilder) BuildInitialFaces(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return fmt.Errorf("invalid simplex count: %d (expected 4)", simplex.Count)
	}

	for i := 0; i < 4; i++ {
		b.vertices = append(b.vertices, simplex.Points[i])
		b.interior = b.interior.Add(simplex.Points[i])
	}
	b.interior = b.interior.Mul(0.25)

	volume := b.vertices[1].Sub(b.vertices[0]).Cross(b.vertices[2].Sub(b.vertices[0])).Dot(b.vertices[3].Sub(b.vertices[0]))
	if volume > -1e-12 && volume < 1e-12 {
		return fmt.Errorf("degenerate simplex: zero volume tetrahedron")
	}

	b.addFace(0, 1, 2)
	b.addFace(0, 2, 3)
	b.addFace(0, 3, 1)
	b.addFace(1, 3, 2)

	return nil
}

func (b *PolytopeBuilder) addFace(i, j, k int) {
	p0, p1, p2 := b.vertices[i], b.vertices[j], b.vertices[k]
	normal := p1.Sub(p0).Cross(p2.Sub(p0))

	if normal.LenSqr() < 1e-20 {
		// Sliver: keep it in the hull with a harmless orientation
		normal = p0.Sub(b.interior)
		if normal.LenSqr() < 1e-20 {
			normal = mgl64.Vec3{0, 1, 0}
		}
	}
	normal = normal.Normalize()

	if normal.Dot(p0.Sub(b.interior)) < 0 {
		normal = normal.Mul(-1)
		j, k = k, j
	}

	b.faces = append(b.faces, Face{
		Indices:  [3]int{i, j, k},
		Normal:   normal,
		Distance: p0.Dot(normal),
	})
}

// FindClosestFaceIndex returns the face closest to the origin, lowest index on ties
func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	closest := 0
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].Distance < b.faces[closest].Distance {
			closest = i
		}
	}
	return closest
}

// AddPoint removes every face the support point sees and stitches the horizon to it.
// It returns false when the point cannot grow the polytope.
func (b *PolytopeBuilder) AddPoint(support mgl64.Vec3) bool {
	for _, v := range b.vertices {
		if v.Sub(support).LenSqr() < 1e-18 {
			return false
		}
	}

	b.kept = b.kept[:0]
	b.horizon = b.horizon[:0]
	visible := 0

	for _, face := range b.faces {
		if face.Normal.Dot(support.Sub(b.vertices[face.Indices[0]])) > 1e-12 {
			visible++
			for e := 0; e < 3; e++ {
				b.toggleEdge(edge{From: face.Indices[e], To: face.Indices[(e+1)%3]})
			}
			continue
		}
		b.kept = append(b.kept, face)
	}

	if visible == 0 || len(b.horizon) == 0 {
		return false
	}

	index := len(b.vertices)
	b.vertices = append(b.vertices, support)
	b.faces, b.kept = b.kept, b.faces

	for _, e := range b.horizon {
		b.addFace(e.From, e.To, index)
	}

	return true
}

// toggleEdge keeps the edges seen once: an edge shared by two visible faces
// shows up in both directions and cancels out
func (b *PolytopeBuilder) toggleEdge(e edge) {
	for i, existing := range b.horizon {
		if existing.From == e.To && existing.To == e.From {
			b.horizon = append(b.horizon[:i], b.horizon[i+1:]...)
			return
		}
	}
	b.horizon = append(b.horizon, e)
}
