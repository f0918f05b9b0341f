// Package epa implements the Expanding Polytope Algorithm and contact manifold clipping.
//
// EPA runs after GJK found an overlap. It expands a polytope (starting from the GJK
// simplex) inside the Minkowski difference toward its boundary, and the face closest
// to the origin gives the minimum translation vector: contact normal and depth.
// GenerateManifold then turns the normal into 1-4 contact points with signed distances.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"fmt"

	"github.com/akmonengine/ogcsim/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion to prevent infinite loops.
	// Typical convergence: 5-15 iterations for boxes, more for rounded shapes.
	EPAMaxIterations = 64

	// EPAConvergenceTolerance is the distance gain under which the closest face is final
	EPAConvergenceTolerance = 1e-4

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	// This helps with numerical stability and axis-aligned collisions.
	NormalSnapThreshold = 1e-8
)

// Penetration is the minimum translation of B out of A along Normal (A toward B)
type Penetration struct {
	Normal     mgl64.Vec3
	Depth      float64
	Iterations int
}

// EPA computes the penetration of two overlapping convex sets from the final GJK simplex.
func EPA(a, b gjk.Convex, simplex *gjk.Simplex) (Penetration, error) {
	if simplex.Count < 4 {
		return degenerate(a, b, simplex), nil
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(simplex); err != nil {
		// A flat tetrahedron only shows up for shapes barely touching
		return degenerate(a, b, simplex), nil
	}

	for i := 0; i < EPAMaxIterations; i++ {
		closest := builder.faces[builder.FindClosestFaceIndex()]

		support := gjk.MinkowskiSupport(a, b, closest.Normal)
		gain := support.Dot(closest.Normal) - closest.Distance

		if gain < EPAConvergenceTolerance || !builder.AddPoint(support) {
			return Penetration{
				Normal:     snapNormalToAxis(closest.Normal),
				Depth:      max(closest.Distance, 0),
				Iterations: i + 1,
			}, nil
		}
	}

	return Penetration{}, fmt.Errorf("EPA failed to converge after %d iterations", EPAMaxIterations)
}

// degenerate estimates the penetration when GJK stopped on a point or a segment,
// which only happens for shapes barely touching
func degenerate(a, b gjk.Convex, simplex *gjk.Simplex) Penetration {
	if simplex.Count >= 2 {
		closest := simplex.Points[0]
		for i := 1; i < simplex.Count; i++ {
			if simplex.Points[i].LenSqr() < closest.LenSqr() {
				closest = simplex.Points[i]
			}
		}
		if closest.Len() > NormalSnapThreshold {
			return Penetration{Normal: closest.Normalize(), Depth: closest.Len()}
		}
	}

	normal := b.Center().Sub(a.Center())
	if normal.Len() < NormalSnapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	}
	return Penetration{Normal: normal.Normalize()}
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero
// and renormalizes it, so axis-aligned contacts do not jitter in the tangent plane.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if normal[i] > -NormalSnapThreshold && normal[i] < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	if normal.LenSqr() < 1e-16 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Normalize()
}
