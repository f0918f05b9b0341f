package epa

import (
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxManifoldPoints bounds the size of a manifold
const MaxManifoldPoints = 4

// GenerateManifold creates contact points for a pair using Sutherland-Hodgman clipping.
//
// Algorithm:
//  1. Get the contact features of each shape along the normal (point, edge or face)
//  2. The feature with more vertices becomes the reference, the other the incident
//  3. Clip the incident feature against the side planes of the reference face
//  4. Measure each clipped point against the reference plane, keep those within margin
//  5. Reduce to 4 points if needed
//
// When neither feature is a face, a single point halfway between the two
// support points is used with fallbackDistance.
//
// Parameters:
//   - bodyA, bodyB: The two bodies
//   - normal: Contact normal (from A toward B)
//   - margin: points separated by more than margin are discarded
//   - fallbackDistance: signed distance of the single point fallback
func GenerateManifold(bodyA, bodyB *actor.RigidBody, normal mgl64.Vec3, margin, fallbackDistance float64) []constraint.ContactPoint {
	featureA := worldFeature(bodyA, normal)
	featureB := worldFeature(bodyB, normal.Mul(-1))

	reference, incident := featureA, featureB
	referenceNormal := normal
	if len(featureB) > len(featureA) {
		reference, incident = featureB, featureA
		referenceNormal = normal.Mul(-1)
	}

	var points []constraint.ContactPoint
	if len(reference) >= 3 {
		// The face normal is more reliable than the EPA normal for the side planes
		faceNormal := reference[1].Sub(reference[0]).Cross(reference[2].Sub(reference[0]))
		if faceNormal.LenSqr() > 1e-12 {
			faceNormal = faceNormal.Normalize()
			if faceNormal.Dot(referenceNormal) < 0 {
				faceNormal = faceNormal.Mul(-1)
			}
			referenceNormal = faceNormal
		}

		clipped := clipIncidentAgainstReference(incident, reference, referenceNormal)
		origin := reference[0]

		for _, point := range clipped {
			distance := point.Sub(origin).Dot(referenceNormal)
			if distance > margin {
				continue
			}
			// Halfway between the incident point and its projection on the reference
			position := point.Sub(referenceNormal.Mul(distance / 2))
			points = append(points, constraint.ContactPoint{Position: position, Distance: distance})
		}
	}

	if len(points) == 0 {
		if fallbackDistance > margin {
			return nil
		}
		supportA := bodyA.SupportWorld(normal)
		supportB := bodyB.SupportWorld(normal.Mul(-1))
		return []constraint.ContactPoint{{
			Position: supportA.Add(supportB).Mul(0.5),
			Distance: fallbackDistance,
		}}
	}

	if len(points) > MaxManifoldPoints {
		points = reduceTo4Points(points, normal)
	}

	return points
}

func worldFeature(body *actor.RigidBody, direction mgl64.Vec3) []mgl64.Vec3 {
	local := body.Shape.GetContactFeature(body.Transform.InverseRotation.Rotate(direction))
	world := make([]mgl64.Vec3, len(local))
	for i, p := range local {
		world[i] = body.Transform.ToWorld(p)
	}
	return world
}

// clipIncidentAgainstReference trims the incident polygon to the prism spanned
// by the reference face along its normal
func clipIncidentAgainstReference(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	output := append([]mgl64.Vec3(nil), incident...)
	center := computeCenter(reference)

	for i := 0; i < len(reference) && len(output) > 0; i++ {
		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		clipNormal := v2.Sub(v1).Cross(normal)
		if clipNormal.LenSqr() < 1e-16 {
			continue
		}
		clipNormal = clipNormal.Normalize()
		if center.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}

		output = clipPolygonAgainstPlane(output, v1, clipNormal)
	}

	return output
}

// clipPolygonAgainstPlane implements Sutherland-Hodgman for a single plane,
// keeping the side planeNormal points to. Segments and points work too.
func clipPolygonAgainstPlane(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	const tolerance = 1e-6

	if len(polygon) == 1 {
		if polygon[0].Sub(planePoint).Dot(planeNormal) >= -tolerance {
			return polygon
		}
		return nil
	}

	var output []mgl64.Vec3
	edges := len(polygon)
	if edges == 2 {
		// A segment has a single edge
		edges = 1
	}

	for i := 0; i < edges; i++ {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -tolerance {
			output = append(output, current)
		}
		if (currentDist >= -tolerance) != (nextDist >= -tolerance) {
			output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
		if edges == 1 && nextDist >= -tolerance {
			output = append(output, next)
		}
	}

	return output
}

// lineIntersectPlane calculates the intersection between a line segment and a plane
func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	dir := p2.Sub(p1)
	denom := dir.Dot(planeNormal)
	if math.Abs(denom) < 1e-10 {
		return p1
	}

	t := -p1.Sub(planePoint).Dot(planeNormal) / denom
	return p1.Add(dir.Mul(mgl64.Clamp(t, 0, 1)))
}

// computeCenter calculates the centroid of a set of points
func computeCenter(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{0, 0, 0}
	}

	sum := mgl64.Vec3{0, 0, 0}
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

// reduceTo4Points keeps the deepest point, then the points spanning the
// largest area in the contact plane, in their original order
func reduceTo4Points(points []constraint.ContactPoint, normal mgl64.Vec3) []constraint.ContactPoint {
	tangent1, tangent2 := actor.TangentBasis(normal)
	project := func(p mgl64.Vec3) mgl64.Vec2 {
		return mgl64.Vec2{p.Dot(tangent1), p.Dot(tangent2)}
	}

	selected := [MaxManifoldPoints]int{}
	used := make([]bool, len(points))

	deepest := 0
	for i, p := range points {
		if p.Distance < points[deepest].Distance {
			deepest = i
		}
	}
	selected[0] = deepest
	used[deepest] = true

	pick := func(score func(i int) float64) int {
		best, bestScore := -1, math.Inf(-1)
		for i := range points {
			if used[i] {
				continue
			}
			if s := score(i); s > bestScore {
				best, bestScore = i, s
			}
		}
		used[best] = true
		return best
	}

	a := project(points[selected[0]].Position)
	selected[1] = pick(func(i int) float64 {
		return project(points[i].Position).Sub(a).LenSqr()
	})

	b := project(points[selected[1]].Position)
	cross := func(o, p, q mgl64.Vec2) float64 {
		return (p[0]-o[0])*(q[1]-o[1]) - (p[1]-o[1])*(q[0]-o[0])
	}
	selected[2] = pick(func(i int) float64 {
		return math.Abs(cross(a, b, project(points[i].Position)))
	})

	c := project(points[selected[2]].Position)
	side := cross(a, b, c)
	selected[3] = pick(func(i int) float64 {
		// Prefer the point on the far side of AB from C
		return -side * cross(a, b, project(points[i].Position))
	})

	result := make([]constraint.ContactPoint, 0, MaxManifoldPoints)
	for i := range points {
		if used[i] {
			result = append(result, points[i])
		}
	}
	return result
}
