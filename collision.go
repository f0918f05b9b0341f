package ogcsim

import (
	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/constraint"
	"github.com/akmonengine/ogcsim/epa"
	"github.com/akmonengine/ogcsim/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// gradientStep is the finite difference step of signed distance gradients
const gradientStep = 1e-5

// Detection drives one collision pass
type Detection struct {
	// Margin is the separation under which a pair produces contact points
	Margin float64
	// CCD grows the margin of each pair by its relative motion over Dt
	CCD bool
	Dt  float64
	// Workers runs the narrow phase on that many goroutines
	Workers int
}

func (d Detection) bodyMargin(body *actor.RigidBody) float64 {
	if !d.CCD {
		return d.Margin
	}
	return d.Margin + body.Velocity.Len()*d.Dt
}

func (d Detection) pairMargin(bodyA, bodyB *actor.RigidBody) float64 {
	if !d.CCD {
		return d.Margin
	}
	return d.Margin + bodyB.Velocity.Sub(bodyA.Velocity).Len()*d.Dt
}

// BroadPhase returns the candidate pairs of bodies, in body order
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody, detection Detection) []Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body, detection.bodyMargin(body))
	}

	return spatialGrid.FindPairs(bodies)
}

// NarrowPhase builds a manifold for every pair closer than its margin.
// Manifolds come out in pair order and are never empty.
func NarrowPhase(pairs []Pair, detection Detection) []*constraint.Manifold {
	results := make([]*constraint.Manifold, len(pairs))
	task(detection.Workers, pairs, func(i int, pair Pair) {
		results[i] = collidePair(pair, detection.pairMargin(pair.BodyA, pair.BodyB))
	})

	manifolds := make([]*constraint.Manifold, 0, len(pairs))
	for _, manifold := range results {
		if manifold != nil && len(manifold.Points) > 0 {
			manifolds = append(manifolds, manifold)
		}
	}

	return manifolds
}

func collidePair(pair Pair, margin float64) *constraint.Manifold {
	_, aIsPlane := pair.BodyA.Shape.(*actor.Plane)
	_, bIsPlane := pair.BodyB.Shape.(*actor.Plane)
	_, aIsSphere := pair.BodyA.Shape.(*actor.Sphere)
	_, bIsSphere := pair.BodyB.Shape.(*actor.Sphere)

	switch {
	case aIsPlane && bIsPlane:
		return nil
	case aIsPlane:
		return collidePlane(pair.BodyA, pair.BodyB, margin)
	case bIsPlane:
		return collidePlane(pair.BodyB, pair.BodyA, margin)
	case aIsSphere:
		return collideSphere(pair.BodyA, pair.BodyB, false, margin)
	case bIsSphere:
		return collideSphere(pair.BodyB, pair.BodyA, true, margin)
	}
	return collideConvex(pair.BodyA, pair.BodyB, margin)
}

// collidePlane tests the contact feature of object facing the plane.
// The plane becomes body A, the normal points toward object.
func collidePlane(planeBody, object *actor.RigidBody, margin float64) *constraint.Manifold {
	plane := planeBody.Shape.(*actor.Plane)
	normal := planeBody.Transform.Rotation.Rotate(plane.Normal)

	feature := object.Shape.GetContactFeature(object.Transform.InverseRotation.Rotate(normal.Mul(-1)))

	var points []constraint.ContactPoint
	for _, local := range feature {
		point := object.Transform.ToWorld(local)
		distance := planeBody.SignedDistance(point)
		if distance > margin {
			continue
		}
		points = append(points, constraint.ContactPoint{
			Position: point.Sub(normal.Mul(distance / 2)),
			Distance: distance,
		})
	}
	if len(points) == 0 {
		return nil
	}

	return &constraint.Manifold{
		BodyA:  planeBody,
		BodyB:  object,
		Normal: normal,
		Points: points,
	}
}

// collideSphere measures the sphere centre against the distance field of
// other. sphereIsB keeps the pair order of the broad phase.
func collideSphere(sphereBody, other *actor.RigidBody, sphereIsB bool, margin float64) *constraint.Manifold {
	sphere := sphereBody.Shape.(*actor.Sphere)
	center := sphereBody.Transform.Position

	distance := other.SignedDistance(center) - sphere.Radius
	if distance > margin {
		return nil
	}

	// Outward from other toward the sphere
	outward := sdfGradient(other, center)
	if outward.LenSqr() < 1e-18 {
		outward = center.Sub(other.Transform.Position)
		if outward.LenSqr() < 1e-18 {
			outward = mgl64.Vec3{0, 1, 0}
		}
	}
	outward = outward.Normalize()

	point := center.Sub(outward.Mul(sphere.Radius + distance/2))
	manifold := &constraint.Manifold{
		Points: []constraint.ContactPoint{{Position: point, Distance: distance}},
	}
	if sphereIsB {
		manifold.BodyA, manifold.BodyB, manifold.Normal = other, sphereBody, outward
	} else {
		manifold.BodyA, manifold.BodyB, manifold.Normal = sphereBody, other, outward.Mul(-1)
	}
	return manifold
}

// collideConvex runs GJK and EPA on A grown by margin, so pairs closer than
// the margin overlap, then clips the features along the EPA normal
func collideConvex(bodyA, bodyB *actor.RigidBody, margin float64) *constraint.Manifold {
	inflated := gjk.Inflated{Convex: bodyA, Margin: margin}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.GJK(inflated, bodyB, simplex) {
		return nil
	}

	penetration, err := epa.EPA(inflated, bodyB, simplex)
	if err != nil || penetration.Normal.LenSqr() < 1e-18 {
		return nil
	}

	points := epa.GenerateManifold(bodyA, bodyB, penetration.Normal, margin, margin-penetration.Depth)
	if len(points) == 0 {
		return nil
	}

	return &constraint.Manifold{
		BodyA:  bodyA,
		BodyB:  bodyB,
		Normal: penetration.Normal,
		Points: points,
	}
}

// sdfGradient is the central difference gradient of the body distance field
// at a world point, not normalized
func sdfGradient(body *actor.RigidBody, point mgl64.Vec3) mgl64.Vec3 {
	var gradient mgl64.Vec3
	for i := 0; i < 3; i++ {
		var step mgl64.Vec3
		step[i] = gradientStep
		gradient[i] = (body.SignedDistance(point.Add(step)) - body.SignedDistance(point.Sub(step))) / (2 * gradientStep)
	}
	return gradient
}
