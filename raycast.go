package ogcsim

import (
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	raycastMaxIterations = 128
	raycastTolerance     = 1e-5
)

// RaycastResult is the nearest hit of a segment query. Normal faces the ray origin.
type RaycastResult struct {
	Hit        bool
	ObjectName string
	Point      mgl64.Vec3
	Normal     mgl64.Vec3
	Distance   float64
}

// raycast finds the nearest body crossed by the segment [from, to]. Ties
// keep the first body in store order.
func raycast(bodies []*actor.RigidBody, from, to mgl64.Vec3) RaycastResult {
	var result RaycastResult

	length := to.Sub(from).Len()
	if length < 1e-12 {
		return result
	}
	direction := to.Sub(from).Mul(1 / length)

	for _, body := range bodies {
		var distance float64
		var normal mgl64.Vec3
		var ok bool

		if plane, isPlane := body.Shape.(*actor.Plane); isPlane {
			distance, normal, ok = raycastPlane(body, plane, from, direction, length)
		} else {
			distance, normal, ok = sphereTrace(body, from, direction, length)
		}

		if ok && (!result.Hit || distance < result.Distance) {
			result = RaycastResult{
				Hit:        true,
				ObjectName: body.Name,
				Point:      from.Add(direction.Mul(distance)),
				Normal:     normal,
				Distance:   distance,
			}
		}
	}

	return result
}

func raycastPlane(body *actor.RigidBody, plane *actor.Plane, from, direction mgl64.Vec3, length float64) (float64, mgl64.Vec3, bool) {
	normal := body.Transform.Rotation.Rotate(plane.Normal)
	denominator := normal.Dot(direction)
	if math.Abs(denominator) < 1e-12 {
		return 0, mgl64.Vec3{}, false
	}

	t := -body.SignedDistance(from) / denominator
	if t < 0 || t > length {
		return 0, mgl64.Vec3{}, false
	}
	if denominator > 0 {
		normal = normal.Mul(-1)
	}
	return t, normal, true
}

// sphereTrace marches along the ray by the signed distance of the body,
// after a bounding box test. A ray starting inside hits at distance 0.
func sphereTrace(body *actor.RigidBody, from, direction mgl64.Vec3, length float64) (float64, mgl64.Vec3, bool) {
	aabb := body.Shape.GetAABB().Expand(raycastTolerance)
	if !aabb.IntersectsSegment(from, from.Add(direction.Mul(length))) {
		return 0, mgl64.Vec3{}, false
	}

	t := 0.0
	for range raycastMaxIterations {
		point := from.Add(direction.Mul(t))
		distance := body.SignedDistance(point)
		if distance < raycastTolerance {
			normal := sdfGradient(body, point)
			if normal.LenSqr() < 1e-18 {
				normal = direction.Mul(-1)
			}
			return t, normal.Normalize(), true
		}

		t += distance
		if t > length {
			break
		}
	}

	return 0, mgl64.Vec3{}, false
}
