package ogcsim

import (
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// fieldForce returns what field does to body: a force, or an acceleration for
// gravity fields. ok is false when the field does not reach the body.
func fieldForce(field *scene.ForceField, body *actor.RigidBody) (value mgl64.Vec3, acceleration bool, ok bool) {
	if !field.Enabled || field.AffectedGroups&body.CollisionGroup == 0 {
		return mgl64.Vec3{}, false, false
	}

	offset := body.Transform.Position.Sub(field.Position)
	distance := offset.Len()

	switch field.Type {
	case scene.ForceFieldGravity:
		return field.Direction.Mul(field.Strength), true, true

	case scene.ForceFieldUniform:
		return field.Direction.Mul(field.Strength), false, true

	case scene.ForceFieldRadial:
		falloff, inside := fieldFalloff(field, distance)
		if !inside || distance < 1e-9 {
			return mgl64.Vec3{}, false, false
		}
		// Positive strength pushes away from the centre
		return offset.Mul(field.Strength * falloff / distance), false, true

	case scene.ForceFieldVortex:
		falloff, inside := fieldFalloff(field, distance)
		if !inside {
			return mgl64.Vec3{}, false, false
		}
		axis := field.Direction
		if axis.Len() < 1e-9 {
			axis = mgl64.Vec3{0, 1, 0}
		}
		swirl := axis.Normalize().Cross(offset)
		if swirl.Len() < 1e-9 {
			return mgl64.Vec3{}, false, false
		}
		return swirl.Normalize().Mul(field.Strength * falloff), false, true

	case scene.ForceFieldDrag:
		return body.Velocity.Mul(-field.Strength), false, true

	case scene.ForceFieldSpring:
		if field.Radius > 0 && distance > field.Radius {
			return mgl64.Vec3{}, false, false
		}
		return offset.Mul(-field.Strength), false, true
	}

	return mgl64.Vec3{}, false, false
}

// fieldFalloff is (1 - distance/Radius)^Falloff, 1 for an unbounded field
func fieldFalloff(field *scene.ForceField, distance float64) (float64, bool) {
	if field.Radius <= 0 {
		return 1, true
	}
	if distance > field.Radius {
		return 0, false
	}
	return math.Pow(1-distance/field.Radius, field.Falloff), true
}

// applyForceFields adds gravity and every field to the awake dynamic bodies
func applyForceFields(bodies []*actor.RigidBody, gravity mgl64.Vec3, fields []scene.ForceField, dt float64) {
	for _, body := range bodies {
		if !body.IsDynamic() || body.IsSleeping {
			continue
		}

		body.ApplyAcceleration(gravity, dt)
		for i := range fields {
			value, acceleration, ok := fieldForce(&fields[i], body)
			if !ok {
				continue
			}
			if acceleration {
				body.ApplyAcceleration(value, dt)
			} else {
				body.ApplyForce(value, dt)
			}
		}
	}
}
