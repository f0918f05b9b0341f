package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid transform: a position and a unit rotation.
// Scale is fixed at authoring time and is never simulated.
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a transform from a position and a rotation.
// The rotation is normalized, a zero quaternion becomes the identity.
func NewTransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	if rotation.Len() < 1e-12 {
		rotation = mgl64.QuatIdent()
	}
	rotation = rotation.Normalize()

	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}

// ToWorld maps a body-space point to world space
func (t Transform) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// ToLocal maps a world-space point to body space
func (t Transform) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(world.Sub(t.Position))
}

// Mul composes t with a frame expressed in t's space.
func (t Transform) Mul(local Transform) Transform {
	return NewTransformAt(t.ToWorld(local.Position), t.Rotation.Mul(local.Rotation))
}
