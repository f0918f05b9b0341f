package ogcsim

import (
	"fmt"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/constraint"
	"github.com/akmonengine/ogcsim/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// jointEntry is an installed constraint. Bodies are bound by name at every
// sub-step so a removed body disables the joint instead of keeping it alive.
type jointEntry struct {
	bodyA string
	bodyB string
	joint *constraint.Joint
}

// ConstraintInfo is a copy of the state of an installed constraint
type ConstraintInfo struct {
	Name               string
	Type               scene.ConstraintType
	BodyA              string
	BodyB              string
	Enabled            bool
	Broken             bool
	AccumulatedImpulse float64
}

func installTransform(t scene.Transform) actor.Transform {
	return actor.NewTransformAt(t.Position, t.Rotation.Mgl())
}

// installBody builds the simulated body of a validated record. Zero
// sleeping thresholds fall back to the scene settings.
func installBody(record scene.RigidBody, materials []scene.PhysicsMaterial, settings scene.SimulationSettings) (*actor.RigidBody, error) {
	shape, err := record.Shape.Collider()
	if err != nil {
		return nil, fmt.Errorf("rigid body %q: %w", record.Name, err)
	}

	var material *scene.PhysicsMaterial
	for i := range materials {
		if materials[i].Name == record.PhysicsMaterial {
			material = &materials[i]
			break
		}
	}
	if material == nil {
		return nil, fmt.Errorf("rigid body %q: physics material %q does not exist", record.Name, record.PhysicsMaterial)
	}

	bodyType := actor.BodyTypeDynamic
	switch {
	case material.IsStatic:
		bodyType = actor.BodyTypeStatic
	case material.IsKinematic:
		bodyType = actor.BodyTypeKinematic
	}

	body := actor.NewRigidBody(record.Name, installTransform(record.Transform), shape, bodyType, record.Mass)
	body.SetMassProperties(record.Mass, record.InertiaTensor)

	body.LinearFactor = orOnes(record.LinearFactor)
	body.AngularFactor = orOnes(record.AngularFactor)
	body.LinearDamping = record.LinearDamping
	body.AngularDamping = record.AngularDamping

	body.LinearSleepThreshold = record.LinearSleepingThreshold
	if body.LinearSleepThreshold == 0 {
		body.LinearSleepThreshold = settings.SleepingLinearThreshold
	}
	body.AngularSleepThreshold = record.AngularSleepingThreshold
	if body.AngularSleepThreshold == 0 {
		body.AngularSleepThreshold = settings.SleepingAngularThreshold
	}

	body.Material = actor.Material{
		Friction:         material.Friction,
		Restitution:      material.Restitution,
		RollingFriction:  material.RollingFriction,
		SpinningFriction: material.SpinningFriction,
	}
	body.CollisionGroup = record.CollisionGroup
	body.CollisionMask = record.CollisionMask
	body.IsTrigger = record.IsTrigger

	if body.BodyType != actor.BodyTypeStatic {
		body.Velocity = record.LinearVelocity
		body.AngularVelocity = record.AngularVelocity
	}
	body.Capture()

	return body, nil
}

func orOnes(v mgl64.Vec3) mgl64.Vec3 {
	if v == (mgl64.Vec3{}) {
		return mgl64.Vec3{1, 1, 1}
	}
	return v
}

var jointTypes = map[scene.ConstraintType]constraint.JointType{
	scene.ConstraintPointToPoint: constraint.JointPointToPoint,
	scene.ConstraintHinge:        constraint.JointHinge,
	scene.ConstraintSlider:       constraint.JointSlider,
	scene.ConstraintConeTwist:    constraint.JointConeTwist,
	scene.ConstraintGeneric6DOF:  constraint.JointGeneric6DOF,
	scene.ConstraintFixed:        constraint.JointFixed,
}

// installJoint builds an unbound joint from a validated record
func installJoint(record scene.Constraint) (*jointEntry, error) {
	jointType, ok := jointTypes[record.Type]
	if !ok {
		return nil, fmt.Errorf("constraint %q: unsupported type %s", record.Name, record.Type)
	}

	joint := constraint.NewJoint(record.Name, jointType, nil, nil)
	joint.FrameA = installTransform(record.FrameA)
	joint.FrameB = installTransform(record.FrameB)
	joint.LinearLower = record.LinearLowerLimit
	joint.LinearUpper = record.LinearUpperLimit
	joint.AngularLower = record.AngularLowerLimit
	joint.AngularUpper = record.AngularUpperLimit
	joint.BreakingImpulseThreshold = record.BreakingImpulseThreshold
	joint.Enabled = record.Enabled

	return &jointEntry{bodyA: record.BodyA, bodyB: record.BodyB, joint: joint}, nil
}

func (j *jointEntry) info() ConstraintInfo {
	var constraintType scene.ConstraintType
	for sceneType, jointType := range jointTypes {
		if jointType == j.joint.Type {
			constraintType = sceneType
		}
	}

	return ConstraintInfo{
		Name:               j.joint.Name,
		Type:               constraintType,
		BodyA:              j.bodyA,
		BodyB:              j.bodyB,
		Enabled:            j.joint.Enabled,
		Broken:             j.joint.Broken,
		AccumulatedImpulse: j.joint.AccumulatedImpulse,
	}
}
