package main

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/ogcsim/scene"
)

// sampleScene drops a tilted crate and a rubber ball on the ground, next to a
// pendulum hanging from the world. Near contacts go to the proximity solver.
func sampleScene(name string) *scene.Scene {
	s := scene.New()
	s.Metadata.Name = name
	s.Metadata.Description = "tilted crate, bouncing ball and pendulum on a ground plane"
	s.Settings.HybridMode = true
	s.Settings.OGCContactRadius = 0.05

	ground := scene.DefaultRigidBody("ground")
	ground.Shape = scene.PlaneShape(mgl64.Vec3{0, 1, 0}, 0)
	ground.Mass = 0

	crate := scene.DefaultRigidBody("crate")
	crate.Shape = scene.BoxShape(mgl64.Vec3{1.5, 1.5, 1.5})
	crate.Transform.Position = mgl64.Vec3{-5, 5, -5}
	crate.Transform.Rotation = scene.QuatFromMgl(mgl64.QuatRotate(scene.DegreesToRadians(20), mgl64.Vec3{0, 0, 1}))
	crate.Mass = 27
	crate.PhysicsMaterial = "Wood"
	crate.VisualMaterial = "Red"

	ball := scene.DefaultRigidBody("ball")
	ball.Shape = scene.SphereShape(0.5)
	ball.Transform.Position = mgl64.Vec3{0, 3, 0}
	ball.PhysicsMaterial = "Rubber"
	ball.VisualMaterial = "Green"

	bob := scene.DefaultRigidBody("bob")
	bob.Shape = scene.SphereShape(0.25)
	bob.Transform.Position = mgl64.Vec3{4, 3, 0}
	bob.Mass = 2
	bob.PhysicsMaterial = "Metal"
	bob.VisualMaterial = "Blue"

	// Pivot at (3, 5, 0), BodyB empty means the world
	pendulum := scene.DefaultConstraint("pendulum", scene.ConstraintPointToPoint)
	pendulum.BodyA = "bob"
	pendulum.FrameA = scene.NewTransform(mgl64.Vec3{-1, 2, 0})
	pendulum.FrameB = scene.NewTransform(mgl64.Vec3{3, 5, 0})

	s.RigidBodies = []scene.RigidBody{ground, crate, ball, bob}
	s.Constraints = []scene.Constraint{pendulum}
	return s
}
