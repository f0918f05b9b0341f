package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies move with their own velocity and push dynamic
	// bodies, but nothing pushes them back
	BodyTypeKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	case BodyTypeKinematic:
		return "kinematic"
	}
	return "unknown"
}

type Material struct {
	Friction         float64
	Restitution      float64 // 0= no rebound, 1= perfect restitution
	RollingFriction  float64
	SpinningFriction float64
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Name string

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	Velocity        mgl64.Vec3 // Linear velocity (m/s)
	AngularVelocity mgl64.Vec3 // rad/s

	// Per-axis multipliers applied to every velocity change
	LinearFactor  mgl64.Vec3
	AngularFactor mgl64.Vec3

	mass        float64
	inverseMass float64

	// Body-space diagonal inertia
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	LinearDamping  float64
	AngularDamping float64

	LinearSleepThreshold  float64
	AngularSleepThreshold float64
	IsSleeping            bool
	SleepTimer            float64

	// Physical properties
	Material Material
	BodyType BodyType

	CollisionGroup int
	CollisionMask  int
	IsTrigger      bool

	// Collision shape
	Shape ShapeInterface

	initial snapshot
}

type snapshot struct {
	transform       Transform
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3
}

// NewRigidBody creates a new rigid body with the given properties.
// A dynamic body with a zero mass becomes static, planes are always static.
func NewRigidBody(name string, transform Transform, shape ShapeInterface, bodyType BodyType, mass float64) *RigidBody {
	rb := &RigidBody{
		Name:                  name,
		PreviousTransform:     transform,
		Transform:             transform,
		Shape:                 shape,
		BodyType:              bodyType,
		LinearFactor:          mgl64.Vec3{1, 1, 1},
		AngularFactor:         mgl64.Vec3{1, 1, 1},
		LinearSleepThreshold:  0.8,
		AngularSleepThreshold: 1.0,
		CollisionGroup:        1,
		CollisionMask:         -1,
	}

	if shape.Type() == ShapeTypePlane || (bodyType == BodyTypeDynamic && mass <= 0) {
		rb.BodyType = BodyTypeStatic
	}

	rb.SetMassProperties(mass, mgl64.Vec3{})
	rb.Shape.ComputeAABB(rb.Transform)
	rb.Capture()

	return rb
}

// SetMassProperties sets mass and the body-space diagonal inertia.
// A zero inertia is derived from the shape. Only dynamic bodies keep their
// mass: static and kinematic bodies get a zero mass, inverse mass and inertia,
// so that mass is 0 exactly when inverse mass is.
func (rb *RigidBody) SetMassProperties(mass float64, inertia mgl64.Vec3) {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) || rb.BodyType != BodyTypeDynamic {
		mass = 0
	}
	rb.mass = mass
	rb.inverseMass = 0
	if rb.BodyType == BodyTypeDynamic && mass > 0 {
		rb.inverseMass = 1.0 / mass
	}

	if mass == 0 {
		inertia = mgl64.Vec3{}
	} else if inertia == (mgl64.Vec3{}) {
		inertia = rb.Shape.ComputeInertia(mass)
	}
	rb.InertiaLocal = mgl64.Diag3(inertia)

	var inverse mgl64.Vec3
	if rb.inverseMass > 0 {
		for i := 0; i < 3; i++ {
			if inertia[i] > 0 {
				inverse[i] = 1.0 / inertia[i]
			}
		}
	}
	rb.InverseInertiaLocal = mgl64.Diag3(inverse)
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

// InverseMass is exactly 0 for static, kinematic and massless bodies
func (rb *RigidBody) InverseMass() float64 {
	return rb.inverseMass
}

func (rb *RigidBody) IsDynamic() bool {
	return rb.BodyType == BodyTypeDynamic
}

// IsActive reports whether the body takes part in the simulation this step
func (rb *RigidBody) IsActive() bool {
	return rb.BodyType != BodyTypeStatic && !rb.IsSleeping
}

// Capture stores the current state as the one Restore returns to
func (rb *RigidBody) Capture() {
	rb.initial = snapshot{
		transform:       rb.Transform,
		velocity:        rb.Velocity,
		angularVelocity: rb.AngularVelocity,
	}
}

// Restore returns the body to its captured state, awake
func (rb *RigidBody) Restore() {
	rb.Transform = rb.initial.transform
	rb.PreviousTransform = rb.initial.transform
	rb.Velocity = rb.initial.velocity
	rb.AngularVelocity = rb.initial.angularVelocity
	rb.IsSleeping = false
	rb.SleepTimer = 0
	rb.Shape.ComputeAABB(rb.Transform)
}

// TrySleep puts a dynamic body to sleep once it stayed under both
// thresholds for timeThreshold seconds. It returns true when the body just fell asleep.
func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64) bool {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return false
	}

	if rb.Velocity.Len() < rb.LinearSleepThreshold && rb.AngularVelocity.Len() < rb.AngularSleepThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
			return true
		}
	} else {
		rb.SleepTimer = 0
	}
	return false
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// Integrate advances the pose with semi-implicit Euler from the current velocities
func (rb *RigidBody) Integrate(dt float64) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform = rb.Transform

	if rb.BodyType == BodyTypeDynamic {
		rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.LinearDamping * dt))
		rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.AngularDamping * dt))
	}

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()

	rb.Shape.ComputeAABB(rb.Transform)
}

// ApplyForce turns a force applied for dt seconds into a velocity change
func (rb *RigidBody) ApplyForce(force mgl64.Vec3, dt float64) {
	if rb.inverseMass == 0 || rb.IsSleeping {
		return
	}
	rb.Velocity = rb.Velocity.Add(mulComponents(force.Mul(rb.inverseMass*dt), rb.LinearFactor))
}

// ApplyAcceleration changes the velocity independently of the mass
func (rb *RigidBody) ApplyAcceleration(acceleration mgl64.Vec3, dt float64) {
	if rb.inverseMass == 0 || rb.IsSleeping {
		return
	}
	rb.Velocity = rb.Velocity.Add(mulComponents(acceleration.Mul(dt), rb.LinearFactor))
}

// ApplyImpulse wakes the body and applies impulse at the world point
func (rb *RigidBody) ApplyImpulse(impulse mgl64.Vec3, point mgl64.Vec3) {
	if rb.inverseMass == 0 {
		return
	}
	rb.Awake()
	rb.ApplyContactImpulse(impulse, point)
}

func (rb *RigidBody) ApplyCentralImpulse(impulse mgl64.Vec3) {
	rb.ApplyImpulse(impulse, rb.Transform.Position)
}

func (rb *RigidBody) ApplyTorqueImpulse(torque mgl64.Vec3) {
	if rb.inverseMass == 0 {
		return
	}
	rb.Awake()
	rb.ApplyAngularImpulse(torque)
}

// ApplyContactImpulse changes the velocities without touching the sleep state,
// the solvers use it every iteration
func (rb *RigidBody) ApplyContactImpulse(impulse mgl64.Vec3, point mgl64.Vec3) {
	if rb.inverseMass == 0 {
		return
	}
	rb.Velocity = rb.Velocity.Add(mulComponents(impulse.Mul(rb.inverseMass), rb.LinearFactor))

	r := point.Sub(rb.Transform.Position)
	rb.ApplyAngularImpulse(r.Cross(impulse))
}

// ApplyAngularImpulse changes the angular velocity only, without waking the body
func (rb *RigidBody) ApplyAngularImpulse(torque mgl64.Vec3) {
	if rb.inverseMass == 0 {
		return
	}
	delta := rb.InverseInertiaWorld().Mul3x1(torque)
	rb.AngularVelocity = rb.AngularVelocity.Add(mulComponents(delta, rb.AngularFactor))
}

// VelocityAt returns the world velocity of the material point at point
func (rb *RigidBody) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	r := point.Sub(rb.Transform.Position)
	return rb.Velocity.Add(rb.AngularVelocity.Cross(r))
}

func (rb *RigidBody) Center() mgl64.Vec3 {
	return rb.Transform.Position
}

func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localSupport := rb.Shape.Support(rb.Transform.InverseRotation.Rotate(direction))
	return rb.Transform.ToWorld(localSupport)
}

// SignedDistance evaluates the shape distance field at a world point
func (rb *RigidBody) SignedDistance(point mgl64.Vec3) float64 {
	return rb.Shape.SignedDistance(rb.Transform.ToLocal(point))
}

func (rb *RigidBody) InertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if rb.inverseMass == 0 {
		return mgl64.Mat3{}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

func mulComponents(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
