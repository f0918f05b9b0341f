package constraint

import (
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// JointType selects which axes of frame A a joint locks, limits or frees
type JointType int

const (
	JointPointToPoint JointType = iota
	JointHinge
	JointSlider
	JointConeTwist
	JointGeneric6DOF
	JointFixed
)

func (t JointType) String() string {
	switch t {
	case JointPointToPoint:
		return "point_to_point"
	case JointHinge:
		return "hinge"
	case JointSlider:
		return "slider"
	case JointConeTwist:
		return "cone_twist"
	case JointGeneric6DOF:
		return "generic_6dof"
	case JointFixed:
		return "fixed"
	}
	return "unknown"
}

type AxisMode int

const (
	AxisFree AxisMode = iota
	AxisLocked
	AxisLimited
)

// Unbounded is the limit used for axes without a bound
const Unbounded = 1e30

// Joint ties BodyA to BodyB, or to the world when BodyB is nil. FrameA and
// FrameB are expressed in their body space (world space for the world).
// Axes 0-2 are linear along frame A, 3-5 angular around frame A.
type Joint struct {
	Name  string
	Type  JointType
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	FrameA actor.Transform
	FrameB actor.Transform

	LinearLower, LinearUpper   mgl64.Vec3
	AngularLower, AngularUpper mgl64.Vec3

	BreakingImpulseThreshold float64
	Enabled                  bool

	// Broken is set once, when the accumulated impulse exceeded the threshold
	Broken bool
	// AccumulatedImpulse is the impulse magnitude of the last resolution
	AccumulatedImpulse float64

	rows  []jointRow
	world *actor.RigidBody
}

type jointRow struct {
	angular  bool
	axis     mgl64.Vec3
	pointA   mgl64.Vec3
	pointB   mgl64.Vec3
	mass     float64
	target   float64
	lower    float64
	upper    float64
	impulse  float64
	previous float64
}

// NewJoint creates an enabled joint with unbounded limits and threshold
func NewJoint(name string, jointType JointType, bodyA, bodyB *actor.RigidBody) *Joint {
	return &Joint{
		Name:                     name,
		Type:                     jointType,
		BodyA:                    bodyA,
		BodyB:                    bodyB,
		FrameA:                   actor.NewTransform(),
		FrameB:                   actor.NewTransform(),
		LinearLower:              mgl64.Vec3{-Unbounded, -Unbounded, -Unbounded},
		LinearUpper:              mgl64.Vec3{Unbounded, Unbounded, Unbounded},
		AngularLower:             mgl64.Vec3{-Unbounded, -Unbounded, -Unbounded},
		AngularUpper:             mgl64.Vec3{Unbounded, Unbounded, Unbounded},
		BreakingImpulseThreshold: Unbounded,
		Enabled:                  true,
	}
}

// IsActive reports whether the joint takes part in the solve
func (j *Joint) IsActive() bool {
	return j.Enabled && !j.Broken && j.BodyA != nil
}

// Rearm clears the broken state and the last impulse
func (j *Joint) Rearm() {
	j.Broken = false
	j.AccumulatedImpulse = 0
}

// AxisModes maps the joint type onto its six axes
func (j *Joint) AxisModes() [6]AxisMode {
	const (
		F = AxisFree
		L = AxisLocked
		M = AxisLimited
	)

	switch j.Type {
	case JointPointToPoint:
		return [6]AxisMode{L, L, L, F, F, F}
	case JointFixed:
		return [6]AxisMode{L, L, L, L, L, L}
	case JointHinge:
		return [6]AxisMode{L, L, L, L, L, M}
	case JointSlider:
		return [6]AxisMode{M, L, L, M, L, L}
	case JointConeTwist:
		return [6]AxisMode{L, L, L, M, M, M}
	}

	var modes [6]AxisMode
	for i := 0; i < 3; i++ {
		modes[i] = genericMode(j.LinearLower[i], j.LinearUpper[i])
		modes[i+3] = genericMode(j.AngularLower[i], j.AngularUpper[i])
	}
	return modes
}

func genericMode(lower, upper float64) AxisMode {
	switch {
	case lower == upper:
		return AxisLocked
	case lower > upper:
		return AxisFree
	}
	return AxisLimited
}

func (j *Joint) other() *actor.RigidBody {
	if j.BodyB != nil {
		return j.BodyB
	}
	if j.world == nil {
		j.world = actor.NewRigidBody("", actor.NewTransform(), &actor.Sphere{}, actor.BodyTypeStatic, 0)
	}
	return j.world
}

// Error returns the position error of frame B in frame A: the offset along
// each frame A axis and the small-angle rotation around each of them
func (j *Joint) Error() (linear, angular mgl64.Vec3) {
	frameA := j.BodyA.Transform.Mul(j.FrameA)
	frameB := j.other().Transform.Mul(j.FrameB)

	linear = frameA.ToLocal(frameB.Position)

	relative := frameA.InverseRotation.Mul(frameB.Rotation)
	if relative.W < 0 {
		relative = relative.Scale(-1)
	}
	angular = relative.V.Mul(2)
	return linear, angular
}

func (j *Joint) PreSolve(dt float64, settings Settings) {
	j.rows = j.rows[:0]
	if !j.IsActive() {
		return
	}

	bodyA := j.BodyA
	bodyB := j.other()
	frameA := bodyA.Transform.Mul(j.FrameA)
	frameB := bodyB.Transform.Mul(j.FrameB)
	linearError, angularError := j.Error()
	modes := j.AxisModes()

	for i := 0; i < 6; i++ {
		if modes[i] == AxisFree {
			continue
		}

		var basis mgl64.Vec3
		basis[i%3] = 1
		row := jointRow{
			angular: i >= 3,
			axis:    frameA.Rotation.Rotate(basis),
			pointA:  frameA.Position,
			pointB:  frameB.Position,
			lower:   math.Inf(-1),
			upper:   math.Inf(1),
		}

		position := linearError[i%3]
		lower, upper := j.LinearLower[i%3], j.LinearUpper[i%3]
		if row.angular {
			position = angularError[i%3]
			lower, upper = j.AngularLower[i%3], j.AngularUpper[i%3]
		}

		// C is the violation the row works against
		var c float64
		switch {
		case modes[i] == AxisLocked && j.Type == JointGeneric6DOF:
			c = position - lower
		case modes[i] == AxisLocked:
			c = position
		case position < lower:
			c = position - lower
			row.lower = 0
		case position > upper:
			c = position - upper
			row.upper = 0
		default:
			continue
		}

		if row.angular {
			row.mass = angularMass(bodyA, bodyB, row.axis, settings.CFM)
		} else {
			row.mass = EffectiveMass(bodyA, bodyB, row.pointA.Sub(bodyA.Transform.Position), row.pointB.Sub(bodyB.Transform.Position), row.axis, settings.CFM)
		}
		if row.mass == 0 {
			continue
		}
		row.target = -settings.ERP / dt * c

		j.rows = append(j.rows, row)
	}
}

func (j *Joint) SolveVelocity() {
	bodyA := j.BodyA
	bodyB := j.other()

	for i := range j.rows {
		row := &j.rows[i]

		var velocity float64
		if row.angular {
			velocity = bodyB.AngularVelocity.Sub(bodyA.AngularVelocity).Dot(row.axis)
		} else {
			velocity = bodyB.VelocityAt(row.pointB).Sub(bodyA.VelocityAt(row.pointA)).Dot(row.axis)
		}

		row.previous = row.impulse
		row.impulse = mgl64.Clamp(row.impulse+(row.target-velocity)*row.mass, row.lower, row.upper)
		delta := row.axis.Mul(row.impulse - row.previous)

		if row.angular {
			bodyA.ApplyAngularImpulse(delta.Mul(-1))
			bodyB.ApplyAngularImpulse(delta)
		} else {
			applyPair(bodyA, bodyB, delta, row.pointA, row.pointB)
		}
	}
}

// PostSolve records the accumulated impulse and breaks the joint when it
// exceeds the threshold. It returns true only on the step the joint breaks.
func (j *Joint) PostSolve() bool {
	var sum float64
	for _, row := range j.rows {
		sum += row.impulse * row.impulse
	}
	j.AccumulatedImpulse = math.Sqrt(sum)

	if !j.Broken && j.AccumulatedImpulse > j.BreakingImpulseThreshold {
		j.Broken = true
		return true
	}
	return false
}
