package constraint

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Constraint is a velocity-level constraint solved by sequential impulses.
// PreSolve builds the rows for a sub-step, SolveVelocity runs one iteration.
type Constraint interface {
	PreSolve(dt float64, settings Settings)
	SolveVelocity()
}

// Settings drive the base solver
type Settings struct {
	Iterations int
	// ERP is the fraction of the position error corrected per sub-step
	ERP float64
	// CFM softens every row, 0 is rigid
	CFM float64
	// LinearSlop is the penetration left uncorrected to keep contacts alive
	LinearSlop float64
	// RestitutionThreshold is the closing speed under which contacts do not bounce
	RestitutionThreshold float64
}

func DefaultSettings() Settings {
	return Settings{
		Iterations:           10,
		ERP:                  0.2,
		CFM:                  0,
		LinearSlop:           0.005,
		RestitutionThreshold: 1.0,
	}
}

var ErrSettings = errors.New("constraint: invalid solver settings")

func (s Settings) Validate() error {
	switch {
	case s.Iterations < 1:
		return fmt.Errorf("%w: iterations %d < 1", ErrSettings, s.Iterations)
	case s.ERP < 0 || s.ERP > 1:
		return fmt.Errorf("%w: erp %v outside [0, 1]", ErrSettings, s.ERP)
	case s.CFM < 0:
		return fmt.Errorf("%w: cfm %v < 0", ErrSettings, s.CFM)
	case s.LinearSlop < 0:
		return fmt.Errorf("%w: linear slop %v < 0", ErrSettings, s.LinearSlop)
	case s.RestitutionThreshold < 0:
		return fmt.Errorf("%w: restitution threshold %v < 0", ErrSettings, s.RestitutionThreshold)
	}
	return nil
}

func ComputeRestitution(matA, matB actor.Material) float64 {
	// Average: a bouncy ball on a dead floor still bounces a little
	return (matA.Restitution + matB.Restitution) / 2.0
}

func ComputeFriction(matA, matB actor.Material) float64 {
	// Geometric mean, ice on anything stays slippery
	return math.Sqrt(matA.Friction * matB.Friction)
}

func ComputeRollingFriction(matA, matB actor.Material) float64 {
	return math.Max(matA.RollingFriction, matB.RollingFriction)
}

// EffectiveMass returns 1 / (J M⁻¹ Jᵀ + cfm) of a row pushing B along axis at
// rB and A the opposite way at rA, or 0 when nothing can move
func EffectiveMass(bodyA, bodyB *actor.RigidBody, rA, rB, axis mgl64.Vec3, cfm float64) float64 {
	rnA := rA.Cross(axis)
	rnB := rB.Cross(axis)

	k := bodyA.InverseMass() + bodyB.InverseMass() +
		bodyA.InverseInertiaWorld().Mul3x1(rnA).Dot(rnA) +
		bodyB.InverseInertiaWorld().Mul3x1(rnB).Dot(rnB)
	if k < 1e-12 {
		return 0
	}
	return 1.0 / (k + cfm)
}

func angularMass(bodyA, bodyB *actor.RigidBody, axis mgl64.Vec3, cfm float64) float64 {
	k := bodyA.InverseInertiaWorld().Mul3x1(axis).Dot(axis) +
		bodyB.InverseInertiaWorld().Mul3x1(axis).Dot(axis)
	if k < 1e-12 {
		return 0
	}
	return 1.0 / (k + cfm)
}

// applyPair applies impulse to B at pointB and its opposite to A at pointA
func applyPair(bodyA, bodyB *actor.RigidBody, impulse, pointA, pointB mgl64.Vec3) {
	bodyA.ApplyContactImpulse(impulse.Mul(-1), pointA)
	bodyB.ApplyContactImpulse(impulse, pointB)
}
