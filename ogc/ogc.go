// Package ogc implements the proximity contact solver.
//
// Contact points closer than Radius push the pair apart with a smooth penalty
// instead of a hard constraint. The penalty and its critical damping give an
// impulse per point, computed from the velocities at the start of the solve,
// and the whole set is returned for the caller to apply in a single pass.
//
//	φ(d) = (1 - d/r)²
//	J    = m_eff · dt · (k·φ(d) - 2√k·v_n) / n_points
//
// m_eff is the effective mass at the centroid of the points in the band. J is
// never negative and never larger than
//
//	m_eff · max((1+e)·max(-v_n, 0), b - v_n) / n_points
//
// where e is the restitution above the restitution threshold and b the
// recovery speed min(ERP/dt · max(-d - slop, 0), MaxRecoverySpeed). A contact
// never leaves faster than restitution or the recovery speed allow.
package ogc

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultRadius               = 0.01
	DefaultStrength             = 1000.0
	DefaultERP                  = 0.2
	DefaultLinearSlop           = 0.005
	DefaultRestitutionThreshold = 1.0
	// DefaultMaxRecoverySpeed bounds the speed given back to push out a penetration
	DefaultMaxRecoverySpeed = 0.2
)

var ErrSettings = errors.New("ogc: invalid solver settings")

type Settings struct {
	// Radius is the proximity band, 0 disables the solver
	Radius float64
	// Strength is the penalty stiffness k, in 1/s²
	Strength float64
	// Friction enables Coulomb friction on proximity contacts
	Friction bool
	// ERP is the fraction of the penetration past LinearSlop recovered per sub-step
	ERP        float64
	LinearSlop float64
	// RestitutionThreshold is the closing speed under which contacts do not bounce
	RestitutionThreshold float64
	MaxRecoverySpeed     float64
}

func DefaultSettings() Settings {
	return Settings{
		Radius:               DefaultRadius,
		Strength:             DefaultStrength,
		Friction:             true,
		ERP:                  DefaultERP,
		LinearSlop:           DefaultLinearSlop,
		RestitutionThreshold: DefaultRestitutionThreshold,
		MaxRecoverySpeed:     DefaultMaxRecoverySpeed,
	}
}

func (s Settings) Validate() error {
	if s.Radius < 0 || math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("%w: radius %v", ErrSettings, s.Radius)
	}
	if !(s.Strength > 0) || math.IsInf(s.Strength, 0) {
		return fmt.Errorf("%w: strength %v must be > 0", ErrSettings, s.Strength)
	}
	switch {
	case !(s.ERP >= 0 && s.ERP <= 1):
		return fmt.Errorf("%w: erp %v outside [0, 1]", ErrSettings, s.ERP)
	case !(s.LinearSlop >= 0) || math.IsInf(s.LinearSlop, 0):
		return fmt.Errorf("%w: linear slop %v", ErrSettings, s.LinearSlop)
	case !(s.RestitutionThreshold >= 0) || math.IsInf(s.RestitutionThreshold, 0):
		return fmt.Errorf("%w: restitution threshold %v", ErrSettings, s.RestitutionThreshold)
	case !(s.MaxRecoverySpeed >= 0) || math.IsInf(s.MaxRecoverySpeed, 0):
		return fmt.Errorf("%w: max recovery speed %v", ErrSettings, s.MaxRecoverySpeed)
	}
	return nil
}

// Impulse is an impulse to apply to Body at the world point Point
type Impulse struct {
	Body    *actor.RigidBody
	Impulse mgl64.Vec3
	Point   mgl64.Vec3
}

type Result struct {
	Impulses []Impulse
	// Clamped counts the normal impulses cut down to the approach limit
	Clamped int
	// ClampedManifolds lists once each manifold with a clamped impulse
	ClampedManifolds []*constraint.Manifold
	// Iterations is 1 when at least one point produced a response
	Iterations int
	// NormalImpulse is the sum of the normal impulses
	NormalImpulse float64
}

type Solver struct {
	settings Settings
}

func NewSolver(settings Settings) (*Solver, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Solver{settings: settings}, nil
}

func (s *Solver) Settings() Settings {
	return s.settings
}

func (s *Solver) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// Enabled reports whether the solver has a proximity band at all
func (s *Solver) Enabled() bool {
	return s.settings.Radius > 0
}

// Penalty is φ(d) = (1 - d/r)², 0 beyond the radius
func Penalty(distance, radius float64) float64 {
	if radius <= 0 || distance > radius {
		return 0
	}
	x := 1 - distance/radius
	return x * x
}

// Solve computes the impulses of the manifolds for a sub-step of dt seconds.
// Bodies are not modified.
func (s *Solver) Solve(manifolds []*constraint.Manifold, dt float64) Result {
	var result Result
	if dt <= 0 || !s.Enabled() {
		return result
	}

	for _, manifold := range manifolds {
		s.solveManifold(manifold, dt, &result)
	}
	if len(result.Impulses) > 0 {
		result.Iterations = 1
	}

	return result
}

func (s *Solver) solveManifold(manifold *constraint.Manifold, dt float64, result *Result) {
	radius := s.settings.Radius
	k := s.settings.Strength
	damping := 2 * math.Sqrt(k)

	bodyA := manifold.BodyA
	bodyB := manifold.BodyB
	normal := manifold.Normal

	count := 0
	var centroid mgl64.Vec3
	for _, p := range manifold.Points {
		if p.Distance <= radius {
			centroid = centroid.Add(p.Position)
			count++
		}
	}
	if count == 0 {
		return
	}
	centroid = centroid.Mul(1 / float64(count))

	// The points share the effective mass at their centroid
	mass := constraint.EffectiveMass(bodyA, bodyB,
		centroid.Sub(bodyA.Transform.Position), centroid.Sub(bodyB.Transform.Position), normal, 0)
	if mass == 0 {
		return
	}
	share := mass / float64(count)

	restitution := constraint.ComputeRestitution(bodyA.Material, bodyB.Material)
	friction := constraint.ComputeFriction(bodyA.Material, bodyB.Material)
	clamped := false

	for _, p := range manifold.Points {
		if p.Distance > radius {
			continue
		}

		rA := p.Position.Sub(bodyA.Transform.Position)
		rB := p.Position.Sub(bodyB.Transform.Position)
		relative := bodyB.VelocityAt(p.Position).Sub(bodyA.VelocityAt(p.Position))
		vn := relative.Dot(normal)

		j := share * dt * (k*Penalty(p.Distance, radius) - damping*vn)
		if j <= 0 {
			continue
		}

		limit := share * math.Max(s.stopSpeed(vn, restitution), s.recoverySpeed(p.Distance, dt)-vn)
		if j > limit {
			// Separating faster than the recovery: nothing to push against
			if limit <= 0 {
				continue
			}
			j = limit
			result.Clamped++
			clamped = true
		}

		impulse := normal.Mul(j)
		result.NormalImpulse += j

		if s.settings.Friction && friction > 0 {
			tangent := relative.Sub(normal.Mul(vn))
			if speed := tangent.Len(); speed > 1e-9 {
				direction := tangent.Mul(-1 / speed)
				tMass := constraint.EffectiveMass(bodyA, bodyB, rA, rB, direction, 0)
				jt := math.Min(tMass*speed/float64(count), friction*j)
				impulse = impulse.Add(direction.Mul(jt))
			}
		}

		if bodyA.InverseMass() > 0 {
			result.Impulses = append(result.Impulses, Impulse{Body: bodyA, Impulse: impulse.Mul(-1), Point: p.Position})
		}
		if bodyB.InverseMass() > 0 {
			result.Impulses = append(result.Impulses, Impulse{Body: bodyB, Impulse: impulse, Point: p.Position})
		}
	}

	if clamped {
		result.ClampedManifolds = append(result.ClampedManifolds, manifold)
	}
}

// stopSpeed is the velocity change that ends the approach, with the bounce
// restitution allows above the threshold
func (s *Solver) stopSpeed(vn, restitution float64) float64 {
	closing := math.Max(-vn, 0)
	if closing <= s.settings.RestitutionThreshold {
		restitution = 0
	}
	return (1 + restitution) * closing
}

// recoverySpeed is the separation speed allowed to push out a penetration
func (s *Solver) recoverySpeed(distance, dt float64) float64 {
	bias := s.settings.ERP / dt * math.Max(-distance-s.settings.LinearSlop, 0)
	return math.Min(bias, s.settings.MaxRecoverySpeed)
}

// Apply applies the impulses in order without waking the bodies
func Apply(impulses []Impulse) {
	for _, impulse := range impulses {
		impulse.Body.ApplyContactImpulse(impulse.Impulse, impulse.Point)
	}
}
