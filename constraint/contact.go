package constraint

import (
	"math"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactPoint is a world-space contact with its signed separation:
// positive when separated, negative when penetrating
type ContactPoint struct {
	Position mgl64.Vec3
	Distance float64
}

// Manifold gathers the contact points of one body pair for one sub-step.
// Normal points from BodyA toward BodyB.
type Manifold struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Normal mgl64.Vec3
	Points []ContactPoint
}

// MinDistance is the deepest signed distance of the manifold, +Inf when empty
func (m *Manifold) MinDistance() float64 {
	minimum := math.Inf(1)
	for _, p := range m.Points {
		minimum = math.Min(minimum, p.Distance)
	}
	return minimum
}

// Other returns the body of the pair that is not body
func (m *Manifold) Other(body *actor.RigidBody) *actor.RigidBody {
	if m.BodyA == body {
		return m.BodyB
	}
	return m.BodyA
}

type contactRow struct {
	point    mgl64.Vec3
	rA, rB   mgl64.Vec3
	target   float64
	normal   float64
	tangent  [2]float64
	nMass    float64
	tMass    [2]float64
	distance float64
}

// ContactConstraint is the velocity constraint of a manifold: one normal row
// and two friction rows per point, plus an optional rolling resistance
type ContactConstraint struct {
	Manifold *Manifold

	tangents        [2]mgl64.Vec3
	rows            []contactRow
	friction        float64
	rollingFriction float64
	rollingImpulse  float64
}

func NewContactConstraint(manifold *Manifold) *ContactConstraint {
	return &ContactConstraint{Manifold: manifold}
}

// PreSolve computes effective masses and velocity targets. A penetrating point
// is pushed out by ERP of its depth past the slop, a separated point may close
// its gap within the sub-step (speculative contact).
func (c *ContactConstraint) PreSolve(dt float64, settings Settings) {
	bodyA := c.Manifold.BodyA
	bodyB := c.Manifold.BodyB
	normal := c.Manifold.Normal

	c.tangents[0], c.tangents[1] = actor.TangentBasis(normal)
	c.friction = ComputeFriction(bodyA.Material, bodyB.Material)
	c.rollingFriction = ComputeRollingFriction(bodyA.Material, bodyB.Material)
	c.rollingImpulse = 0
	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)

	c.rows = c.rows[:0]
	for _, point := range c.Manifold.Points {
		row := contactRow{
			point:    point.Position,
			rA:       point.Position.Sub(bodyA.Transform.Position),
			rB:       point.Position.Sub(bodyB.Transform.Position),
			distance: point.Distance,
		}
		row.nMass = EffectiveMass(bodyA, bodyB, row.rA, row.rB, normal, settings.CFM)
		if row.nMass == 0 {
			continue
		}
		for i := 0; i < 2; i++ {
			row.tMass[i] = EffectiveMass(bodyA, bodyB, row.rA, row.rB, c.tangents[i], settings.CFM)
		}

		vn := bodyB.VelocityAt(point.Position).Sub(bodyA.VelocityAt(point.Position)).Dot(normal)

		if point.Distance > 0 {
			row.target = -point.Distance / dt
		} else {
			row.target = settings.ERP / dt * math.Max(-point.Distance-settings.LinearSlop, 0)
			if -vn > settings.RestitutionThreshold {
				row.target = math.Max(row.target, -restitution*vn)
			}
		}

		c.rows = append(c.rows, row)
	}
}

func (c *ContactConstraint) SolveVelocity() {
	bodyA := c.Manifold.BodyA
	bodyB := c.Manifold.BodyB
	normal := c.Manifold.Normal

	var normalSum float64
	for i := range c.rows {
		row := &c.rows[i]

		// Friction first, bounded by the normal impulse of the previous iteration
		maxFriction := c.friction * row.normal
		for t := 0; t < 2; t++ {
			if row.tMass[t] == 0 {
				continue
			}
			tangent := c.tangents[t]
			vt := bodyB.VelocityAt(row.point).Sub(bodyA.VelocityAt(row.point)).Dot(tangent)

			old := row.tangent[t]
			row.tangent[t] = mgl64.Clamp(old-vt*row.tMass[t], -maxFriction, maxFriction)
			applyPair(bodyA, bodyB, tangent.Mul(row.tangent[t]-old), row.point, row.point)
		}

		vn := bodyB.VelocityAt(row.point).Sub(bodyA.VelocityAt(row.point)).Dot(normal)

		old := row.normal
		row.normal = math.Max(old+(row.target-vn)*row.nMass, 0)
		applyPair(bodyA, bodyB, normal.Mul(row.normal-old), row.point, row.point)

		normalSum += row.normal
	}

	c.solveRolling(normalSum)
}

// solveRolling opposes the relative angular velocity, up to rolling friction
// times the total normal impulse
func (c *ContactConstraint) solveRolling(normalSum float64) {
	if c.rollingFriction <= 0 || normalSum <= 0 {
		return
	}
	bodyA := c.Manifold.BodyA
	bodyB := c.Manifold.BodyB

	relative := bodyB.AngularVelocity.Sub(bodyA.AngularVelocity)
	speed := relative.Len()
	if speed < 1e-9 {
		return
	}
	axis := relative.Mul(1 / speed)

	mass := angularMass(bodyA, bodyB, axis, 0)
	if mass == 0 {
		return
	}

	limit := c.rollingFriction * normalSum
	old := c.rollingImpulse
	c.rollingImpulse = mgl64.Clamp(old+speed*mass, 0, limit)
	delta := axis.Mul(c.rollingImpulse - old)

	bodyA.ApplyAngularImpulse(delta)
	bodyB.ApplyAngularImpulse(delta.Mul(-1))
}

// NormalImpulse is the total normal impulse accumulated over the iterations
func (c *ContactConstraint) NormalImpulse() float64 {
	var sum float64
	for _, row := range c.rows {
		sum += row.normal
	}
	return sum
}
