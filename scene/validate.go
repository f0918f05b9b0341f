package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalid = errors.New("scene: invalid scene")

// ValidationError lists every problem found in a scene
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	const shown = 3

	var b strings.Builder
	b.WriteString(ErrInvalid.Error())
	b.WriteString(": ")
	for i, p := range e.Problems {
		if i == shown {
			fmt.Fprintf(&b, " (and %d more)", len(e.Problems)-shown)
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(p)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Validate checks the whole scene and returns a *ValidationError holding every
// problem, or nil
func (s *Scene) Validate() error {
	var p problems

	s.validateBodies(&p)
	s.validateConstraints(&p)
	s.validateForceFields(&p)
	s.validateSettings(&p)

	if s.ActiveCamera != "" {
		if camera, ok := s.FindCamera(s.ActiveCamera); !ok {
			p.add("active camera %q does not exist", s.ActiveCamera)
		} else if !(camera.NearPlane > 0 && camera.FarPlane > camera.NearPlane) {
			p.add("active camera %q: clip planes %v..%v", camera.Name, camera.NearPlane, camera.FarPlane)
		}
	}

	if len(p) > 0 {
		return &ValidationError{Problems: p}
	}
	return nil
}

func (s *Scene) validateBodies(p *problems) {
	seen := make(map[string]bool, len(s.RigidBodies))
	for i, body := range s.RigidBodies {
		if body.Name == "" {
			p.add("rigid body #%d has no name", i)
		} else if seen[body.Name] {
			p.add("duplicate rigid body name %q", body.Name)
		}
		seen[body.Name] = true

		if _, ok := s.FindPhysicsMaterial(body.PhysicsMaterial); !ok {
			p.add("rigid body %q references unknown physics material %q", body.Name, body.PhysicsMaterial)
		}
		if _, ok := s.FindVisualMaterial(body.VisualMaterial); !ok {
			p.add("rigid body %q references unknown visual material %q", body.Name, body.VisualMaterial)
		}
		if body.Mass < 0 || !finite(body.Mass) {
			p.add("rigid body %q has invalid mass %v", body.Name, body.Mass)
		}
		for axis := 0; axis < 3; axis++ {
			if body.InertiaTensor[axis] < 0 || !finite(body.InertiaTensor[axis]) {
				p.add("rigid body %q has invalid inertia tensor %v", body.Name, body.InertiaTensor)
				break
			}
		}
		if err := body.Shape.Check(); err != nil {
			p.add("rigid body %q: %v", body.Name, err)
		}
	}
}

func (s *Scene) validateConstraints(p *problems) {
	seen := make(map[string]bool, len(s.Constraints))
	for _, c := range s.Constraints {
		if c.Name == "" {
			p.add("constraint without a name")
		} else if seen[c.Name] {
			p.add("duplicate constraint name %q", c.Name)
		}
		seen[c.Name] = true

		if c.BodyA == "" {
			p.add("constraint %q has no body A", c.Name)
		} else if _, ok := s.FindRigidBody(c.BodyA); !ok {
			p.add("constraint %q references unknown body A %q", c.Name, c.BodyA)
		}
		if c.BodyB != "" {
			if _, ok := s.FindRigidBody(c.BodyB); !ok {
				p.add("constraint %q references unknown body B %q", c.Name, c.BodyB)
			}
		}

		// A generic 6-DOF axis with lower > upper is free
		if c.Type != ConstraintGeneric6DOF {
			for axis := 0; axis < 3; axis++ {
				if c.LinearLowerLimit[axis] > c.LinearUpperLimit[axis] || c.AngularLowerLimit[axis] > c.AngularUpperLimit[axis] {
					p.add("constraint %q has a lower limit above its upper limit", c.Name)
					break
				}
			}
		}
		if !(c.BreakingImpulseThreshold > 0) {
			p.add("constraint %q has breaking impulse threshold %v, must be > 0", c.Name, c.BreakingImpulseThreshold)
		}
	}
}

func (s *Scene) validateForceFields(p *problems) {
	seen := make(map[string]bool, len(s.ForceFields))
	for _, f := range s.ForceFields {
		if f.Name == "" {
			p.add("force field without a name")
		} else if seen[f.Name] {
			p.add("duplicate force field name %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case ForceFieldRadial, ForceFieldVortex, ForceFieldSpring:
			if f.Radius < 0 || !finite(f.Radius) {
				p.add("force field %q has invalid radius %v", f.Name, f.Radius)
			}
		}
		if !finite(f.Strength) {
			p.add("force field %q has invalid strength %v", f.Name, f.Strength)
		}
	}
}

func (s *Scene) validateSettings(p *problems) {
	st := s.Settings
	if !(st.TimeStep > 0) {
		p.add("settings: time step %v must be > 0", st.TimeStep)
	}
	if !(st.FixedTimeStep > 0) {
		p.add("settings: fixed time step %v must be > 0", st.FixedTimeStep)
	}
	if st.MaxSubSteps < 1 {
		p.add("settings: max sub steps %d must be >= 1", st.MaxSubSteps)
	}
	if st.SolverIterations < 1 {
		p.add("settings: solver iterations %d must be >= 1", st.SolverIterations)
	}
	if st.ERP < 0 || st.ERP > 1 {
		p.add("settings: erp %v outside [0, 1]", st.ERP)
	}
	if st.CFM < 0 {
		p.add("settings: cfm %v must be >= 0", st.CFM)
	}
	if st.OGCContactRadius < 0 || !finite(st.OGCContactRadius) {
		p.add("settings: ogc contact radius %v must be >= 0", st.OGCContactRadius)
	}
	if st.ContactBreakingThreshold < 0 {
		p.add("settings: contact breaking threshold %v must be >= 0", st.ContactBreakingThreshold)
	}
}

// Check reports malformed shape parameters
func (s Shape) Check() error {
	switch s.Type {
	case ShapeBox:
		if !(s.HalfExtents.X() > 0 && s.HalfExtents.Y() > 0 && s.HalfExtents.Z() > 0) {
			return fmt.Errorf("box half extents %v must be > 0", s.HalfExtents)
		}
	case ShapeSphere:
		if !(s.Radius > 0) {
			return fmt.Errorf("sphere radius %v must be > 0", s.Radius)
		}
	case ShapeCapsule, ShapeCylinder, ShapeCone:
		if !(s.Radius > 0 && s.Height > 0) {
			return fmt.Errorf("%s radius %v and height %v must be > 0", s.Type, s.Radius, s.Height)
		}
	case ShapePlane:
		if s.Normal.Len() < 1e-9 {
			return fmt.Errorf("plane normal must be non-zero")
		}
	default:
		return fmt.Errorf("unsupported shape %s", s.Type)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
