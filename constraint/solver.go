package constraint

// Solver is the sequential-impulse base solver. It keeps its contact
// constraints between calls to reuse their row buffers.
type Solver struct {
	settings Settings
	contacts []*ContactConstraint
}

// Result reports one Solve call
type Result struct {
	Iterations int
	// Broken lists the joints that broke during this call, in input order
	Broken []*Joint
	// NormalImpulse is the total normal impulse applied to contacts
	NormalImpulse float64
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

// SetSettings replaces the settings used by the next Solve call
func (s *Solver) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// Solve resolves the manifolds and the active joints for a sub-step of dt
// seconds. Velocities of the bodies are updated in place, poses are untouched.
func (s *Solver) Solve(manifolds []*Manifold, joints []*Joint, dt float64) Result {
	var result Result
	if dt <= 0 {
		return result
	}

	for len(s.contacts) < len(manifolds) {
		s.contacts = append(s.contacts, &ContactConstraint{})
	}
	contacts := s.contacts[:len(manifolds)]

	var constraints []Constraint
	for i, manifold := range manifolds {
		contacts[i].Manifold = manifold
		constraints = append(constraints, contacts[i])
	}

	var active []*Joint
	for _, joint := range joints {
		if joint.IsActive() {
			active = append(active, joint)
			constraints = append(constraints, joint)
		}
	}

	if len(constraints) == 0 {
		return result
	}

	for _, c := range constraints {
		c.PreSolve(dt, s.settings)
	}

	for result.Iterations < s.settings.Iterations {
		for _, c := range constraints {
			c.SolveVelocity()
		}
		result.Iterations++
	}

	for _, joint := range active {
		if joint.PostSolve() {
			result.Broken = append(result.Broken, joint)
		}
	}
	for _, contact := range contacts {
		result.NormalImpulse += contact.NormalImpulse()
		contact.Manifold = nil
	}

	return result
}
