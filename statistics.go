package ogcsim

import "time"

// Statistics describe the last step. Manifold and contact counts are those of
// its last sub-step; iterations, clamped impulses and timings add up over the
// sub-steps.
type Statistics struct {
	RigidBodyCount        int
	ConstraintCount       int
	BrokenConstraintCount int
	ForceFieldCount       int
	ActiveBodyCount       int

	ManifoldCount          int
	BaseManifoldCount      int
	ProximityManifoldCount int
	DroppedManifoldCount   int
	ContactPointCount      int
	ClampedImpulseCount    int

	BaseIterations int
	OGCIterations  int

	SubSteps  int
	StepCount int
	// SimulatedTime is the total simulated time since the scene was installed or reset
	SimulatedTime float64

	SimulationTime time.Duration
	BaseSolveTime  time.Duration
	OGCSolveTime   time.Duration
}

// setPartition records the routing of a sub-step
func (s *Statistics) setPartition(p Partition) {
	s.BaseManifoldCount = len(p.Base)
	s.ProximityManifoldCount = len(p.Proximity)
	s.DroppedManifoldCount = len(p.Dropped)
	s.ManifoldCount = len(p.Base) + len(p.Proximity) + len(p.Dropped)
	s.ContactPointCount = 0
	for _, m := range p.Base {
		s.ContactPointCount += len(m.Points)
	}
	for _, m := range p.Proximity {
		s.ContactPointCount += len(m.Points)
	}
}
