package ogcsim

import (
	"github.com/akmonengine/ogcsim/constraint"
)

// Routing selects the solver of each manifold
type Routing struct {
	OGCEnabled bool
	Hybrid     bool
	Radius     float64
}

// Partition splits the manifolds of a sub-step. Every input manifold is in
// exactly one of the three sets, in input order.
type Partition struct {
	Base      []*constraint.Manifold
	Proximity []*constraint.Manifold
	// Dropped holds the manifolds without points
	Dropped []*constraint.Manifold
}

// Classify routes each manifold to the base or the proximity solver.
//
// Without hybrid mode everything goes to the proximity solver when it is
// enabled with a positive radius, to the base solver otherwise. In hybrid mode a
// manifold is a proximity contact only when every point lies within the band
// [-Radius, Radius]; a deeper or farther point sends it to the base solver.
func Classify(manifolds []*constraint.Manifold, routing Routing) Partition {
	var partition Partition

	for _, m := range manifolds {
		switch {
		case len(m.Points) == 0:
			partition.Dropped = append(partition.Dropped, m)
		case routing.Radius <= 0:
			partition.Base = append(partition.Base, m)
		case !routing.Hybrid && routing.OGCEnabled:
			partition.Proximity = append(partition.Proximity, m)
		case !routing.Hybrid:
			partition.Base = append(partition.Base, m)
		case withinBand(m, routing.Radius):
			partition.Proximity = append(partition.Proximity, m)
		default:
			partition.Base = append(partition.Base, m)
		}
	}

	return partition
}

func withinBand(m *constraint.Manifold, radius float64) bool {
	for _, p := range m.Points {
		if p.Distance < -radius || p.Distance > radius {
			return false
		}
	}
	return true
}
