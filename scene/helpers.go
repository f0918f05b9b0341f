package scene

import (
	"fmt"
	"math"
	"unicode"

	"github.com/akmonengine/ogcsim/actor"
)

// Collider builds the collision shape of s. A plane normal is normalized.
func (s Shape) Collider() (actor.ShapeInterface, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}

	switch s.Type {
	case ShapeBox:
		return &actor.Box{HalfExtents: s.HalfExtents}, nil
	case ShapeSphere:
		return &actor.Sphere{Radius: s.Radius}, nil
	case ShapeCapsule:
		return &actor.Capsule{Radius: s.Radius, Height: s.Height}, nil
	case ShapeCylinder:
		return &actor.Cylinder{Radius: s.Radius, Height: s.Height}, nil
	case ShapeCone:
		return &actor.Cone{Radius: s.Radius, Height: s.Height}, nil
	case ShapePlane:
		length := s.Normal.Len()
		return &actor.Plane{Normal: s.Normal.Mul(1 / length), Distance: s.Distance / length}, nil
	}
	return nil, fmt.Errorf("unsupported shape %s", s.Type)
}

// BoxInertia is the diagonal inertia of a solid box
func BoxInertia(mass float64, halfExtents Vec3) Vec3 {
	return (&actor.Box{HalfExtents: halfExtents}).ComputeInertia(mass)
}

func SphereInertia(mass, radius float64) Vec3 {
	return (&actor.Sphere{Radius: radius}).ComputeInertia(mass)
}

// CylinderInertia is around the centre, Y being the axis
func CylinderInertia(mass, radius, height float64) Vec3 {
	return (&actor.Cylinder{Radius: radius, Height: height}).ComputeInertia(mass)
}

// CapsuleInertia approximates the capsule by its bounding cylinder
func CapsuleInertia(mass, radius, height float64) Vec3 {
	return (&actor.Capsule{Radius: radius, Height: height}).ComputeInertia(mass)
}

func ConeInertia(mass, radius, height float64) Vec3 {
	return (&actor.Cone{Radius: radius, Height: height}).ComputeInertia(mass)
}

func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func RadiansToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// IsValidObjectName accepts 1 to 128 letters, digits, '_', '-' and spaces
func IsValidObjectName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == ' ') {
			return false
		}
	}
	return true
}
