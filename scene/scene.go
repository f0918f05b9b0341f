// Package scene describes a physics scene: bodies, constraints, force fields,
// materials and simulation settings, plus the authoring-only lights and cameras.
//
// A Scene is plain data. It is validated before the simulation installs it and
// the simulation keeps its own copy, so a caller may edit or reuse it freely.
package scene

import (
	"fmt"
	"slices"
)

type Scene struct {
	Metadata         Metadata           `yaml:"metadata"`
	PhysicsMaterials []PhysicsMaterial  `yaml:"physics_materials"`
	VisualMaterials  []VisualMaterial   `yaml:"visual_materials"`
	RigidBodies      []RigidBody        `yaml:"rigid_bodies"`
	Constraints      []Constraint       `yaml:"constraints"`
	ForceFields      []ForceField       `yaml:"force_fields"`
	Lights           []Light            `yaml:"lights"`
	Cameras          []Camera           `yaml:"cameras"`
	Settings         SimulationSettings `yaml:"settings"`
	ActiveCamera     string             `yaml:"active_camera"`
}

// Statistics counts the records of a scene
type Statistics struct {
	RigidBodies      int
	Constraints      int
	ForceFields      int
	Lights           int
	Cameras          int
	PhysicsMaterials int
	VisualMaterials  int
}

// New returns a scene with the default material library, a main camera and a
// main light. Gravity comes from Settings.Gravity only.
func New() *Scene {
	mainCamera := DefaultCamera(DefaultCameraName)
	mainCamera.Transform.Position = Vec3{0, 5, 10}

	mainLight := DefaultLight(DefaultLightName)
	mainLight.Transform.Rotation = Quat{W: 0.707, X: -0.707}

	return &Scene{
		Metadata:         Metadata{Name: "Untitled", Version: FormatVersion},
		PhysicsMaterials: defaultPhysicsMaterials(),
		VisualMaterials:  defaultVisualMaterials(),
		Lights:           []Light{mainLight},
		Cameras:          []Camera{mainCamera},
		Settings:         DefaultSettings(),
		ActiveCamera:     DefaultCameraName,
	}
}

func (s *Scene) FindRigidBody(name string) (*RigidBody, bool) {
	return find(s.RigidBodies, name, func(b *RigidBody) string { return b.Name })
}

func (s *Scene) FindConstraint(name string) (*Constraint, bool) {
	return find(s.Constraints, name, func(c *Constraint) string { return c.Name })
}

func (s *Scene) FindForceField(name string) (*ForceField, bool) {
	return find(s.ForceFields, name, func(f *ForceField) string { return f.Name })
}

func (s *Scene) FindCamera(name string) (*Camera, bool) {
	return find(s.Cameras, name, func(c *Camera) string { return c.Name })
}

func (s *Scene) FindLight(name string) (*Light, bool) {
	return find(s.Lights, name, func(l *Light) string { return l.Name })
}

func (s *Scene) FindPhysicsMaterial(name string) (*PhysicsMaterial, bool) {
	return find(s.PhysicsMaterials, name, func(m *PhysicsMaterial) string { return m.Name })
}

func (s *Scene) FindVisualMaterial(name string) (*VisualMaterial, bool) {
	return find(s.VisualMaterials, name, func(m *VisualMaterial) string { return m.Name })
}

// find returns the first record named name, pointing into the slice
func find[T any](records []T, name string, nameOf func(*T) string) (*T, bool) {
	for i := range records {
		if nameOf(&records[i]) == name {
			return &records[i], true
		}
	}
	return nil, false
}

func (s *Scene) AddRigidBody(body RigidBody) {
	s.RigidBodies = append(s.RigidBodies, body)
}

func (s *Scene) AddConstraint(c Constraint) {
	s.Constraints = append(s.Constraints, c)
}

func (s *Scene) AddForceField(f ForceField) {
	s.ForceFields = append(s.ForceFields, f)
}

// RemoveRigidBody deletes the body and every constraint attached to it
func (s *Scene) RemoveRigidBody(name string) bool {
	i := slices.IndexFunc(s.RigidBodies, func(b RigidBody) bool { return b.Name == name })
	if i < 0 {
		return false
	}
	s.RigidBodies = slices.Delete(s.RigidBodies, i, i+1)
	s.Constraints = slices.DeleteFunc(s.Constraints, func(c Constraint) bool {
		return c.BodyA == name || c.BodyB == name
	})
	return true
}

func (s *Scene) RemoveConstraint(name string) bool {
	n := len(s.Constraints)
	s.Constraints = slices.DeleteFunc(s.Constraints, func(c Constraint) bool { return c.Name == name })
	return len(s.Constraints) != n
}

func (s *Scene) RemoveForceField(name string) bool {
	n := len(s.ForceFields)
	s.ForceFields = slices.DeleteFunc(s.ForceFields, func(f ForceField) bool { return f.Name == name })
	return len(s.ForceFields) != n
}

// UniqueBodyName returns base, or base_N for the first N not taken by a body
func (s *Scene) UniqueBodyName(base string) string {
	name := base
	for i := 1; ; i++ {
		if _, taken := s.FindRigidBody(name); !taken {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// Clone returns a deep copy of the scene
func (s *Scene) Clone() *Scene {
	clone := *s
	clone.PhysicsMaterials = slices.Clone(s.PhysicsMaterials)
	clone.VisualMaterials = slices.Clone(s.VisualMaterials)
	clone.RigidBodies = slices.Clone(s.RigidBodies)
	clone.Constraints = slices.Clone(s.Constraints)
	clone.ForceFields = slices.Clone(s.ForceFields)
	clone.Lights = slices.Clone(s.Lights)
	clone.Cameras = slices.Clone(s.Cameras)

	if s.Metadata.Custom != nil {
		clone.Metadata.Custom = make(map[string]string, len(s.Metadata.Custom))
		for k, v := range s.Metadata.Custom {
			clone.Metadata.Custom[k] = v
		}
	}
	return &clone
}

func (s *Scene) Statistics() Statistics {
	return Statistics{
		RigidBodies:      len(s.RigidBodies),
		Constraints:      len(s.Constraints),
		ForceFields:      len(s.ForceFields),
		Lights:           len(s.Lights),
		Cameras:          len(s.Cameras),
		PhysicsMaterials: len(s.PhysicsMaterials),
		VisualMaterials:  len(s.VisualMaterials),
	}
}
