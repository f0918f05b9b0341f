package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML scene. Omitted fields keep their defaults, the default
// material library included when no material is listed.
func Parse(data []byte) (*Scene, error) {
	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}

	if len(s.PhysicsMaterials) == 0 {
		s.PhysicsMaterials = defaultPhysicsMaterials()
	}
	if len(s.VisualMaterials) == 0 {
		s.VisualMaterials = defaultVisualMaterials()
	}
	return s, nil
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
