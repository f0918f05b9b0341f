package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/akmonengine/ogcsim"
	"github.com/akmonengine/ogcsim/config"
	"github.com/akmonengine/ogcsim/scene"
)

func TestSampleSceneIsValid(t *testing.T) {
	s := sampleScene("Demo")
	if err := s.Validate(); err != nil {
		t.Fatalf("Expected a valid sample scene, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := scene.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Metadata.Name != "Demo" {
		t.Errorf("Expected name Demo, got %q", loaded.Metadata.Name)
	}
	if len(loaded.RigidBodies) != 4 || len(loaded.Constraints) != 1 {
		t.Errorf("Expected 4 bodies and 1 constraint, got %d and %d", len(loaded.RigidBodies), len(loaded.Constraints))
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Expected the saved scene to stay valid, got %v", err)
	}
}

func TestSampleSceneRuns(t *testing.T) {
	engine := ogcsim.NewEngine(config.DefaultEngine(), nil)
	if err := engine.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer engine.Cleanup()
	if err := engine.InitializeScene(sampleScene("Demo")); err != nil {
		t.Fatalf("InitializeScene failed: %v", err)
	}

	for i := 0; i < 120; i++ {
		engine.StepSimulation(1.0 / 60.0)
	}

	// Le pendule reste accroché au pivot
	bob, _ := engine.GetRigidBodyTransform("bob")
	length := bob.Position.Sub(mgl64.Vec3{3, 5, 0}).Len()
	if math.Abs(length-math.Sqrt(5)) > 0.25 {
		t.Errorf("Expected the bob to stay %.3f from the pivot, got %.3f", math.Sqrt(5), length)
	}

	ball, _ := engine.GetRigidBodyTransform("ball")
	if ball.Position.Y() < 0 || ball.Position.Y() > 3.01 {
		t.Errorf("Expected the ball between the ground and its start height, got y=%.3f", ball.Position.Y())
	}
}

func TestApplySolverFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		hybrid bool
		ogc    bool
		radius float64
	}{
		{"no flag keeps the scene", nil, true, false, 0.05},
		{"hybrid off", []string{"--hybrid=false"}, false, false, 0.05},
		{"ogc and radius", []string{"--ogc", "--radius", "0.2"}, true, true, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			addSolverFlags(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags failed: %v", err)
			}

			settings := sampleScene("Demo").Settings
			applySolverFlags(cmd, &settings)

			if settings.HybridMode != tt.hybrid {
				t.Errorf("Expected hybrid %v, got %v", tt.hybrid, settings.HybridMode)
			}
			if settings.UseOGCContact != tt.ogc {
				t.Errorf("Expected ogc %v, got %v", tt.ogc, settings.UseOGCContact)
			}
			if settings.OGCContactRadius != tt.radius {
				t.Errorf("Expected radius %v, got %v", tt.radius, settings.OGCContactRadius)
			}
		})
	}
}
