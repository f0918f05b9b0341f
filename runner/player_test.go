package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akmonengine/ogcsim"
	"github.com/akmonengine/ogcsim/config"
	"github.com/akmonengine/ogcsim/scene"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestPlayer(t *testing.T, frameRate int) *Player {
	t.Helper()

	s := scene.New()
	ground := scene.DefaultRigidBody("ground")
	ground.Shape = scene.PlaneShape(mgl64.Vec3{0, 1, 0}, 0)
	ground.Mass = 0
	ball := scene.DefaultRigidBody("ball")
	ball.Shape = scene.SphereShape(0.5)
	ball.Transform.Position = mgl64.Vec3{0, 3, 0}
	s.RigidBodies = []scene.RigidBody{ground, ball}

	engine := ogcsim.NewEngine(config.DefaultEngine(), nil)
	if err := engine.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := engine.InitializeScene(s); err != nil {
		t.Fatalf("InitializeScene failed: %v", err)
	}

	return New(engine, config.Runner{FrameRate: frameRate}, 1.0/60.0, nil)
}

func TestPlayerStep(t *testing.T) {
	player := newTestPlayer(t, 60)

	var frames []Frame
	player.Observe(func(f Frame) { frames = append(frames, f) })

	first := player.Step()
	second := player.Step()

	if first.Step != 1 || second.Step != 2 {
		t.Errorf("Expected steps 1 and 2, got %d and %d", first.Step, second.Step)
	}
	if len(frames) != 2 {
		t.Fatalf("Expected 2 observed frames, got %d", len(frames))
	}
	if len(second.Bodies) != 2 || second.Bodies[1].Name != "ball" {
		t.Fatalf("Expected the bodies in store order, got %+v", second.Bodies)
	}
	if second.Bodies[1].Position.Y() >= 3 {
		t.Errorf("Expected the ball to fall, got y=%v", second.Bodies[1].Position.Y())
	}
	if second.Bodies[0].Active || !second.Bodies[1].Active {
		t.Error("Expected only the ball to be active")
	}
}

func TestPlayerCommands(t *testing.T) {
	player := newTestPlayer(t, 60)

	tests := []struct {
		name    string
		command Command
		playing bool
		step    int
	}{
		{"play", CommandPlay, true, 0},
		{"step en lecture", CommandStep, true, 1},
		{"pause", CommandPause, false, 1},
		{"step en pause", CommandStep, false, 2},
		{"reset", CommandReset, false, 0},
		{"play encore", CommandPlay, true, 0},
		{"step", CommandStep, true, 1},
		{"stop", CommandStop, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := player.Handle(tt.command); err != nil {
				t.Fatalf("Handle(%s) failed: %v", tt.command, err)
			}
			frame := player.Snapshot()
			if player.Playing() != tt.playing || frame.Playing != tt.playing {
				t.Errorf("Expected playing=%v, got %v", tt.playing, player.Playing())
			}
			if frame.Step != tt.step {
				t.Errorf("Expected step %d, got %d", tt.step, frame.Step)
			}
		})
	}
}

func TestPlayerUnknownCommand(t *testing.T) {
	player := newTestPlayer(t, 60)

	if err := player.Handle("rewind"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestPlayerStopRestoresScene(t *testing.T) {
	player := newTestPlayer(t, 60)
	for i := 0; i < 10; i++ {
		player.Step()
	}

	frame := player.Stop()
	if frame.Step != 0 || frame.Bodies[1].Position != (mgl64.Vec3{0, 3, 0}) {
		t.Errorf("Expected the initial scene back, got step %d at %v", frame.Step, frame.Bodies[1].Position)
	}
}

func TestPlayerDo(t *testing.T) {
	player := newTestPlayer(t, 60)

	var applied bool
	player.Do(func(engine *ogcsim.Engine) {
		applied = engine.ApplyImpulse("ball", mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, 3, 0})
	})
	if !applied {
		t.Fatal("Expected the impulse to be applied")
	}

	frame := player.Step()
	if frame.Bodies[1].Position.Y() <= 3 {
		t.Errorf("Expected the ball to go up, got y=%v", frame.Bodies[1].Position.Y())
	}
}

func TestPlayerRun(t *testing.T) {
	player := newTestPlayer(t, 200)

	frames := make(chan Frame, 64)
	player.Observe(func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- player.Run(ctx) }()

	// En pause, aucun pas
	select {
	case f := <-frames:
		t.Fatalf("Expected no frame while paused, got step %d", f.Step)
	case <-time.After(50 * time.Millisecond):
	}

	player.Start()
	for want := 1; want <= 3; want++ {
		select {
		case f := <-frames:
			if f.Step != want {
				t.Errorf("Expected step %d, got %d", want, f.Step)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for step %d", want)
		}
	}
	player.Pause()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected Run to return nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancel")
	}
}
