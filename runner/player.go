// Package runner plays an engine in real time and hands every stepped frame
// to its observers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/akmonengine/ogcsim"
	"github.com/akmonengine/ogcsim/config"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownCommand = errors.New("runner: unknown command")

type Command string

const (
	CommandPlay  Command = "play"
	CommandPause Command = "pause"
	CommandStop  Command = "stop"
	CommandStep  Command = "step"
	CommandReset Command = "reset"
)

// BodyState is the pose of one body in a frame
type BodyState struct {
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
	Active   bool       `json:"active"`
}

// Frame is the state of the scene after a step, or after a reset
type Frame struct {
	Step     int                  `json:"step"`
	Time     float64              `json:"time"`
	Playing  bool                 `json:"playing"`
	Bodies   []BodyState          `json:"bodies"`
	Stats    ogcsim.Statistics    `json:"stats"`
	Warnings []ogcsim.StepWarning `json:"warnings,omitempty"`
}

// Observer is called with every new frame, from the goroutine that produced it
type Observer func(Frame)

// Player owns an engine and serializes every access to it.
type Player struct {
	mu        sync.Mutex
	engine    *ogcsim.Engine
	dt        float64
	frameRate int
	playing   bool
	observers []Observer
	logger    *slog.Logger
}

// New creates a paused player stepping engine by dt at every frame. A zero dt
// uses the frame period.
func New(engine *ogcsim.Engine, cfg config.Runner, dt float64, logger *slog.Logger) *Player {
	frameRate := cfg.FrameRate
	if frameRate <= 0 {
		frameRate = config.DefaultFrameRate
	}
	if !(dt > 0) {
		dt = 1.0 / float64(frameRate)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Player{
		engine:    engine,
		dt:        dt,
		frameRate: frameRate,
		logger:    logger,
	}
}

// Observe registers an observer. It does not receive past frames.
func (p *Player) Observe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

func (p *Player) Start() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	p.logger.Debug("playback started")
}

func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.logger.Debug("playback paused")
}

// Stop pauses and resets the scene
func (p *Player) Stop() Frame {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	return p.Reset()
}

// Reset returns the scene to its initial state without changing the playback
func (p *Player) Reset() Frame {
	p.mu.Lock()
	p.engine.ResetScene()
	frame := p.frameLocked()
	observers := p.observers
	p.mu.Unlock()

	notify(observers, frame)
	return frame
}

// Step advances the scene by one frame, playing or not
func (p *Player) Step() Frame {
	p.mu.Lock()
	p.engine.StepSimulation(p.dt)
	frame := p.frameLocked()
	observers := p.observers
	p.mu.Unlock()

	for _, w := range frame.Warnings {
		p.logger.Debug("step warning", "kind", w.Kind.String(), "subject", w.Subject)
	}
	notify(observers, frame)
	return frame
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Snapshot returns the current frame without stepping
func (p *Player) Snapshot() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked()
}

// Do runs fn with exclusive access to the engine, for edits and queries
// between frames
func (p *Player) Do(fn func(engine *ogcsim.Engine)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.engine)
}

// Handle applies a playback command
func (p *Player) Handle(command Command) error {
	switch command {
	case CommandPlay:
		p.Start()
	case CommandPause:
		p.Pause()
	case CommandStop:
		p.Stop()
	case CommandStep:
		p.Step()
	case CommandReset:
		p.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return nil
}

// Run steps the scene at the frame rate while playing, until ctx is done
func (p *Player) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(p.frameRate))
	defer ticker.Stop()

	p.logger.Info("player running", "frame_rate", p.frameRate, "dt", p.dt)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("player stopped")
			return nil
		case <-ticker.C:
			if p.Playing() {
				p.Step()
			}
		}
	}
}

func (p *Player) frameLocked() Frame {
	stats := p.engine.GetStatistics()
	names := p.engine.BodyNames()

	frame := Frame{
		Step:     stats.StepCount,
		Time:     stats.SimulatedTime,
		Playing:  p.playing,
		Bodies:   make([]BodyState, 0, len(names)),
		Stats:    stats,
		Warnings: p.engine.Warnings(),
	}
	for _, name := range names {
		transform, _ := p.engine.GetRigidBodyTransform(name)
		frame.Bodies = append(frame.Bodies, BodyState{
			Name:     name,
			Position: transform.Position,
			Rotation: transform.Rotation,
			Active:   p.engine.IsRigidBodyActive(name),
		})
	}
	return frame
}

func notify(observers []Observer, frame Frame) {
	for _, observer := range observers {
		observer(frame)
	}
}
