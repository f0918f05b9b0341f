package ogcsim

import (
	"testing"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// createTestBody creates a minimal RigidBody for event testing
func createTestBody(name string, isTrigger, isSleeping bool) *actor.RigidBody {
	rb := actor.NewRigidBody(
		name,
		actor.NewTransform(),
		&actor.Sphere{Radius: 1.0},
		actor.BodyTypeDynamic,
		1.0,
	)
	rb.IsTrigger = isTrigger
	rb.IsSleeping = isSleeping
	return rb
}

// createTestManifold creates a one point manifold for testing
func createTestManifold(bodyA, bodyB *actor.RigidBody) *constraint.Manifold {
	return &constraint.Manifold{
		BodyA:  bodyA,
		BodyB:  bodyB,
		Normal: mgl64.Vec3{1, 0, 0},
		Points: []constraint.ContactPoint{
			{
				Position: mgl64.Vec3{0, 0, 0},
				Distance: -0.1,
			},
		},
	}
}

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

func (ec *eventCapture) subscribeAll(events *Events) {
	for eventType := TRIGGER_ENTER; eventType <= ON_WAKE; eventType++ {
		events.Subscribe(eventType, ec.capture)
	}
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(COLLISION_ENTER, capture.capture)

	if len(events.listeners[COLLISION_ENTER]) != 1 {
		t.Errorf("Expected 1 listener for COLLISION_ENTER, got %d", len(events.listeners[COLLISION_ENTER]))
	}
}

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	capture1 := &eventCapture{}
	capture2 := &eventCapture{}

	events.Subscribe(COLLISION_ENTER, capture1.capture)
	events.Subscribe(COLLISION_ENTER, capture2.capture)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)
	events.recordCollisions([]*constraint.Manifold{createTestManifold(bodyA, bodyB)})
	events.flush()

	if capture1.count() != 1 {
		t.Errorf("Capture1 expected 1 event, got %d", capture1.count())
	}
	if capture2.count() != 1 {
		t.Errorf("Capture2 expected 1 event, got %d", capture2.count())
	}
}

func TestEvents_DifferentEventTypes(t *testing.T) {
	events := NewEvents()
	captureCollision := &eventCapture{}
	captureTrigger := &eventCapture{}

	events.Subscribe(COLLISION_ENTER, captureCollision.capture)
	events.Subscribe(TRIGGER_ENTER, captureTrigger.capture)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)
	events.recordCollisions([]*constraint.Manifold{createTestManifold(bodyA, bodyB)})
	events.flush()

	if captureCollision.count() != 1 {
		t.Errorf("Collision capture expected 1 event, got %d", captureCollision.count())
	}
	if captureTrigger.count() != 0 {
		t.Errorf("Trigger capture expected 0 events, got %d", captureTrigger.count())
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{TRIGGER_ENTER, "trigger_enter"},
		{COLLISION_STAY, "collision_stay"},
		{TRIGGER_EXIT, "trigger_exit"},
		{ON_WAKE, "on_wake"},
		{EventType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.eventType.String(); got != tt.expected {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.eventType, got, tt.expected)
		}
	}
}

// =============================================================================
// recordCollisions Tests
// =============================================================================

func TestEvents_RecordCollisionsFiltersTriggers(t *testing.T) {
	events := NewEvents()

	solidA := createTestBody("A", false, false)
	solidB := createTestBody("B", false, false)
	trigger := createTestBody("zone", true, false)

	manifolds := []*constraint.Manifold{
		createTestManifold(solidA, solidB),
		createTestManifold(solidA, trigger),
		createTestManifold(trigger, solidB),
	}

	solid := events.recordCollisions(manifolds)

	if len(solid) != 1 || solid[0] != manifolds[0] {
		t.Fatalf("Expected only the solid manifold to be kept, got %d", len(solid))
	}
	if len(events.currentActivePairs) != 3 {
		t.Errorf("Expected 3 tracked pairs, got %d", len(events.currentActivePairs))
	}
	if !events.currentActivePairs[makePairKey("zone", "A")] {
		t.Error("Expected the trigger pair to be flagged")
	}
	if events.currentActivePairs[makePairKey("B", "A")] {
		t.Error("Expected the solid pair not to be flagged")
	}
}

func TestMakePairKey_Order(t *testing.T) {
	if makePairKey("b", "a") != makePairKey("a", "b") {
		t.Error("Expected pair keys to ignore the body order")
	}
	key := makePairKey("wall", "ball")
	if key.bodyA != "ball" || key.bodyB != "wall" {
		t.Errorf("Expected sorted names, got %+v", key)
	}
}

// =============================================================================
// Collision Enter / Stay / Exit Tests
// =============================================================================

func TestEvents_CollisionLifecycle(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)
	manifold := createTestManifold(bodyA, bodyB)

	steps := []struct {
		name     string
		touching bool
		expected EventType
		noEvent  bool
	}{
		{name: "enter", touching: true, expected: COLLISION_ENTER},
		{name: "stay", touching: true, expected: COLLISION_STAY},
		{name: "stay again", touching: true, expected: COLLISION_STAY},
		{name: "exit", touching: false, expected: COLLISION_EXIT},
		{name: "nothing", touching: false, noEvent: true},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			capture.reset()
			if step.touching {
				events.recordCollisions([]*constraint.Manifold{manifold})
			}
			events.flush()

			if step.noEvent {
				if capture.count() != 0 {
					t.Errorf("Expected no event, got %d", capture.count())
				}
				return
			}
			if capture.count() != 1 {
				t.Fatalf("Expected 1 event, got %d", capture.count())
			}
			if capture.events[0].Type() != step.expected {
				t.Errorf("Expected %s, got %s", step.expected, capture.events[0].Type())
			}
		})
	}
}

func TestEvents_TriggerLifecycle(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	body := createTestBody("ball", false, false)
	zone := createTestBody("zone", true, false)
	manifold := createTestManifold(zone, body)

	events.recordCollisions([]*constraint.Manifold{manifold})
	events.flush()
	if !capture.hasEventType(TRIGGER_ENTER) || capture.hasEventType(COLLISION_ENTER) {
		t.Error("Expected a TRIGGER_ENTER only")
	}

	capture.reset()
	events.recordCollisions([]*constraint.Manifold{manifold})
	events.flush()
	if !capture.hasEventType(TRIGGER_STAY) {
		t.Error("Expected a TRIGGER_STAY")
	}

	capture.reset()
	events.flush()
	if capture.count() != 1 || !capture.hasEventType(TRIGGER_EXIT) {
		t.Fatalf("Expected a single TRIGGER_EXIT, got %d events", capture.count())
	}

	exit := capture.events[0].(TriggerExitEvent)
	if exit.BodyA != "ball" || exit.BodyB != "zone" {
		t.Errorf("Expected names sorted in the event, got %s-%s", exit.BodyA, exit.BodyB)
	}
}

func TestEvents_SubStepsCollapse(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	bodyA := createTestBody("A", false, false)
	bodyB := createTestBody("B", false, false)
	manifold := createTestManifold(bodyA, bodyB)

	// Plusieurs sous-pas avant un seul flush
	for i := 0; i < 4; i++ {
		events.recordCollisions([]*constraint.Manifold{manifold})
	}
	events.flush()

	if capture.count() != 1 {
		t.Errorf("Expected sub-steps to produce a single event, got %d", capture.count())
	}
}

func TestEvents_SortedEmission(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	c := createTestBody("c", false, false)
	a := createTestBody("a", false, false)
	b := createTestBody("b", false, false)

	events.recordCollisions([]*constraint.Manifold{
		createTestManifold(c, b),
		createTestManifold(b, a),
		createTestManifold(c, a),
	})
	events.flush()

	expected := []CollisionEnterEvent{
		{BodyA: "a", BodyB: "b"},
		{BodyA: "a", BodyB: "c"},
		{BodyA: "b", BodyB: "c"},
	}
	if capture.count() != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), capture.count())
	}
	for i, event := range capture.events {
		if event.(CollisionEnterEvent) != expected[i] {
			t.Errorf("Event %d: expected %+v, got %+v", i, expected[i], event)
		}
	}
}

func TestEvents_ExitAfterEnter(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	a := createTestBody("a", false, false)
	b := createTestBody("b", false, false)
	c := createTestBody("c", false, false)

	events.recordCollisions([]*constraint.Manifold{createTestManifold(a, b)})
	events.flush()

	capture.reset()
	events.recordCollisions([]*constraint.Manifold{createTestManifold(a, c)})
	events.flush()

	if capture.count() != 2 {
		t.Fatalf("Expected 2 events, got %d", capture.count())
	}
	if capture.events[0].Type() != COLLISION_ENTER || capture.events[1].Type() != COLLISION_EXIT {
		t.Errorf("Expected enter then exit, got %s then %s", capture.events[0].Type(), capture.events[1].Type())
	}
}

// =============================================================================
// Sleep / Wake Tests
// =============================================================================

func TestEvents_SleepWake(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	body := createTestBody("A", false, false)
	bodies := []*actor.RigidBody{body}

	// Le premier passage enregistre l'etat sans evenement
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 0 {
		t.Fatalf("Expected no event on first sight, got %d", capture.count())
	}

	body.Sleep()
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 1 || capture.events[0] != (SleepEvent{Body: "A"}) {
		t.Fatalf("Expected a SleepEvent for A, got %v", capture.events)
	}

	capture.reset()
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 0 {
		t.Errorf("Expected no repeated sleep event, got %d", capture.count())
	}

	body.Awake()
	events.processSleepEvents(bodies)
	events.flush()
	if capture.count() != 1 || capture.events[0] != (WakeEvent{Body: "A"}) {
		t.Errorf("Expected a WakeEvent for A, got %v", capture.events)
	}
}

// =============================================================================
// Queries / Reset Tests
// =============================================================================

func TestEvents_TouchingAndPartners(t *testing.T) {
	events := NewEvents()

	ball := createTestBody("ball", false, false)
	ground := createTestBody("ground", false, false)
	wall := createTestBody("wall", false, false)
	zone := createTestBody("zone", true, false)

	events.recordCollisions([]*constraint.Manifold{
		createTestManifold(wall, ball),
		createTestManifold(ground, ball),
		createTestManifold(ball, zone),
	})

	// Rien n'est visible avant le flush
	if events.touching("ball", "wall") {
		t.Error("Expected pairs to be hidden until the step is flushed")
	}

	events.flush()

	if !events.touching("wall", "ball") {
		t.Error("Expected ball and wall to touch")
	}
	if events.touching("wall", "ground") {
		t.Error("Expected wall and ground not to touch")
	}

	partners := events.partners("ball")
	expected := []string{"ground", "wall", "zone"}
	if len(partners) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, partners)
	}
	for i := range expected {
		if partners[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, partners)
		}
	}
}

func TestEvents_Forget(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	a := createTestBody("a", false, false)
	b := createTestBody("b", false, false)
	events.recordCollisions([]*constraint.Manifold{createTestManifold(a, b)})
	events.processSleepEvents([]*actor.RigidBody{a, b})
	events.flush()

	events.forget("b")
	capture.reset()
	events.flush()

	// Pas d'exit pour un corps retire
	if capture.count() != 0 {
		t.Errorf("Expected no event after forgetting a body, got %d", capture.count())
	}
	if events.touching("a", "b") {
		t.Error("Expected the pair to be dropped")
	}
	if _, ok := events.sleepStates["b"]; ok {
		t.Error("Expected the sleep state to be dropped")
	}
}

func TestEvents_Reset(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	capture.subscribeAll(&events)

	a := createTestBody("a", false, false)
	b := createTestBody("b", false, false)
	events.recordCollisions([]*constraint.Manifold{createTestManifold(a, b)})
	events.flush()

	events.reset()
	capture.reset()

	// Les listeners restent, les contacts repartent de zero
	events.recordCollisions([]*constraint.Manifold{createTestManifold(a, b)})
	events.flush()
	if capture.count() != 1 || capture.events[0].Type() != COLLISION_ENTER {
		t.Errorf("Expected a fresh COLLISION_ENTER after reset, got %v", capture.events)
	}
}
