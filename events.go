package ogcsim

import (
	"cmp"
	"slices"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/constraint"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case TRIGGER_ENTER:
		return "trigger_enter"
	case COLLISION_ENTER:
		return "collision_enter"
	case TRIGGER_STAY:
		return "trigger_stay"
	case COLLISION_STAY:
		return "collision_stay"
	case TRIGGER_EXIT:
		return "trigger_exit"
	case COLLISION_EXIT:
		return "collision_exit"
	case ON_SLEEP:
		return "on_sleep"
	case ON_WAKE:
		return "on_wake"
	}
	return "unknown"
}

// pairKey names a body pair, BodyA <= BodyB
type pairKey struct {
	bodyA string
	bodyB string
}

func makePairKey(bodyA, bodyB string) pairKey {
	if bodyB < bodyA {
		bodyA, bodyB = bodyB, bodyA
	}
	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

func comparePairKeys(a, b pairKey) int {
	if c := cmp.Compare(a.bodyA, b.bodyA); c != 0 {
		return c
	}
	return cmp.Compare(a.bodyB, b.bodyB)
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA string
	BodyB string
}

func (e TriggerEnterEvent) Type() EventType { return TRIGGER_ENTER }

type TriggerStayEvent struct {
	BodyA string
	BodyB string
}

func (e TriggerStayEvent) Type() EventType { return TRIGGER_STAY }

type TriggerExitEvent struct {
	BodyA string
	BodyB string
}

func (e TriggerExitEvent) Type() EventType { return TRIGGER_EXIT }

// Collision events
type CollisionEnterEvent struct {
	BodyA string
	BodyB string
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA string
	BodyB string
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA string
	BodyB string
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body string
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body string
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager. Pairs are tracked by body names, so events stay
// deterministic from one run to the next.
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Pairs touching during the last step and the current one, mapped
	// to whether the pair involves a trigger
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool

	sleepStates map[string]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
		sleepStates:         make(map[string]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions is called every sub-step. It marks the pairs of the
// manifolds as touching and returns the manifolds without trigger bodies.
func (e *Events) recordCollisions(manifolds []*constraint.Manifold) []*constraint.Manifold {
	solid := make([]*constraint.Manifold, 0, len(manifolds))
	for _, m := range manifolds {
		isTrigger := m.BodyA.IsTrigger || m.BodyB.IsTrigger
		e.currentActivePairs[makePairKey(m.BodyA.Name, m.BodyB.Name)] = isTrigger

		if !isTrigger {
			solid = append(solid, m)
		}
	}
	return solid
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
// Should be called after all substeps
func (e *Events) processCollisionEvents() {
	current := make([]pairKey, 0, len(e.currentActivePairs))
	for pair := range e.currentActivePairs {
		current = append(current, pair)
	}
	slices.SortFunc(current, comparePairKeys)

	for _, pair := range current {
		isTrigger := e.currentActivePairs[pair]
		_, stay := e.previousActivePairs[pair]

		switch {
		case stay && isTrigger:
			e.buffer = append(e.buffer, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		case stay:
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		case isTrigger:
			e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		default:
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	previous := make([]pairKey, 0, len(e.previousActivePairs))
	for pair := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[pair]; !ok {
			previous = append(previous, pair)
		}
	}
	slices.SortFunc(previous, comparePairKeys)

	for _, pair := range previous {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// processSleepEvents reports the bodies whose sleep state changed since the
// previous call. bodies are visited in store order.
func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.sleepStates[body.Name]
		if !exists {
			e.sleepStates[body.Name] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body.Name})
			e.sleepStates[body.Name] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body.Name})
			e.sleepStates[body.Name] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}

// touching reports the pairs of the last flushed step
func (e *Events) touching(bodyA, bodyB string) bool {
	_, ok := e.previousActivePairs[makePairKey(bodyA, bodyB)]
	return ok
}

// partners lists the bodies touching name during the last flushed step, sorted
func (e *Events) partners(name string) []string {
	var names []string
	for pair := range e.previousActivePairs {
		switch name {
		case pair.bodyA:
			names = append(names, pair.bodyB)
		case pair.bodyB:
			names = append(names, pair.bodyA)
		}
	}
	slices.Sort(names)
	return names
}

// forget drops the tracking of a removed body
func (e *Events) forget(name string) {
	delete(e.sleepStates, name)
	for pair := range e.previousActivePairs {
		if pair.bodyA == name || pair.bodyB == name {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == name || pair.bodyB == name {
			delete(e.currentActivePairs, pair)
		}
	}
}

// reset clears the tracked contacts and the pending events, listeners stay
func (e *Events) reset() {
	e.buffer = e.buffer[:0]
	clear(e.previousActivePairs)
	clear(e.currentActivePairs)
	clear(e.sleepStates)
}
