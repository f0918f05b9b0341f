package ogcsim

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/akmonengine/ogcsim/actor"
	"github.com/akmonengine/ogcsim/config"
	"github.com/akmonengine/ogcsim/constraint"
	"github.com/akmonengine/ogcsim/ogc"
	"github.com/akmonengine/ogcsim/scene"
	"github.com/go-gl/mathgl/mgl64"
)

type EngineState int

const (
	StateUninitialized EngineState = iota
	StateInitialized
	StateStepping
	StateIdle
	StateReset
	StateCleaned
)

func (s EngineState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateStepping:
		return "stepping"
	case StateIdle:
		return "idle"
	case StateReset:
		return "reset"
	case StateCleaned:
		return "cleaned"
	}
	return "unknown"
}

type Option func(*Engine)

// WithClock replaces time.Now for the timings of the statistics
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// Engine runs a scene: it owns the bodies, the joints and the force fields
// built from it, and steps them with the base and the proximity solvers.
//
// An Engine is not safe for concurrent use. Independent engines share nothing.
type Engine struct {
	cfg   config.Engine
	sink  DiagnosticsSink
	clock func() time.Time
	state EngineState

	grid            *SpatialGrid
	baseSolver      *constraint.Solver
	proximitySolver *ogc.Solver

	// description is the installed copy of the scene, kept in sync with the
	// edits. It is nil until a scene is installed.
	description *scene.Scene
	settings    scene.SimulationSettings
	pending     scene.SimulationSettings

	bodies []*actor.RigidBody
	byName map[string]*actor.RigidBody
	joints []*jointEntry

	events   Events
	warnings []StepWarning
	stats    Statistics
	// clamping holds the pairs already reported as clamped, until they part
	clamping map[pairKey]struct{}

	stepCount     int
	simulatedTime float64
}

// NewEngine creates an uninitialized engine. A nil sink discards diagnostics.
func NewEngine(cfg config.Engine, sink DiagnosticsSink, opts ...Option) *Engine {
	if sink == nil {
		sink = DiscardSink
	}
	e := &Engine{
		cfg:    cfg,
		sink:   sink,
		clock:  time.Now,
		events: NewEvents(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ============================================================================
// Lifecycle
// ============================================================================

// Initialize builds the broad phase and the two solvers. It does nothing on an
// initialized engine.
func (e *Engine) Initialize() error {
	if e.grid != nil {
		return nil
	}

	if err := e.cfg.Validate(); err != nil {
		return &EngineError{Reason: "invalid engine configuration", Wrapped: err}
	}

	baseSettings := constraint.DefaultSettings()
	baseSettings.LinearSlop = e.cfg.LinearSlop
	baseSettings.RestitutionThreshold = e.cfg.RestitutionThreshold
	baseSolver, err := constraint.NewSolver(baseSettings)
	if err != nil {
		return &EngineError{Reason: "base solver", Wrapped: err}
	}

	proximitySettings := ogc.DefaultSettings()
	proximitySettings.Strength = e.cfg.ProximityStrength
	proximitySettings.Friction = e.cfg.ProximityFriction
	proximitySettings.LinearSlop = e.cfg.LinearSlop
	proximitySettings.RestitutionThreshold = e.cfg.RestitutionThreshold
	proximitySolver, err := ogc.NewSolver(proximitySettings)
	if err != nil {
		return &EngineError{Reason: "proximity solver", Wrapped: err}
	}

	e.grid = NewSpatialGrid(e.cfg.GridCellSize, e.cfg.GridCells)
	e.baseSolver = baseSolver
	e.proximitySolver = proximitySolver
	e.state = StateInitialized

	e.sink.Info("engine initialized",
		"grid_cell_size", e.cfg.GridCellSize,
		"grid_cells", e.cfg.GridCells,
		"workers", e.cfg.Workers,
		"proximity_strength", e.cfg.ProximityStrength)
	return nil
}

// InitializeScene validates s and replaces the current scene by a copy of it.
// On error the current scene is left as it was.
func (e *Engine) InitializeScene(s *scene.Scene) error {
	if e.grid == nil {
		return ErrNotInitialized
	}
	if s == nil {
		return newSceneError(errors.New("no scene"))
	}
	if err := s.Validate(); err != nil {
		return newSceneError(err)
	}

	description := s.Clone()

	bodies := make([]*actor.RigidBody, 0, len(description.RigidBodies))
	byName := make(map[string]*actor.RigidBody, len(description.RigidBodies))
	for _, record := range description.RigidBodies {
		body, err := installBody(record, description.PhysicsMaterials, description.Settings)
		if err != nil {
			return newSceneError(err)
		}
		bodies = append(bodies, body)
		byName[body.Name] = body
	}

	joints := make([]*jointEntry, 0, len(description.Constraints))
	for _, record := range description.Constraints {
		joint, err := installJoint(record)
		if err != nil {
			return newSceneError(err)
		}
		joints = append(joints, joint)
	}

	if err := e.configureSolvers(description.Settings); err != nil {
		return newSceneError(err)
	}

	e.description = description
	e.settings = description.Settings
	e.pending = description.Settings
	e.bodies = bodies
	e.byName = byName
	e.joints = joints

	e.events.reset()
	e.clamping = nil
	e.warnings = e.warnings[:0]
	e.stepCount = 0
	e.simulatedTime = 0
	e.stats = Statistics{}
	e.countRecords(&e.stats)
	e.state = StateInitialized

	e.sink.Info("scene installed",
		"scene", description.Metadata.Name,
		"bodies", len(bodies),
		"constraints", len(joints),
		"force_fields", len(description.ForceFields))
	return nil
}

// ResetScene returns every body to its initial state and re-arms the broken
// joints. Contacts, pending events and warnings are cleared.
func (e *Engine) ResetScene() {
	if e.description == nil {
		e.warnings = e.warnings[:0]
		e.warn(WarnNotInitialized, "", "reset ignored: no scene installed")
		return
	}

	e.state = StateReset
	for _, body := range e.bodies {
		body.Restore()
	}
	for _, entry := range e.joints {
		entry.joint.Rearm()
	}

	e.events.reset()
	e.clamping = nil
	e.warnings = e.warnings[:0]
	e.stepCount = 0
	e.simulatedTime = 0
	e.stats = Statistics{}
	e.countRecords(&e.stats)
	e.state = StateInitialized

	e.sink.Info("scene reset", "scene", e.description.Metadata.Name)
}

// Cleanup releases the scene and the backends. Only Initialize brings the
// engine back.
func (e *Engine) Cleanup() {
	e.grid = nil
	e.baseSolver = nil
	e.proximitySolver = nil
	e.description = nil
	e.bodies = nil
	e.byName = nil
	e.joints = nil
	e.events = NewEvents()
	e.clamping = nil
	e.warnings = nil
	e.stats = Statistics{}
	e.stepCount = 0
	e.simulatedTime = 0
	e.state = StateCleaned

	e.sink.Info("engine cleaned up")
}

func (e *Engine) State() EngineState {
	return e.state
}

// ============================================================================
// Step
// ============================================================================

// StepSimulation advances the scene by dt seconds in fixed sub-steps.
// Problems are reported through Warnings, the warnings of the previous call
// are dropped.
func (e *Engine) StepSimulation(dt float64) {
	e.warnings = e.warnings[:0]

	if e.description == nil || e.grid == nil {
		e.warn(WarnNotInitialized, "", "step ignored: no scene installed")
		return
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		e.warn(WarnInvalidTimeStep, "", fmt.Sprintf("step ignored: time step %v", dt))
		return
	}

	start := e.clock()
	e.latchSettings()
	e.state = StateStepping
	settings := e.settings

	subSteps := max(int(math.Ceil(dt/settings.FixedTimeStep-1e-9)), 1)
	if subSteps > settings.MaxSubSteps {
		e.warn(WarnSubStepBudget, "", fmt.Sprintf("%d sub-steps needed, limited to %d", subSteps, settings.MaxSubSteps))
		subSteps = settings.MaxSubSteps
	}
	h := dt / float64(subSteps)

	stats := Statistics{SubSteps: subSteps}
	contacts := stepContacts{
		touching: make(map[pairKey]struct{}),
		clamped:  make(map[pairKey]struct{}),
	}
	joints := e.bindJoints()
	for range subSteps {
		e.subStep(h, joints, &stats, &contacts)
	}
	e.reportClamping(contacts)

	e.events.processSleepEvents(e.bodies)
	e.events.flush()

	e.stepCount++
	e.simulatedTime += dt
	e.countRecords(&stats)
	stats.SimulationTime = e.clock().Sub(start)
	e.stats = stats
	e.state = StateIdle
}

// subStep runs the pipeline once over h seconds
func (e *Engine) subStep(h float64, joints []*constraint.Joint, stats *Statistics, contacts *stepContacts) {
	settings := e.settings

	// 1. Gravity and force fields
	applyForceFields(e.bodies, settings.Gravity, e.description.ForceFields, h)

	// 2. Collision detection, the trigger pairs only feed the events
	detection := Detection{Margin: e.contactMargin(), CCD: settings.EnableCCD, Dt: h, Workers: e.cfg.Workers}
	manifolds := NarrowPhase(BroadPhase(e.grid, e.bodies, detection), detection)
	wakeTouched(manifolds)
	manifolds = e.events.recordCollisions(manifolds)

	// 3. Routing
	partition := Classify(manifolds, Routing{
		OGCEnabled: settings.UseOGCContact,
		Hybrid:     settings.HybridMode,
		Radius:     settings.OGCContactRadius,
	})
	for _, m := range partition.Dropped {
		e.warn(WarnEmptyManifold, pairSubject(m.BodyA.Name, m.BodyB.Name), "manifold without contact points dropped")
	}
	stats.setPartition(partition)
	contacts.touch(partition.Base)
	contacts.touch(partition.Proximity)

	// 4. Base solver: its manifolds and every joint
	baseStart := e.clock()
	base := e.baseSolver.Solve(partition.Base, joints, h)
	stats.BaseSolveTime += e.clock().Sub(baseStart)
	stats.BaseIterations += base.Iterations
	for _, joint := range base.Broken {
		e.warn(WarnConstraintBroken, joint.Name, fmt.Sprintf("constraint broke under impulse %.4g", joint.AccumulatedImpulse))
	}

	// 5. Proximity solver, applied in one pass
	proximityStart := e.clock()
	proximity := e.proximitySolver.Solve(partition.Proximity, h)
	ogc.Apply(proximity.Impulses)
	stats.OGCSolveTime += e.clock().Sub(proximityStart)
	stats.OGCIterations += proximity.Iterations
	stats.ClampedImpulseCount += proximity.Clamped
	for _, m := range proximity.ClampedManifolds {
		contacts.clamped[makePairKey(m.BodyA.Name, m.BodyB.Name)] = struct{}{}
	}

	// 6. Integration
	task(e.cfg.Workers, e.bodies, func(_ int, body *actor.RigidBody) {
		body.Integrate(h)
	})

	// 7. Sleeping
	if settings.EnableSleeping {
		for _, body := range e.bodies {
			body.TrySleep(h, settings.SleepingTime)
		}
	}
}

// stepContacts collects the pairs in contact and the pairs with a clamped
// proximity impulse over the sub-steps of a step
type stepContacts struct {
	touching map[pairKey]struct{}
	clamped  map[pairKey]struct{}
}

func (c *stepContacts) touch(manifolds []*constraint.Manifold) {
	for _, m := range manifolds {
		c.touching[makePairKey(m.BodyA.Name, m.BodyB.Name)] = struct{}{}
	}
}

// reportClamping warns once per pair when its proximity impulse starts being
// clamped. A pair is reported again only after its contact ended.
func (e *Engine) reportClamping(contacts stepContacts) {
	keys := make([]pairKey, 0, len(contacts.clamped))
	for key := range contacts.clamped {
		if _, reported := e.clamping[key]; !reported {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, comparePairKeys)
	for _, key := range keys {
		e.warn(WarnImpulseClamped, pairSubject(key.bodyA, key.bodyB), "proximity impulse clamped to the approach limit")
	}

	next := make(map[pairKey]struct{}, len(contacts.clamped))
	for key := range e.clamping {
		if _, ok := contacts.touching[key]; ok {
			next[key] = struct{}{}
		}
	}
	for key := range contacts.clamped {
		next[key] = struct{}{}
	}
	e.clamping = next
}

// contactMargin is the separation under which pairs get contact points
func (e *Engine) contactMargin() float64 {
	margin := e.settings.ContactBreakingThreshold
	if e.settings.UseOGCContact || e.settings.HybridMode {
		margin = math.Max(margin, e.settings.OGCContactRadius)
	}
	return margin
}

// bindJoints resolves the bodies of every joint by name. A joint missing one
// of its bodies sits out the step.
func (e *Engine) bindJoints() []*constraint.Joint {
	joints := make([]*constraint.Joint, 0, len(e.joints))

	for _, entry := range e.joints {
		joint := entry.joint
		joint.BodyA, joint.BodyB = nil, nil
		if !joint.Enabled || joint.Broken {
			continue
		}

		bodyA, okA := e.byName[entry.bodyA]
		bodyB, okB := e.byName[entry.bodyB]
		if !okA || (entry.bodyB != "" && !okB) {
			e.warn(WarnConstraintSkipped, joint.Name, "constraint skipped: body missing")
			continue
		}

		joint.BodyA, joint.BodyB = bodyA, bodyB
		wakeJoined(bodyA, bodyB)
		joints = append(joints, joint)
	}

	return joints
}

// wakeTouched wakes the sleeping bodies touched by an active one
func wakeTouched(manifolds []*constraint.Manifold) {
	for _, m := range manifolds {
		wakeJoined(m.BodyA, m.BodyB)
	}
}

func wakeJoined(bodyA, bodyB *actor.RigidBody) {
	if bodyB == nil {
		return
	}
	if bodyA.IsSleeping && bodyB.IsActive() {
		bodyA.Awake()
	} else if bodyB.IsSleeping && bodyA.IsActive() {
		bodyB.Awake()
	}
}

// latchSettings applies the pending settings to the step about to run.
// Settings the solvers refuse keep their previous value.
func (e *Engine) latchSettings() {
	if e.pending == e.settings {
		return
	}
	if err := e.configureSolvers(e.pending); err != nil {
		e.warn(WarnInvalidSetting, "", err.Error())
		e.pending = e.settings
		return
	}
	e.settings = e.pending
}

func (e *Engine) configureSolvers(settings scene.SimulationSettings) error {
	baseSettings := e.baseSolver.Settings()
	baseSettings.Iterations = settings.SolverIterations
	baseSettings.ERP = settings.ERP
	baseSettings.CFM = settings.CFM
	if err := baseSettings.Validate(); err != nil {
		return err
	}

	proximitySettings := e.proximitySolver.Settings()
	proximitySettings.Radius = settings.OGCContactRadius
	proximitySettings.ERP = settings.ERP
	if err := proximitySettings.Validate(); err != nil {
		return err
	}

	if err := e.baseSolver.SetSettings(baseSettings); err != nil {
		return err
	}
	return e.proximitySolver.SetSettings(proximitySettings)
}

func (e *Engine) warn(kind WarningKind, subject, message string) {
	w := StepWarning{Kind: kind, Subject: subject, Message: message}
	e.warnings = append(e.warnings, w)
	e.sink.Warning(w)
}

func (e *Engine) countRecords(stats *Statistics) {
	stats.RigidBodyCount = len(e.bodies)
	stats.ConstraintCount = len(e.joints)
	stats.ForceFieldCount = len(e.description.ForceFields)
	stats.StepCount = e.stepCount
	stats.SimulatedTime = e.simulatedTime

	stats.ActiveBodyCount = 0
	for _, body := range e.bodies {
		if body.IsActive() {
			stats.ActiveBodyCount++
		}
	}
	stats.BrokenConstraintCount = 0
	for _, entry := range e.joints {
		if entry.joint.Broken {
			stats.BrokenConstraintCount++
		}
	}
}

func pairSubject(bodyA, bodyB string) string {
	key := makePairKey(bodyA, bodyB)
	return key.bodyA + "/" + key.bodyB
}

// ============================================================================
// Editing
// ============================================================================

// candidate is a scene holding the installed materials and settings, used to
// validate single records
func (e *Engine) candidate() *scene.Scene {
	return &scene.Scene{
		PhysicsMaterials: e.description.PhysicsMaterials,
		VisualMaterials:  e.description.VisualMaterials,
		Settings:         e.description.Settings,
	}
}

// AddRigidBody installs a new body. The name must be unused.
func (e *Engine) AddRigidBody(record scene.RigidBody) error {
	if e.description == nil {
		return ErrNotInitialized
	}

	candidate := e.candidate()
	candidate.RigidBodies = append(slices.Clone(e.description.RigidBodies), record)
	if err := candidate.Validate(); err != nil {
		return newSceneError(err)
	}
	body, err := installBody(record, e.description.PhysicsMaterials, e.description.Settings)
	if err != nil {
		return newSceneError(err)
	}

	e.description.RigidBodies = append(e.description.RigidBodies, record)
	e.bodies = append(e.bodies, body)
	e.byName[body.Name] = body
	e.countRecords(&e.stats)
	return nil
}

// UpdateRigidBody replaces the body of the same name, in place. Its new state
// also becomes the state ResetScene returns to.
func (e *Engine) UpdateRigidBody(record scene.RigidBody) error {
	if e.description == nil {
		return ErrNotInitialized
	}
	index := slices.IndexFunc(e.bodies, func(b *actor.RigidBody) bool { return b.Name == record.Name })
	if index < 0 {
		return newSceneError(fmt.Errorf("rigid body %q does not exist", record.Name))
	}

	candidate := e.candidate()
	candidate.RigidBodies = []scene.RigidBody{record}
	if err := candidate.Validate(); err != nil {
		return newSceneError(err)
	}
	body, err := installBody(record, e.description.PhysicsMaterials, e.description.Settings)
	if err != nil {
		return newSceneError(err)
	}

	e.description.RigidBodies[index] = record
	e.bodies[index] = body
	e.byName[body.Name] = body
	e.countRecords(&e.stats)
	return nil
}

// RemoveRigidBody drops a body. Constraints attached to it stay installed and
// are skipped while the body is missing.
func (e *Engine) RemoveRigidBody(name string) bool {
	if e.description == nil {
		return false
	}
	if _, ok := e.byName[name]; !ok {
		return false
	}

	e.bodies = slices.DeleteFunc(e.bodies, func(b *actor.RigidBody) bool { return b.Name == name })
	e.description.RigidBodies = slices.DeleteFunc(e.description.RigidBodies, func(b scene.RigidBody) bool { return b.Name == name })
	delete(e.byName, name)
	e.events.forget(name)
	e.countRecords(&e.stats)
	return true
}

// AddConstraint installs a joint between existing bodies
func (e *Engine) AddConstraint(record scene.Constraint) error {
	if e.description == nil {
		return ErrNotInitialized
	}
	if _, exists := e.findJoint(record.Name); exists {
		return newSceneError(fmt.Errorf("duplicate constraint name %q", record.Name))
	}

	candidate := e.candidate()
	candidate.RigidBodies = e.description.RigidBodies
	candidate.Constraints = []scene.Constraint{record}
	if err := candidate.Validate(); err != nil {
		return newSceneError(err)
	}
	joint, err := installJoint(record)
	if err != nil {
		return newSceneError(err)
	}

	e.description.Constraints = append(e.description.Constraints, record)
	e.joints = append(e.joints, joint)
	e.countRecords(&e.stats)
	return nil
}

func (e *Engine) RemoveConstraint(name string) bool {
	if e.description == nil {
		return false
	}
	if _, ok := e.findJoint(name); !ok {
		return false
	}

	e.joints = slices.DeleteFunc(e.joints, func(j *jointEntry) bool { return j.joint.Name == name })
	e.description.Constraints = slices.DeleteFunc(e.description.Constraints, func(c scene.Constraint) bool { return c.Name == name })
	e.countRecords(&e.stats)
	return true
}

func (e *Engine) AddForceField(record scene.ForceField) error {
	if e.description == nil {
		return ErrNotInitialized
	}

	candidate := e.candidate()
	candidate.ForceFields = append(slices.Clone(e.description.ForceFields), record)
	if err := candidate.Validate(); err != nil {
		return newSceneError(err)
	}

	e.description.ForceFields = append(e.description.ForceFields, record)
	e.countRecords(&e.stats)
	return nil
}

func (e *Engine) RemoveForceField(name string) bool {
	if e.description == nil {
		return false
	}
	if _, ok := e.description.FindForceField(name); !ok {
		return false
	}

	e.description.ForceFields = slices.DeleteFunc(e.description.ForceFields, func(f scene.ForceField) bool { return f.Name == name })
	e.countRecords(&e.stats)
	return true
}

// ApplyImpulse wakes the body and applies impulse at the world point. It
// reports false for unknown and immovable bodies.
func (e *Engine) ApplyImpulse(name string, impulse, point mgl64.Vec3) bool {
	body, ok := e.byName[name]
	if !ok || body.InverseMass() == 0 {
		return false
	}
	body.ApplyImpulse(impulse, point)
	return true
}

// Subscribe adds a listener called after each step
func (e *Engine) Subscribe(eventType EventType, listener EventListener) {
	e.events.Subscribe(eventType, listener)
}

// ============================================================================
// Queries
// ============================================================================

func (e *Engine) GetRigidBodyTransform(name string) (actor.Transform, bool) {
	body, ok := e.byName[name]
	if !ok {
		return actor.Transform{}, false
	}
	return body.Transform, true
}

func (e *Engine) GetRigidBodyLinearVelocity(name string) (mgl64.Vec3, bool) {
	body, ok := e.byName[name]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return body.Velocity, true
}

func (e *Engine) GetRigidBodyAngularVelocity(name string) (mgl64.Vec3, bool) {
	body, ok := e.byName[name]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return body.AngularVelocity, true
}

// IsRigidBodyActive reports whether the body moves: not static and awake
func (e *Engine) IsRigidBodyActive(name string) bool {
	body, ok := e.byName[name]
	return ok && body.IsActive()
}

func (e *Engine) GetConstraint(name string) (ConstraintInfo, bool) {
	entry, ok := e.findJoint(name)
	if !ok {
		return ConstraintInfo{}, false
	}
	return entry.info(), true
}

func (e *Engine) findJoint(name string) (*jointEntry, bool) {
	for _, entry := range e.joints {
		if entry.joint.Name == name {
			return entry, true
		}
	}
	return nil, false
}

// BodyNames lists the bodies in store order
func (e *Engine) BodyNames() []string {
	names := make([]string, len(e.bodies))
	for i, body := range e.bodies {
		names[i] = body.Name
	}
	return names
}

// Raycast returns the nearest body crossed by the segment [from, to]
func (e *Engine) Raycast(from, to mgl64.Vec3) RaycastResult {
	return raycast(e.bodies, from, to)
}

// GetCollidingObjects lists the bodies that had a manifold with name during
// the last step, sorted by name
func (e *Engine) GetCollidingObjects(name string) []string {
	return e.events.partners(name)
}

func (e *Engine) IsColliding(bodyA, bodyB string) bool {
	return e.events.touching(bodyA, bodyB)
}

func (e *Engine) GetStatistics() Statistics {
	return e.stats
}

// Warnings returns the warnings of the last step
func (e *Engine) Warnings() []StepWarning {
	return slices.Clone(e.warnings)
}

// ============================================================================
// Settings, applied at the start of the next step
// ============================================================================

// SetTimeStep sets the fixed sub-step duration
func (e *Engine) SetTimeStep(step float64) error {
	if !(step > 0) || math.IsInf(step, 0) {
		return fmt.Errorf("%w: time step %v", ErrInvalidSetting, step)
	}
	e.pending.FixedTimeStep = step
	return nil
}

func (e *Engine) TimeStep() float64 {
	return e.pending.FixedTimeStep
}

func (e *Engine) SetGravity(gravity mgl64.Vec3) error {
	for _, c := range gravity {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: gravity %v", ErrInvalidSetting, gravity)
		}
	}
	e.pending.Gravity = gravity
	return nil
}

func (e *Engine) SetSolverIterations(iterations int) error {
	if iterations < 1 {
		return fmt.Errorf("%w: solver iterations %d", ErrInvalidSetting, iterations)
	}
	e.pending.SolverIterations = iterations
	return nil
}

func (e *Engine) EnableOGCContact(enabled bool) {
	e.pending.UseOGCContact = enabled
}

func (e *Engine) SetOGCContactRadius(radius float64) error {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: ogc contact radius %v", ErrInvalidSetting, radius)
	}
	e.pending.OGCContactRadius = radius
	return nil
}

func (e *Engine) SetHybridMode(enabled bool) {
	e.pending.HybridMode = enabled
}

func (e *Engine) IsOGCEnabled() bool {
	return e.pending.UseOGCContact
}

func (e *Engine) IsHybridModeEnabled() bool {
	return e.pending.HybridMode
}
