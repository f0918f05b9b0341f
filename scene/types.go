package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written in the metadata of saved scenes
const FormatVersion = "1.0.0"

type Vec3 = mgl64.Vec3

// Quat is a rotation quaternion, identity by default
type Quat struct {
	W float64 `yaml:"w"`
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func QuatIdent() Quat {
	return Quat{W: 1}
}

func (q Quat) Mgl() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func QuatFromMgl(q mgl64.Quat) Quat {
	return Quat{W: q.W, X: q.V.X(), Y: q.V.Y(), Z: q.V.Z()}
}

// Transform places an object. Scale is kept for authoring tools and never simulated.
type Transform struct {
	Position Vec3 `yaml:"position,flow"`
	Rotation Quat `yaml:"rotation,flow"`
	Scale    Vec3 `yaml:"scale,flow"`
}

func NewTransform(position Vec3) Transform {
	return Transform{Position: position, Rotation: QuatIdent(), Scale: Vec3{1, 1, 1}}
}

func (t *Transform) UnmarshalYAML(node *yaml.Node) error {
	type plain Transform
	p := plain(NewTransform(Vec3{}))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = Transform(p)
	return nil
}

type Color struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

// enumNames backs the YAML form of the enums below
type enumNames []string

func (n enumNames) name(i int) string {
	if i < 0 || i >= len(n) {
		return "unknown"
	}
	return n[i]
}

func (n enumNames) parse(kind string, node *yaml.Node) (int, error) {
	var s string
	if err := node.Decode(&s); err != nil {
		return 0, err
	}
	for i, name := range n {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("scene: line %d: unknown %s %q", node.Line, kind, s)
}

type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapeCylinder
	ShapeCapsule
	ShapeCone
	ShapePlane
	ShapeConvexHull
	ShapeTriangleMesh
	ShapeCompound
	ShapeHeightField
)

var shapeNames = enumNames{"box", "sphere", "cylinder", "capsule", "cone", "plane",
	"convex_hull", "triangle_mesh", "compound", "height_field"}

func (t ShapeType) String() string                 { return shapeNames.name(int(t)) }
func (t ShapeType) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *ShapeType) UnmarshalYAML(node *yaml.Node) error {
	i, err := shapeNames.parse("shape type", node)
	*t = ShapeType(i)
	return err
}

// Supported reports whether the simulation core can build the shape
func (t ShapeType) Supported() bool {
	return t <= ShapePlane
}

// Shape holds the parameters of every supported kind; each kind reads its own fields.
// Capsule, cylinder and cone are aligned on Y. Height is the cylindrical part for a
// capsule and the full height otherwise. A plane is Normal·p = Distance in body space.
type Shape struct {
	Type        ShapeType `yaml:"type"`
	HalfExtents Vec3      `yaml:"half_extents,flow,omitempty"`
	Radius      float64   `yaml:"radius,omitempty"`
	Height      float64   `yaml:"height,omitempty"`
	Normal      Vec3      `yaml:"normal,flow,omitempty"`
	Distance    float64   `yaml:"distance,omitempty"`
}

func BoxShape(halfExtents Vec3) Shape {
	return Shape{Type: ShapeBox, HalfExtents: halfExtents}
}

func SphereShape(radius float64) Shape {
	return Shape{Type: ShapeSphere, Radius: radius}
}

func CapsuleShape(radius, height float64) Shape {
	return Shape{Type: ShapeCapsule, Radius: radius, Height: height}
}

func CylinderShape(radius, height float64) Shape {
	return Shape{Type: ShapeCylinder, Radius: radius, Height: height}
}

func ConeShape(radius, height float64) Shape {
	return Shape{Type: ShapeCone, Radius: radius, Height: height}
}

func PlaneShape(normal Vec3, distance float64) Shape {
	return Shape{Type: ShapePlane, Normal: normal, Distance: distance}
}

type PhysicsMaterial struct {
	Name             string  `yaml:"name"`
	Density          float64 `yaml:"density"`
	Friction         float64 `yaml:"friction"`
	Restitution      float64 `yaml:"restitution"`
	RollingFriction  float64 `yaml:"rolling_friction"`
	SpinningFriction float64 `yaml:"spinning_friction"`
	ContactDamping   float64 `yaml:"contact_damping"`
	ContactStiffness float64 `yaml:"contact_stiffness"`
	IsKinematic      bool    `yaml:"is_kinematic"`
	IsStatic         bool    `yaml:"is_static"`
}

func (m *PhysicsMaterial) UnmarshalYAML(node *yaml.Node) error {
	type plain PhysicsMaterial
	p := plain(DefaultPhysicsMaterial(""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = PhysicsMaterial(p)
	return nil
}

// VisualMaterial is carried for authoring tools, physics never reads it
type VisualMaterial struct {
	Name             string  `yaml:"name"`
	DiffuseColor     Color   `yaml:"diffuse_color,flow"`
	SpecularColor    Color   `yaml:"specular_color,flow"`
	EmissiveColor    Color   `yaml:"emissive_color,flow"`
	Shininess        float64 `yaml:"shininess"`
	Metallic         float64 `yaml:"metallic"`
	Roughness        float64 `yaml:"roughness"`
	Transparency     float64 `yaml:"transparency"`
	DiffuseTexture   string  `yaml:"diffuse_texture,omitempty"`
	NormalTexture    string  `yaml:"normal_texture,omitempty"`
	SpecularTexture  string  `yaml:"specular_texture,omitempty"`
	EmissiveTexture  string  `yaml:"emissive_texture,omitempty"`
	MetallicTexture  string  `yaml:"metallic_texture,omitempty"`
	RoughnessTexture string  `yaml:"roughness_texture,omitempty"`
}

func (m *VisualMaterial) UnmarshalYAML(node *yaml.Node) error {
	type plain VisualMaterial
	p := plain(DefaultVisualMaterial(""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = VisualMaterial(p)
	return nil
}

type RigidBody struct {
	Name      string    `yaml:"name"`
	Transform Transform `yaml:"transform"`
	Shape     Shape     `yaml:"shape"`

	Mass float64 `yaml:"mass"`
	// InertiaTensor is the body-space diagonal, zero derives it from the shape
	InertiaTensor   Vec3 `yaml:"inertia_tensor,flow"`
	LinearVelocity  Vec3 `yaml:"linear_velocity,flow"`
	AngularVelocity Vec3 `yaml:"angular_velocity,flow"`
	LinearFactor    Vec3 `yaml:"linear_factor,flow"`
	AngularFactor   Vec3 `yaml:"angular_factor,flow"`

	LinearDamping            float64 `yaml:"linear_damping"`
	AngularDamping           float64 `yaml:"angular_damping"`
	LinearSleepingThreshold  float64 `yaml:"linear_sleeping_threshold"`
	AngularSleepingThreshold float64 `yaml:"angular_sleeping_threshold"`

	PhysicsMaterial string `yaml:"physics_material"`
	VisualMaterial  string `yaml:"visual_material"`

	CollisionGroup int  `yaml:"collision_group"`
	CollisionMask  int  `yaml:"collision_mask"`
	IsTrigger      bool `yaml:"is_trigger"`

	Visible        bool `yaml:"visible"`
	CastShadows    bool `yaml:"cast_shadows"`
	ReceiveShadows bool `yaml:"receive_shadows"`
}

func (b *RigidBody) UnmarshalYAML(node *yaml.Node) error {
	type plain RigidBody
	p := plain(DefaultRigidBody(""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*b = RigidBody(p)
	return nil
}

type ConstraintType int

const (
	ConstraintPointToPoint ConstraintType = iota
	ConstraintHinge
	ConstraintSlider
	ConstraintConeTwist
	ConstraintGeneric6DOF
	ConstraintFixed
)

var constraintNames = enumNames{"point_to_point", "hinge", "slider", "cone_twist", "generic_6dof", "fixed"}

func (t ConstraintType) String() string                 { return constraintNames.name(int(t)) }
func (t ConstraintType) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *ConstraintType) UnmarshalYAML(node *yaml.Node) error {
	i, err := constraintNames.parse("constraint type", node)
	*t = ConstraintType(i)
	return err
}

// Constraint joins BodyA to BodyB, or to the world when BodyB is empty.
// Frames are relative to their body.
type Constraint struct {
	Name   string         `yaml:"name"`
	Type   ConstraintType `yaml:"type"`
	BodyA  string         `yaml:"body_a"`
	BodyB  string         `yaml:"body_b,omitempty"`
	FrameA Transform      `yaml:"frame_a"`
	FrameB Transform      `yaml:"frame_b"`

	LinearLowerLimit  Vec3 `yaml:"linear_lower_limit,flow"`
	LinearUpperLimit  Vec3 `yaml:"linear_upper_limit,flow"`
	AngularLowerLimit Vec3 `yaml:"angular_lower_limit,flow"`
	AngularUpperLimit Vec3 `yaml:"angular_upper_limit,flow"`

	BreakingImpulseThreshold float64 `yaml:"breaking_impulse_threshold"`
	Enabled                  bool    `yaml:"enabled"`
}

func (c *Constraint) UnmarshalYAML(node *yaml.Node) error {
	type plain Constraint
	p := plain(DefaultConstraint("", ConstraintPointToPoint))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Constraint(p)
	return nil
}

type ForceFieldType int

const (
	ForceFieldGravity ForceFieldType = iota
	ForceFieldUniform
	ForceFieldRadial
	ForceFieldVortex
	ForceFieldDrag
	ForceFieldSpring
)

var forceFieldNames = enumNames{"gravity", "uniform", "radial", "vortex", "drag", "spring"}

func (t ForceFieldType) String() string                 { return forceFieldNames.name(int(t)) }
func (t ForceFieldType) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *ForceFieldType) UnmarshalYAML(node *yaml.Node) error {
	i, err := forceFieldNames.parse("force field type", node)
	*t = ForceFieldType(i)
	return err
}

// ForceField acts on the bodies whose collision group intersects AffectedGroups
type ForceField struct {
	Name      string         `yaml:"name"`
	Type      ForceFieldType `yaml:"type"`
	Position  Vec3           `yaml:"position,flow"`
	Direction Vec3           `yaml:"direction,flow"`
	Strength  float64        `yaml:"strength"`
	Radius    float64        `yaml:"radius"`
	// Falloff is the exponent of (1 - distance/Radius)
	Falloff        float64 `yaml:"falloff"`
	AffectedGroups int     `yaml:"affected_groups"`
	Enabled        bool    `yaml:"enabled"`
}

func (f *ForceField) UnmarshalYAML(node *yaml.Node) error {
	type plain ForceField
	p := plain(DefaultForceField("", ForceFieldGravity))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = ForceField(p)
	return nil
}

type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
	LightArea
)

var lightNames = enumNames{"directional", "point", "spot", "area"}

func (t LightType) String() string                 { return lightNames.name(int(t)) }
func (t LightType) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *LightType) UnmarshalYAML(node *yaml.Node) error {
	i, err := lightNames.parse("light type", node)
	*t = LightType(i)
	return err
}

type Light struct {
	Name         string    `yaml:"name"`
	Type         LightType `yaml:"type"`
	Transform    Transform `yaml:"transform"`
	Color        Color     `yaml:"color,flow"`
	Intensity    float64   `yaml:"intensity"`
	Range        float64   `yaml:"range"`
	SpotAngle    float64   `yaml:"spot_angle"`
	SpotExponent float64   `yaml:"spot_exponent"`
	CastShadows  bool      `yaml:"cast_shadows"`
	Enabled      bool      `yaml:"enabled"`
}

func (l *Light) UnmarshalYAML(node *yaml.Node) error {
	type plain Light
	p := plain(DefaultLight(""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*l = Light(p)
	return nil
}

type Camera struct {
	Name             string    `yaml:"name"`
	Transform        Transform `yaml:"transform"`
	FOV              float64   `yaml:"fov"`
	NearPlane        float64   `yaml:"near_plane"`
	FarPlane         float64   `yaml:"far_plane"`
	AspectRatio      float64   `yaml:"aspect_ratio"`
	IsOrthographic   bool      `yaml:"is_orthographic"`
	OrthographicSize float64   `yaml:"orthographic_size"`
}

func (c *Camera) UnmarshalYAML(node *yaml.Node) error {
	type plain Camera
	p := plain(DefaultCamera(""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Camera(p)
	return nil
}

type SimulationSettings struct {
	TimeStep      float64 `yaml:"time_step"`
	MaxSubSteps   int     `yaml:"max_sub_steps"`
	FixedTimeStep float64 `yaml:"fixed_time_step"`
	Gravity       Vec3    `yaml:"gravity,flow"`

	SolverIterations   int     `yaml:"solver_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	ERP                float64 `yaml:"erp"`
	CFM                float64 `yaml:"cfm"`

	UseOGCContact    bool    `yaml:"use_ogc_contact"`
	OGCContactRadius float64 `yaml:"ogc_contact_radius"`
	HybridMode       bool    `yaml:"hybrid_mode"`

	ContactBreakingThreshold   float64 `yaml:"contact_breaking_threshold"`
	ContactProcessingThreshold float64 `yaml:"contact_processing_threshold"`
	EnableCCD                  bool    `yaml:"enable_ccd"`

	EnableSleeping           bool    `yaml:"enable_sleeping"`
	SleepingLinearThreshold  float64 `yaml:"sleeping_linear_threshold"`
	SleepingAngularThreshold float64 `yaml:"sleeping_angular_threshold"`
	SleepingTime             float64 `yaml:"sleeping_time"`
}

type Metadata struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	Author       string            `yaml:"author,omitempty"`
	Version      string            `yaml:"version"`
	CreatedDate  string            `yaml:"created_date,omitempty"`
	ModifiedDate string            `yaml:"modified_date,omitempty"`
	Custom       map[string]string `yaml:"custom,omitempty"`
}
