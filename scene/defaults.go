package scene

const (
	DefaultMaterialName = "Default"
	DefaultCameraName   = "MainCamera"
	DefaultLightName    = "MainLight"

	// Unbounded is the default constraint limit and breaking threshold
	Unbounded = 1e30
)

func DefaultPhysicsMaterial(name string) PhysicsMaterial {
	return PhysicsMaterial{
		Name:     name,
		Density:  1.0,
		Friction: 0.5,
	}
}

func DefaultVisualMaterial(name string) VisualMaterial {
	return VisualMaterial{
		Name:          name,
		DiffuseColor:  Color{0.8, 0.8, 0.8, 1},
		SpecularColor: Color{0.2, 0.2, 0.2, 1},
		EmissiveColor: Color{0, 0, 0, 1},
		Shininess:     32,
		Roughness:     0.5,
		Transparency:  1,
	}
}

// DefaultRigidBody is a 1 kg unit box at the origin
func DefaultRigidBody(name string) RigidBody {
	return RigidBody{
		Name:                     name,
		Transform:                NewTransform(Vec3{}),
		Shape:                    BoxShape(Vec3{0.5, 0.5, 0.5}),
		Mass:                     1.0,
		LinearFactor:             Vec3{1, 1, 1},
		AngularFactor:            Vec3{1, 1, 1},
		LinearSleepingThreshold:  0.8,
		AngularSleepingThreshold: 1.0,
		PhysicsMaterial:          DefaultMaterialName,
		VisualMaterial:           DefaultMaterialName,
		CollisionGroup:           1,
		CollisionMask:            -1,
		Visible:                  true,
		CastShadows:              true,
		ReceiveShadows:           true,
	}
}

func DefaultConstraint(name string, constraintType ConstraintType) Constraint {
	return Constraint{
		Name:                     name,
		Type:                     constraintType,
		FrameA:                   NewTransform(Vec3{}),
		FrameB:                   NewTransform(Vec3{}),
		LinearLowerLimit:         Vec3{-Unbounded, -Unbounded, -Unbounded},
		LinearUpperLimit:         Vec3{Unbounded, Unbounded, Unbounded},
		AngularLowerLimit:        Vec3{-Unbounded, -Unbounded, -Unbounded},
		AngularUpperLimit:        Vec3{Unbounded, Unbounded, Unbounded},
		BreakingImpulseThreshold: Unbounded,
		Enabled:                  true,
	}
}

func DefaultForceField(name string, fieldType ForceFieldType) ForceField {
	return ForceField{
		Name:           name,
		Type:           fieldType,
		Direction:      Vec3{0, -9.81, 0},
		Strength:       1.0,
		Radius:         10.0,
		Falloff:        1.0,
		AffectedGroups: -1,
		Enabled:        true,
	}
}

func DefaultLight(name string) Light {
	return Light{
		Name:         name,
		Type:         LightDirectional,
		Transform:    NewTransform(Vec3{}),
		Color:        Color{1, 1, 1, 1},
		Intensity:    1,
		Range:        10,
		SpotAngle:    45,
		SpotExponent: 1,
		CastShadows:  true,
		Enabled:      true,
	}
}

func DefaultCamera(name string) Camera {
	return Camera{
		Name:             name,
		Transform:        NewTransform(Vec3{}),
		FOV:              45,
		NearPlane:        0.1,
		FarPlane:         1000,
		AspectRatio:      16.0 / 9.0,
		OrthographicSize: 10,
	}
}

func DefaultSettings() SimulationSettings {
	return SimulationSettings{
		TimeStep:                   1.0 / 60.0,
		MaxSubSteps:                10,
		FixedTimeStep:              1.0 / 240.0,
		Gravity:                    Vec3{0, -9.81, 0},
		SolverIterations:           10,
		PositionIterations:         3,
		ERP:                        0.2,
		CFM:                        0,
		UseOGCContact:              false,
		OGCContactRadius:           0.01,
		HybridMode:                 false,
		ContactBreakingThreshold:   0.02,
		ContactProcessingThreshold: 0.01,
		EnableCCD:                  false,
		EnableSleeping:             true,
		SleepingLinearThreshold:    0.8,
		SleepingAngularThreshold:   1.0,
		SleepingTime:               2.0,
	}
}

func defaultPhysicsMaterials() []PhysicsMaterial {
	metal := DefaultPhysicsMaterial("Metal")
	metal.Density, metal.Friction, metal.Restitution = 7.8, 0.7, 0.1

	wood := DefaultPhysicsMaterial("Wood")
	wood.Density, wood.Friction, wood.Restitution = 0.6, 0.6, 0.3

	rubber := DefaultPhysicsMaterial("Rubber")
	rubber.Density, rubber.Friction, rubber.Restitution = 1.2, 0.9, 0.8

	ice := DefaultPhysicsMaterial("Ice")
	ice.Density, ice.Friction, ice.Restitution = 0.9, 0.1, 0.1

	return []PhysicsMaterial{DefaultPhysicsMaterial(DefaultMaterialName), metal, wood, rubber, ice}
}

func defaultVisualMaterials() []VisualMaterial {
	red := DefaultVisualMaterial("Red")
	red.DiffuseColor = Color{0.8, 0.2, 0.2, 1}

	green := DefaultVisualMaterial("Green")
	green.DiffuseColor = Color{0.2, 0.8, 0.2, 1}

	blue := DefaultVisualMaterial("Blue")
	blue.DiffuseColor = Color{0.2, 0.2, 0.8, 1}

	return []VisualMaterial{DefaultVisualMaterial(DefaultMaterialName), red, green, blue}
}
