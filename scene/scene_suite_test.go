package scene_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/ogcsim/scene"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestScene(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scene Suite")
}

func fallingBoxScene() *scene.Scene {
	s := scene.New()
	s.Metadata.Name = "falling box"

	ground := scene.DefaultRigidBody("Ground")
	ground.Shape = scene.PlaneShape(scene.Vec3{0, 1, 0}, 0)
	ground.Mass = 0
	s.AddRigidBody(ground)

	box := scene.DefaultRigidBody("Box")
	box.Transform.Position = scene.Vec3{0, 5, 0}
	box.PhysicsMaterial = "Wood"
	s.AddRigidBody(box)

	return s
}

func problemsOf(err error) []string {
	var validation *scene.ValidationError
	Expect(err).To(BeAssignableToTypeOf(validation))
	return err.(*scene.ValidationError).Problems
}

var _ = Describe("Validate", func() {
	var s *scene.Scene

	BeforeEach(func() {
		s = fallingBoxScene()
	})

	It("accepts a well formed scene", func() {
		Expect(s.Validate()).To(Succeed())
	})

	It("rejects duplicate body names", func() {
		s.AddRigidBody(scene.DefaultRigidBody("Box"))
		err := s.Validate()
		Expect(err).To(MatchError(scene.ErrInvalid))
		Expect(problemsOf(err)).To(ConsistOf(ContainSubstring(`duplicate rigid body name "Box"`)))
	})

	It("rejects unnamed bodies", func() {
		s.AddRigidBody(scene.DefaultRigidBody(""))
		Expect(problemsOf(s.Validate())).To(ConsistOf(ContainSubstring("has no name")))
	})

	It("rejects unknown materials", func() {
		body, _ := s.FindRigidBody("Box")
		body.PhysicsMaterial = "Unobtainium"
		body.VisualMaterial = "Plaid"
		Expect(problemsOf(s.Validate())).To(HaveLen(2))
	})

	DescribeTable("mass",
		func(mass float64, valid bool) {
			body, _ := s.FindRigidBody("Box")
			body.Mass = mass
			if valid {
				Expect(s.Validate()).To(Succeed())
			} else {
				Expect(s.Validate()).To(MatchError(ContainSubstring("invalid mass")))
			}
		},
		Entry("zero is static", 0.0, true),
		Entry("positive", 2.5, true),
		Entry("negative", -1.0, false),
	)

	DescribeTable("shape parameters",
		func(shape scene.Shape, valid bool) {
			body, _ := s.FindRigidBody("Box")
			body.Shape = shape
			if valid {
				Expect(s.Validate()).To(Succeed())
			} else {
				Expect(s.Validate()).To(MatchError(scene.ErrInvalid))
			}
		},
		Entry("sphere", scene.SphereShape(0.5), true),
		Entry("capsule", scene.CapsuleShape(0.25, 1), true),
		Entry("negative radius", scene.SphereShape(-1), false),
		Entry("flat cylinder", scene.CylinderShape(1, 0), false),
		Entry("zero half extent", scene.BoxShape(scene.Vec3{1, 1, 0}), false),
		Entry("convex hull", scene.Shape{Type: scene.ShapeConvexHull}, false),
		Entry("compound", scene.Shape{Type: scene.ShapeCompound}, false),
	)

	Context("constraints", func() {
		var hinge scene.Constraint

		BeforeEach(func() {
			hinge = scene.DefaultConstraint("Hinge", scene.ConstraintHinge)
			hinge.BodyA = "Box"
		})

		It("accepts a joint to the world", func() {
			s.AddConstraint(hinge)
			Expect(s.Validate()).To(Succeed())
		})

		It("rejects dangling bodies", func() {
			hinge.BodyB = "Ghost"
			s.AddConstraint(hinge)
			Expect(s.Validate()).To(MatchError(ContainSubstring(`unknown body B "Ghost"`)))
		})

		It("rejects a missing body A", func() {
			hinge.BodyA = ""
			s.AddConstraint(hinge)
			Expect(s.Validate()).To(MatchError(ContainSubstring("has no body A")))
		})

		It("rejects inverted limits except on generic 6-DOF joints", func() {
			hinge.AngularLowerLimit = scene.Vec3{0, 0, 1}
			hinge.AngularUpperLimit = scene.Vec3{0, 0, -1}
			s.AddConstraint(hinge)
			Expect(s.Validate()).To(MatchError(ContainSubstring("lower limit above its upper limit")))

			s.Constraints[0].Type = scene.ConstraintGeneric6DOF
			Expect(s.Validate()).To(Succeed())
		})

		It("rejects a non positive breaking threshold", func() {
			hinge.BreakingImpulseThreshold = 0
			s.AddConstraint(hinge)
			Expect(s.Validate()).To(MatchError(ContainSubstring("breaking impulse threshold")))
		})

		It("rejects duplicate names", func() {
			s.AddConstraint(hinge)
			s.AddConstraint(hinge)
			Expect(s.Validate()).To(MatchError(ContainSubstring(`duplicate constraint name "Hinge"`)))
		})
	})

	It("rejects a radial field with a negative radius", func() {
		field := scene.DefaultForceField("Blast", scene.ForceFieldRadial)
		field.Radius = -1
		s.AddForceField(field)
		Expect(s.Validate()).To(MatchError(ContainSubstring("invalid radius")))
	})

	It("rejects a missing active camera", func() {
		s.ActiveCamera = "Drone"
		Expect(s.Validate()).To(MatchError(ContainSubstring(`active camera "Drone"`)))

		s.ActiveCamera = ""
		Expect(s.Validate()).To(Succeed())
	})

	It("collects every problem and names the first three", func() {
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			body := scene.DefaultRigidBody(name)
			body.Mass = -1
			s.AddRigidBody(body)
		}

		err := s.Validate()
		Expect(problemsOf(err)).To(HaveLen(5))
		Expect(err.Error()).To(HavePrefix("scene: invalid scene: "))
		Expect(err.Error()).To(HaveSuffix("(and 2 more)"))
	})
})

var _ = Describe("YAML", func() {
	It("keeps defaults for omitted fields", func() {
		s, err := scene.Parse([]byte(`
metadata:
  name: minimal
rigid_bodies:
  - name: Ball
    shape: {type: sphere, radius: 0.5}
    transform:
      position: [0, 2, 0]
settings:
  hybrid_mode: true
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Validate()).To(Succeed())

		ball, ok := s.FindRigidBody("Ball")
		Expect(ok).To(BeTrue())
		Expect(ball.Mass).To(Equal(1.0))
		Expect(ball.PhysicsMaterial).To(Equal(scene.DefaultMaterialName))
		Expect(ball.Transform.Rotation).To(Equal(scene.QuatIdent()))
		Expect(ball.Transform.Position).To(Equal(scene.Vec3{0, 2, 0}))
		Expect(ball.CollisionMask).To(Equal(-1))

		Expect(s.Settings.HybridMode).To(BeTrue())
		Expect(s.Settings.FixedTimeStep).To(Equal(1.0 / 240.0))
		Expect(s.Settings.Gravity).To(Equal(scene.Vec3{0, -9.81, 0}))
		Expect(s.PhysicsMaterials).To(HaveLen(5))
		Expect(s.ActiveCamera).To(Equal(scene.DefaultCameraName))
	})

	It("applies record defaults to constraints and force fields", func() {
		s, err := scene.Parse([]byte(`
rigid_bodies:
  - name: Door
constraints:
  - name: Hinge
    type: hinge
    body_a: Door
force_fields:
  - name: Wind
    type: uniform
    direction: [1, 0, 0]
`))
		Expect(err).NotTo(HaveOccurred())

		hinge, _ := s.FindConstraint("Hinge")
		Expect(hinge.Enabled).To(BeTrue())
		Expect(hinge.BreakingImpulseThreshold).To(Equal(scene.Unbounded))
		Expect(hinge.BodyB).To(BeEmpty())

		wind, _ := s.FindForceField("Wind")
		Expect(wind.AffectedGroups).To(Equal(-1))
		Expect(wind.Strength).To(Equal(1.0))
		Expect(s.Validate()).To(Succeed())
	})

	It("reports unknown enum values with their line", func() {
		_, err := scene.Parse([]byte("rigid_bodies:\n  - name: A\n    shape: {type: torus}\n"))
		Expect(err).To(MatchError(ContainSubstring(`line 3: unknown shape type "torus"`)))
	})

	It("round-trips through a file", func() {
		original := fallingBoxScene()
		hinge := scene.DefaultConstraint("Hinge", scene.ConstraintSlider)
		hinge.BodyA = "Box"
		original.AddConstraint(hinge)
		original.AddForceField(scene.DefaultForceField("Vortex", scene.ForceFieldVortex))

		path := filepath.Join(GinkgoT().TempDir(), "scene.yaml")
		Expect(original.Save(path)).To(Succeed())

		loaded, err := scene.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(original))
	})

	It("fails on a missing file", func() {
		_, err := scene.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})
})
