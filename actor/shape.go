package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypePlane
	ShapeTypeCapsule
	ShapeTypeCylinder
	ShapeTypeCone
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypePlane:
		return "plane"
	case ShapeTypeCapsule:
		return "capsule"
	case ShapeTypeCylinder:
		return "cylinder"
	case ShapeTypeCone:
		return "cone"
	}
	return "unknown"
}

// ShapeInterface is the interface that all collision shapes must implement.
// Directions and points are expressed in body space unless stated otherwise.
type ShapeInterface interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeInertia returns the body-space diagonal inertia for the given mass
	ComputeInertia(mass float64) mgl64.Vec3
	Support(direction mgl64.Vec3) mgl64.Vec3
	// GetContactFeature returns the vertices of the feature (point, edge or face)
	// most aligned with direction
	GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3
	// SignedDistance is negative inside the shape
	SignedDistance(point mgl64.Vec3) float64
}

// supportAABB builds the world AABB of a convex shape from its support function
func supportAABB(shape ShapeInterface, transform Transform) AABB {
	var box AABB
	for i := 0; i < 3; i++ {
		var axis mgl64.Vec3
		axis[i] = 1

		hi := transform.ToWorld(shape.Support(transform.InverseRotation.Rotate(axis)))
		lo := transform.ToWorld(shape.Support(transform.InverseRotation.Rotate(axis.Mul(-1))))
		box.Max[i] = hi[i]
		box.Min[i] = lo[i]
	}
	return box
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) ComputeAABB(transform Transform) {
	b.aabb = supportAABB(b, transform)
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

func (b *Box) ComputeInertia(mass float64) mgl64.Vec3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0
	return mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// GetContactFeature returns the face whose normal is the closest to direction,
// vertices ordered counter-clockwise seen from outside
func (b *Box) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(direction[i]) > math.Abs(direction[axis]) {
			axis = i
		}
	}

	sign := 1.0
	if direction[axis] < 0 {
		sign = -1.0
	}

	u := (axis + 1) % 3
	v := (axis + 2) % 3
	h := b.HalfExtents

	corner := func(su, sv float64) mgl64.Vec3 {
		var p mgl64.Vec3
		p[axis] = sign * h[axis]
		p[u] = su * h[u]
		p[v] = sv * h[v]
		return p
	}

	face := []mgl64.Vec3{corner(-1, -1), corner(1, -1), corner(1, 1), corner(-1, 1)}
	if sign < 0 {
		face[1], face[3] = face[3], face[1]
	}
	return face
}

func (b *Box) SignedDistance(p mgl64.Vec3) float64 {
	q := mgl64.Vec3{
		math.Abs(p.X()) - b.HalfExtents.X(),
		math.Abs(p.Y()) - b.HalfExtents.Y(),
		math.Abs(p.Z()) - b.HalfExtents.Z(),
	}
	outside := mgl64.Vec3{math.Max(q.X(), 0), math.Max(q.Y(), 0), math.Max(q.Z(), 0)}
	inside := math.Min(math.Max(q.X(), math.Max(q.Y(), q.Z())), 0)

	return outside.Len() + inside
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Vec3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

func (s *Sphere) SignedDistance(p mgl64.Vec3) float64 {
	return p.Len() - s.Radius
}

// Capsule is a Y-aligned segment of length Height swept by Radius
type Capsule struct {
	Radius float64
	Height float64
	aabb   AABB
}

func (c *Capsule) Type() ShapeType { return ShapeTypeCapsule }

func (c *Capsule) ComputeAABB(transform Transform) {
	c.aabb = supportAABB(c, transform)
}

func (c *Capsule) GetAABB() AABB {
	return c.aabb
}

// ComputeInertia uses the bounding cylinder of the capsule
func (c *Capsule) ComputeInertia(mass float64) mgl64.Vec3 {
	h := c.Height + 2*c.Radius
	side := mass * (3*c.Radius*c.Radius + h*h) / 12.0
	return mgl64.Vec3{side, 0.5 * mass * c.Radius * c.Radius, side}
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	tip := mgl64.Vec3{0, c.Height / 2, 0}
	if direction.Y() < 0 {
		tip = tip.Mul(-1)
	}
	if direction.LenSqr() < 1e-16 {
		return tip
	}
	return tip.Add(direction.Normalize().Mul(c.Radius))
}

func (c *Capsule) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := direction.Normalize()
	if math.Abs(dir.Y()) < 0.1 {
		// Lying capsule: the whole segment faces the direction
		side := mgl64.Vec3{dir.X(), 0, dir.Z()}.Normalize().Mul(c.Radius)
		return []mgl64.Vec3{
			mgl64.Vec3{0, c.Height / 2, 0}.Add(side),
			mgl64.Vec3{0, -c.Height / 2, 0}.Add(side),
		}
	}
	return []mgl64.Vec3{c.Support(dir)}
}

func (c *Capsule) SignedDistance(p mgl64.Vec3) float64 {
	y := p.Y() - mgl64.Clamp(p.Y(), -c.Height/2, c.Height/2)
	return mgl64.Vec3{p.X(), y, p.Z()}.Len() - c.Radius
}

// Cylinder is a Y-aligned capped cylinder of full height Height
type Cylinder struct {
	Radius float64
	Height float64
	aabb   AABB
}

func (c *Cylinder) Type() ShapeType { return ShapeTypeCylinder }

func (c *Cylinder) ComputeAABB(transform Transform) {
	c.aabb = supportAABB(c, transform)
}

func (c *Cylinder) GetAABB() AABB {
	return c.aabb
}

func (c *Cylinder) ComputeInertia(mass float64) mgl64.Vec3 {
	side := mass * (3*c.Radius*c.Radius + c.Height*c.Height) / 12.0
	return mgl64.Vec3{side, 0.5 * mass * c.Radius * c.Radius, side}
}

func (c *Cylinder) Support(direction mgl64.Vec3) mgl64.Vec3 {
	y := c.Height / 2
	if direction.Y() < 0 {
		y = -y
	}
	return rimPoint(direction, c.Radius).Add(mgl64.Vec3{0, y, 0})
}

func (c *Cylinder) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := direction.Normalize()
	switch {
	case math.Abs(dir.Y()) > 0.99:
		return capPoints(c.Radius, math.Copysign(c.Height/2, dir.Y()))
	case math.Abs(dir.Y()) < 0.01:
		rim := rimPoint(dir, c.Radius)
		return []mgl64.Vec3{
			rim.Add(mgl64.Vec3{0, c.Height / 2, 0}),
			rim.Add(mgl64.Vec3{0, -c.Height / 2, 0}),
		}
	}
	return []mgl64.Vec3{c.Support(dir)}
}

func (c *Cylinder) SignedDistance(p mgl64.Vec3) float64 {
	dx := math.Hypot(p.X(), p.Z()) - c.Radius
	dy := math.Abs(p.Y()) - c.Height/2

	return math.Min(math.Max(dx, dy), 0) + math.Hypot(math.Max(dx, 0), math.Max(dy, 0))
}

// Cone is Y-aligned, apex at +Height/2 and base disc at -Height/2
type Cone struct {
	Radius float64
	Height float64
	aabb   AABB
}

func (c *Cone) Type() ShapeType { return ShapeTypeCone }

func (c *Cone) ComputeAABB(transform Transform) {
	c.aabb = supportAABB(c, transform)
}

func (c *Cone) GetAABB() AABB {
	return c.aabb
}

func (c *Cone) ComputeInertia(mass float64) mgl64.Vec3 {
	side := mass * (3.0/20.0*c.Radius*c.Radius + 3.0/80.0*c.Height*c.Height)
	return mgl64.Vec3{side, 0.3 * mass * c.Radius * c.Radius, side}
}

func (c *Cone) Support(direction mgl64.Vec3) mgl64.Vec3 {
	apex := mgl64.Vec3{0, c.Height / 2, 0}
	base := rimPoint(direction, c.Radius).Add(mgl64.Vec3{0, -c.Height / 2, 0})
	if apex.Dot(direction) >= base.Dot(direction) {
		return apex
	}
	return base
}

func (c *Cone) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := direction.Normalize()
	if dir.Y() < -0.99 {
		return capPoints(c.Radius, -c.Height/2)
	}
	return []mgl64.Vec3{c.Support(dir)}
}

// SignedDistance is the exact distance to a capped cone, computed in the
// (radial, height) half-plane with the apex as origin
func (c *Cone) SignedDistance(p mgl64.Vec3) float64 {
	qx, qy := c.Radius, -c.Height
	wx, wy := math.Hypot(p.X(), p.Z()), p.Y()-c.Height/2

	t := mgl64.Clamp((wx*qx+wy*qy)/(qx*qx+qy*qy), 0, 1)
	ax, ay := wx-qx*t, wy-qy*t

	bx, by := wx-qx*mgl64.Clamp(wx/qx, 0, 1), wy-qy

	d := math.Min(ax*ax+ay*ay, bx*bx+by*by)
	s := math.Max(-(wx*qy - wy*qx), -(wy - qy))

	return math.Copysign(math.Sqrt(d), s)
}

// Plane represents an infinite plane collision shape, in body space:
// Normal · p = Distance
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
	aabb     AABB
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

func (p *Plane) ComputeAABB(transform Transform) {
	const infinity = 1e10
	const thickness = 1.0

	normal := transform.Rotation.Rotate(p.Normal)
	point := transform.ToWorld(p.Normal.Mul(p.Distance))

	min := mgl64.Vec3{-infinity, -infinity, -infinity}
	max := mgl64.Vec3{infinity, infinity, infinity}

	// Only axis-aligned planes get a finite slab, anything else stays unbounded
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) > 1-1e-9 {
			if normal[i] > 0 {
				min[i], max[i] = point[i]-thickness, point[i]
			} else {
				min[i], max[i] = point[i], point[i]+thickness
			}
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Vec3 {
	return mgl64.Vec3{}
}

// Support treats the plane as a large slab, planes go through the analytic path
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	const size = 1000.0
	const thickness = 0.5

	t1, t2 := TangentBasis(p.Normal)
	point := p.Normal.Mul(p.Distance)
	point = point.Add(t1.Mul(math.Copysign(size, direction.Dot(t1))))
	point = point.Add(t2.Mul(math.Copysign(size, direction.Dot(t2))))
	if direction.Dot(p.Normal) < 0 {
		point = point.Sub(p.Normal.Mul(thickness))
	}
	return point
}

func (p *Plane) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	const size = 1000.0
	t1, t2 := TangentBasis(p.Normal)
	center := p.Normal.Mul(p.Distance)

	return []mgl64.Vec3{
		center.Add(t1.Mul(-size)).Add(t2.Mul(-size)),
		center.Add(t1.Mul(size)).Add(t2.Mul(-size)),
		center.Add(t1.Mul(size)).Add(t2.Mul(size)),
		center.Add(t1.Mul(-size)).Add(t2.Mul(size)),
	}
}

func (p *Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) - p.Distance
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// rimPoint is the point of a Y-axis disc of radius r furthest along direction
func rimPoint(direction mgl64.Vec3, r float64) mgl64.Vec3 {
	radial := math.Hypot(direction.X(), direction.Z())
	if radial < 1e-12 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{direction.X() / radial * r, 0, direction.Z() / radial * r}
}

func capPoints(r, y float64) []mgl64.Vec3 {
	return []mgl64.Vec3{{r, y, 0}, {0, y, r}, {-r, y, 0}, {0, y, -r}}
}
