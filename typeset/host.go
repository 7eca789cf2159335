package typeset

// Object is a placed scene object as the host exposes it.
type Object interface {
	Name() string
	SetName(name string)

	Location() Vec3
	SetLocation(loc Vec3)

	// Dimensions is the bounding size of the object.
	Dimensions() Vec3

	// Glyph is the glyph index the object is tagged with, if any.
	Glyph() (int, bool)
	SetGlyph(index int)

	// Deselect takes the object out of the host selection.
	Deselect()
}

// Container receives newly created objects.
type Container interface {
	Link(obj Object)
}

// Host creates and wires objects.
type Host interface {
	// Duplicate copies obj. The copy is not linked to any container yet.
	Duplicate(obj Object) Object

	// NewPolyline creates a guide whose vertices are points, linked into target.
	NewPolyline(name string, points []Vec3, target Container) Object

	// ParentToVertex makes child follow vertex of guide. The child's location becomes
	// relative to that vertex.
	ParentToVertex(child, guide Object, vertex int)
}
