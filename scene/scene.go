/*
Package scene is an in-memory host for typesetting.

It implements the handful of primitives the typeset package needs (duplicate,
link, polyline, vertex parenting) on plain structs, so keycap rows can be computed,
inspected and serialized without a 3D application.
*/
package scene

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/krisalay/kiro/typeset"
)

var counter = regexp.MustCompile(`\.\d{3,}$`)

// Scene owns every object and collection created through it. Safe for concurrent use.
type Scene struct {
	mu       sync.Mutex
	objects  []*Object
	names    map[string]bool
	counters map[string]int
	root     *Collection
}

// New returns an empty scene with a root collection named "Scene Collection".
func New() *Scene {
	s := &Scene{
		names:    make(map[string]bool),
		counters: make(map[string]int),
	}
	s.root = &Collection{Name: "Scene Collection", scene: s}
	return s
}

// Root is the scene's top-level collection.
func (s *Scene) Root() *Collection {
	return s.root
}

// NewCollection creates a child collection of the root.
func (s *Scene) NewCollection(name string) *Collection {
	c := &Collection{Name: name, scene: s}
	s.mu.Lock()
	s.root.children = append(s.root.children, c)
	s.mu.Unlock()
	return c
}

// NewObject creates an object with the given size at the origin, linked into c.
// The name gets a ".001"-style counter if it is already taken.
func (s *Scene) NewObject(name string, dimensions typeset.Vec3, c *Collection) *Object {
	o := &Object{
		ID:         uuid.New(),
		dimensions: dimensions,
		selected:   true,
		scene:      s,
	}
	o.name = s.claim(name)
	s.register(o)
	if c != nil {
		c.Link(o)
	}
	return o
}

// Objects lists every object in creation order.
func (s *Scene) Objects() []*Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Object(nil), s.objects...)
}

// Selected lists the selected objects.
func (s *Scene) Selected() []*Object {
	var out []*Object
	for _, o := range s.Objects() {
		if o.Selected() {
			out = append(out, o)
		}
	}
	return out
}

// Lookup finds an object by name.
func (s *Scene) Lookup(name string) (*Object, bool) {
	for _, o := range s.Objects() {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// Duplicate copies everything but identity, selection and parenting.
func (s *Scene) Duplicate(obj typeset.Object) typeset.Object {
	src := s.own(obj)
	src.mu.Lock()
	dup := &Object{
		ID:         uuid.New(),
		location:   src.location,
		dimensions: src.dimensions,
		glyph:      src.glyph,
		hasGlyph:   src.hasGlyph,
		points:     append([]typeset.Vec3(nil), src.points...),
		scene:      s,
	}
	name := src.name
	src.mu.Unlock()

	dup.name = s.claim(name)
	s.register(dup)
	return dup
}

// NewPolyline creates an edge chain through points, linked into target.
func (s *Scene) NewPolyline(name string, points []typeset.Vec3, target typeset.Container) typeset.Object {
	o := &Object{
		ID:     uuid.New(),
		points: append([]typeset.Vec3(nil), points...),
		scene:  s,
	}
	o.dimensions = bounds(points)
	o.name = s.claim(name)
	s.register(o)
	target.Link(o)
	return o
}

// ParentToVertex hangs child on vertex of guide.
func (s *Scene) ParentToVertex(child, guide typeset.Object, vertex int) {
	c, g := s.own(child), s.own(guide)
	c.mu.Lock()
	c.parent, c.vertex = g, vertex
	c.mu.Unlock()
}

func (s *Scene) own(obj typeset.Object) *Object {
	o, ok := obj.(*Object)
	if !ok || o.scene != s {
		panic(fmt.Sprintf("scene: object %q belongs to another host", obj.Name()))
	}
	return o
}

func (s *Scene) register(o *Object) {
	s.mu.Lock()
	s.objects = append(s.objects, o)
	s.mu.Unlock()
}

// claim reserves a unique name the way a 3D host does: "Key", "Key.001", "Key.002".
func (s *Scene) claim(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := counter.ReplaceAllString(name, "")
	candidate := name
	for s.names[candidate] {
		s.counters[base]++
		candidate = fmt.Sprintf("%s.%03d", base, s.counters[base])
	}
	s.names[candidate] = true
	return candidate
}

func (s *Scene) rename(from, to string) string {
	s.mu.Lock()
	delete(s.names, from)
	s.mu.Unlock()
	return s.claim(to)
}

func bounds(points []typeset.Vec3) typeset.Vec3 {
	if len(points) == 0 {
		return typeset.Vec3{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = typeset.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = typeset.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return typeset.Vec3{X: hi.X - lo.X, Y: hi.Y - lo.Y, Z: hi.Z - lo.Z}
}

// Collection groups objects.
type Collection struct {
	Name string

	mu       sync.Mutex
	objects  []*Object
	children []*Collection
	scene    *Scene
}

// Link adds obj to the collection. Linking twice is a no-op.
func (c *Collection) Link(obj typeset.Object) {
	o := c.scene.own(obj)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.objects {
		if existing == o {
			return
		}
	}
	c.objects = append(c.objects, o)
}

// Objects lists the linked objects in link order.
func (c *Collection) Objects() []*Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Object(nil), c.objects...)
}

// Children lists child collections.
func (c *Collection) Children() []*Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Collection(nil), c.children...)
}
