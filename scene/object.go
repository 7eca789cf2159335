package scene

import (
	"sync"

	"github.com/google/uuid"

	"github.com/krisalay/kiro/typeset"
)

// Object is a scene object: a keycap, or a guide polyline when it has points.
type Object struct {
	ID uuid.UUID

	mu         sync.Mutex
	name       string
	location   typeset.Vec3
	dimensions typeset.Vec3
	glyph      int
	hasGlyph   bool
	selected   bool
	parent     *Object
	vertex     int
	points     []typeset.Vec3
	scene      *Scene
}

func (o *Object) Name() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.name
}

// SetName renames the object, adding a counter if the name is taken.
func (o *Object) SetName(name string) {
	o.mu.Lock()
	old := o.name
	o.mu.Unlock()
	if old == name {
		return
	}

	claimed := o.scene.rename(old, name)
	o.mu.Lock()
	o.name = claimed
	o.mu.Unlock()
}

// Location is relative to the parent vertex when parented, else absolute.
func (o *Object) Location() typeset.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.location
}

func (o *Object) SetLocation(loc typeset.Vec3) {
	o.mu.Lock()
	o.location = loc
	o.mu.Unlock()
}

func (o *Object) Dimensions() typeset.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dimensions
}

func (o *Object) Glyph() (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.glyph, o.hasGlyph
}

func (o *Object) SetGlyph(index int) {
	o.mu.Lock()
	o.glyph, o.hasGlyph = index, true
	o.mu.Unlock()
}

func (o *Object) Deselect() {
	o.mu.Lock()
	o.selected = false
	o.mu.Unlock()
}

func (o *Object) Select() {
	o.mu.Lock()
	o.selected = true
	o.mu.Unlock()
}

func (o *Object) Selected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// Parent returns the guide the object hangs on and the vertex index.
func (o *Object) Parent() (*Object, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.parent, o.vertex
}

// Points returns the polyline vertices, relative to the object's location.
func (o *Object) Points() []typeset.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]typeset.Vec3(nil), o.points...)
}

// WorldLocation resolves vertex parenting to an absolute position.
func (o *Object) WorldLocation() typeset.Vec3 {
	o.mu.Lock()
	loc, parent, vertex := o.location, o.parent, o.vertex
	o.mu.Unlock()

	if parent == nil {
		return loc
	}
	anchor := parent.WorldLocation()
	if pts := parent.Points(); vertex >= 0 && vertex < len(pts) {
		anchor = anchor.Add(pts[vertex])
	}
	return anchor.Add(loc)
}

// View is a serializable snapshot of an object.
type View struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Glyph    *int           `json:"glyph,omitempty"`
	Location typeset.Vec3   `json:"location"`
	World    typeset.Vec3   `json:"world"`
	Parent   string         `json:"parent,omitempty"`
	Vertex   *int           `json:"vertex,omitempty"`
	Points   []typeset.Vec3 `json:"points,omitempty"`
}

// View snapshots the object.
func (o *Object) View() View {
	v := View{
		ID:       o.ID.String(),
		Name:     o.Name(),
		Location: o.Location(),
		World:    o.WorldLocation(),
		Points:   o.Points(),
	}
	if g, ok := o.Glyph(); ok {
		v.Glyph = &g
	}
	if p, vertex := o.Parent(); p != nil {
		v.Parent = p.Name()
		v.Vertex = &vertex
	}
	return v
}
