/*
Package typeset lays keycaps out in a row.

A template keycap is already in the scene. Place copies it once per glyph index,
stepping along an axis by the keycap's own size plus a gap, and tags each copy with
its glyph index. Gap markers in the index list advance the row without placing
anything. Optionally every keycap is hung on a guide polyline so that moving the
guide's vertices moves the keycaps.
*/
package typeset

import (
	"fmt"
	"regexp"

	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/token"
	"github.com/krisalay/kiro/types"
)

// GuideName is the name given to guide polylines.
const GuideName = "KeycapWire"

// Options tune Place. The zero value places along +x with no gaps and no guide.
type Options struct {
	// Gap is added between neighbouring keycaps.
	Gap float64

	// SpaceGap is added on top of Gap when the row crosses a gap marker.
	SpaceGap float64

	// Axis is one of "+x", "+y", "+z", "-x", "-y", "-z". Empty means "+x".
	Axis string

	// Guide hangs every keycap on a polyline through the computed positions.
	Guide bool

	// Labels, one per index, name the copies "<base> (<label>)". Ignored unless
	// the length matches the indices. An empty label names the copy by index.
	Labels []string

	Log *logger.Logger
}

// Result is what Place produced.
type Result struct {
	// Objects are the keycaps, template first.
	Objects []Object

	// Guide is the polyline, or nil.
	Guide Object

	// Offsets are the keycap positions relative to the template, one per object.
	Offsets []Vec3

	Outcome types.Outcome
}

/*
Place lays out one keycap per non-gap entry of indices, starting with template.

BEHAVIOR:
---------
1. No indices: template is returned untouched.
2. Leading gap markers are dropped; the template always holds the first glyph.
3. Each following entry advances the running offset by the template size plus Gap
   along the axis; a gap marker advances it by that plus SpaceGap and places nothing.
4. The template is tagged with the first glyph. Every other glyph gets a duplicate at
   template location + offset, linked into target, deselected, tagged and, when
   labels fit, renamed.
5. With Guide, a polyline through the offsets is anchored at the template location and
   every keycap is parented to its vertex with a zero local location.

An unrecognized axis falls back to +x and marks the outcome degraded.
*/
func Place(host Host, template Object, indices []int, target Container, opts Options) Result {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}

	outcome := types.OK()
	axis := PosX
	if opts.Axis != "" {
		var err error
		if axis, err = ParseAxis(opts.Axis); err != nil {
			log.Warn("%v, assuming %s", err, PosX)
			outcome = types.Degrade("%v, assumed %s", err, PosX)
		}
	}

	first := 0
	for first < len(indices) && indices[first] == token.Gap {
		first++
	}
	if first == len(indices) {
		return Result{Objects: []Object{template}, Offsets: []Vec3{{}}, Outcome: outcome}
	}

	dir := axis.Direction()
	step := template.Dimensions().Add(Splat(opts.Gap)).Mul(dir)
	spaceStep := step.Add(Splat(opts.SpaceGap).Mul(dir))

	// offsets and glyphs line up with the objects to be placed
	current := Vec3{}
	offsets := []Vec3{current}
	glyphs := []int{indices[first]}
	positions := []int{first}
	for i := first + 1; i < len(indices); i++ {
		if indices[i] == token.Gap {
			current = current.Add(spaceStep)
			continue
		}
		current = current.Add(step)
		offsets = append(offsets, current)
		glyphs = append(glyphs, indices[i])
		positions = append(positions, i)
	}

	template.SetGlyph(glyphs[0])

	labelled := len(opts.Labels) == len(indices)
	base := BaseName(template.Name())
	origin := template.Location()

	objects := make([]Object, 0, len(glyphs))
	objects = append(objects, template)
	for j := 1; j < len(glyphs); j++ {
		dup := host.Duplicate(template)
		dup.SetLocation(origin.Add(offsets[j]))
		target.Link(dup)

		// the host operators accept exactly one selected object
		dup.Deselect()
		dup.SetGlyph(glyphs[j])

		if labelled {
			label := opts.Labels[positions[j]]
			if label == "" {
				label = fmt.Sprintf("idx:%d", glyphs[j])
			}
			dup.SetName(fmt.Sprintf("%s (%s)", base, label))
		}
		objects = append(objects, dup)
	}
	log.Debug("placed %d keycaps along %s", len(objects), axis)

	res := Result{Objects: objects, Offsets: offsets, Outcome: outcome}
	if opts.Guide {
		guide := host.NewPolyline(GuideName, offsets, target)
		guide.SetLocation(origin)
		for i, obj := range objects {
			host.ParentToVertex(obj, guide, i)
			obj.SetLocation(Vec3{})
		}
		res.Guide = guide
	}
	return res
}

var (
	labelSuffix   = regexp.MustCompile(` \([^()]*\)$`)
	counterSuffix = regexp.MustCompile(`\.\d{3,}$`)
)

// BaseName strips what earlier runs and the host add to a name: a trailing
// " (label)" and ".001"-style counters on either side of it.
func BaseName(name string) string {
	name = counterSuffix.ReplaceAllString(name, "")
	name = labelSuffix.ReplaceAllString(name, "")
	return counterSuffix.ReplaceAllString(name, "")
}
