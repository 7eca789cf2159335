package typeset

import (
	"fmt"
	"strings"
)

// Vec3 is a point or size in scene units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Splat returns (f, f, f).
func Splat(f float64) Vec3 {
	return Vec3{f, f, f}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Axis is one of the six directions a row of keycaps can grow in.
type Axis int

const (
	PosX Axis = iota
	PosY
	PosZ
	NegX
	NegY
	NegZ
)

var axisNames = [...]string{"+x", "+y", "+z", "-x", "-y", "-z"}

func (a Axis) String() string {
	if a < PosX || a > NegZ {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis accepts "+x", "-Y" and the like. The sign is required.
func ParseAxis(s string) (Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range axisNames {
		if s == name {
			return Axis(i), nil
		}
	}
	return PosX, fmt.Errorf("invalid axis %q", s)
}

// Direction is the unit vector of the axis.
func (a Axis) Direction() Vec3 {
	switch a {
	case PosY:
		return Vec3{0, 1, 0}
	case PosZ:
		return Vec3{0, 0, 1}
	case NegX:
		return Vec3{-1, 0, 0}
	case NegY:
		return Vec3{0, -1, 0}
	case NegZ:
		return Vec3{0, 0, -1}
	default:
		return Vec3{1, 0, 0}
	}
}
