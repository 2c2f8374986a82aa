package geometry

import "math"

// Vector2 is an immutable 2D point/vector. All operations return a new value;
// none of them mutate the receiver.
type Vector2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec constructs a Vector2 from its components.
func Vec(x, y float64) Vector2 { return Vector2{X: x, Y: y} }

// Add returns the componentwise sum of v and o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the componentwise difference v-o, i.e. v relative to o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by the scalar f.
func (v Vector2) Scale(f float64) Vector2 {
	return Vector2{X: v.X * f, Y: v.Y * f}
}

// Direction reduces each component to its sign: -1, 0 or +1.
// A zero component stays zero, so the direction of the zero vector is the
// zero vector rather than a division-by-zero.
func (v Vector2) Direction() Vector2 {
	return Vector2{X: sign(v.X), Y: sign(v.Y)}
}

// SquaredDistanceTo returns the squared Euclidean distance between v and o.
// Monotonic with the true distance, which is all comparisons need.
func (v Vector2) SquaredDistanceTo(o Vector2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector2) DistanceTo(o Vector2) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Length returns the magnitude of v.
func (v Vector2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector pointing in the direction of v,
// or the zero vector when v has no length.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / l, Y: v.Y / l}
}

// IsZero reports whether both components are exactly zero.
func (v Vector2) IsZero() bool { return v.X == 0 && v.Y == 0 }

func sign(c float64) float64 {
	switch {
	case c > 0:
		return 1
	case c < 0:
		return -1
	default:
		return 0
	}
}
