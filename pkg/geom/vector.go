// Package geom provides the small 3D vector type shared by the measurement
// packages.
package geom

import (
	"math"
)

// Vector is a 3D point or direction
type Vector struct {
	X, Y, Z float64
}

// NaNVector is returned where a position is undefined
var NaNVector = Vector{math.NaN(), math.NaN(), math.NaN()}

// Add returns v + o
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale multiplies every component by k
func (v Vector) Scale(k float64) Vector { return Vector{v.X * k, v.Y * k, v.Z * k} }

// AddScaled returns v + k*o
func (v Vector) AddScaled(o Vector, k float64) Vector {
	return Vector{v.X + k*o.X, v.Y + k*o.Y, v.Z + k*o.Z}
}

// Dot returns the dot product
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean length
func (v Vector) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector in the same direction, or the zero vector
func (v Vector) Normalize() Vector {
	n := v.Norm()
	if n == 0 {
		return Vector{}
	}
	return v.Scale(1 / n)
}

// IsNaN reports whether any component is NaN
func (v Vector) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// AnglePlaneDegrees returns the angle in degrees between v and the plane
// with normal (a, b, c). The result lies in [0, 90]; it is NaN when v or
// the normal has zero length.
func (v Vector) AnglePlaneDegrees(a, b, c float64) float64 {
	n := Vector{a, b, c}
	den := v.Norm() * n.Norm()
	if den == 0 {
		return math.NaN()
	}
	s := math.Abs(v.Dot(n)) / den
	if s > 1 {
		s = 1
	}
	return math.Asin(s) * 180 / math.Pi
}
