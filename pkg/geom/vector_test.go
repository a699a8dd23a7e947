package geom

import (
	"math"
	"testing"
)

func TestCrossIsOrthogonal(t *testing.T) {
	a := Vector{1, 2, 3}
	b := Vector{-4, 0.5, 2}
	c := a.Cross(b)

	if math.Abs(c.Dot(a)) > 1e-12 || math.Abs(c.Dot(b)) > 1e-12 {
		t.Errorf("cross product %v not orthogonal to inputs", c)
	}

	x := Vector{1, 0, 0}.Cross(Vector{0, 1, 0})
	if x != (Vector{0, 0, 1}) {
		t.Errorf("Expected x × y = z, got %v", x)
	}
}

func TestNormalize(t *testing.T) {
	n := Vector{3, 0, 4}.Normalize()
	if math.Abs(n.Norm()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", n.Norm())
	}
	if z := (Vector{}).Normalize(); z != (Vector{}) {
		t.Errorf("Expected zero vector to stay zero, got %v", z)
	}
}

func TestAnglePlaneDegrees(t *testing.T) {
	tests := []struct {
		name    string
		v       Vector
		normal  Vector
		degrees float64
	}{
		{"x axis vs XY plane", Vector{1, 0, 0}, Vector{0, 0, 1}, 0},
		{"x axis vs YZ plane", Vector{1, 0, 0}, Vector{1, 0, 0}, 90},
		{"negative z vs XY plane", Vector{0, 0, -1}, Vector{0, 0, 1}, 90},
		{"diagonal vs XY plane", Vector{1, 0, 1}, Vector{0, 0, 1}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.AnglePlaneDegrees(tt.normal.X, tt.normal.Y, tt.normal.Z)
			if math.Abs(got-tt.degrees) > 1e-9 {
				t.Errorf("Expected %f degrees, got %f", tt.degrees, got)
			}
		})
	}

	if !math.IsNaN((Vector{}).AnglePlaneDegrees(0, 0, 1)) {
		t.Errorf("Expected NaN for zero-length vector")
	}
}
