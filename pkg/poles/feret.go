package poles

import (
	"math"

	"ellipsoids3d/internal/models"
)

var faceNeighbours = [6]models.Voxel{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// Surface returns the voxels of obj with at least one face neighbour
// outside the object
func Surface(obj *models.Object) []models.Voxel {
	var surface []models.Voxel
	for _, v := range obj.Voxels {
		for _, n := range faceNeighbours {
			if !obj.Contains(models.Voxel{X: v.X + n.X, Y: v.Y + n.Y, Z: v.Z + n.Z}) {
				surface = append(surface, v)
				break
			}
		}
	}
	return surface
}

// Feret returns the two surface voxels farthest apart and their calibrated
// distance. The search is quadratic in the number of surface voxels. The
// diameter is NaN for an empty object.
func Feret(obj *models.Object) (a, b models.Voxel, diameter float64) {
	surface := Surface(obj)
	if len(surface) == 0 {
		return a, b, math.NaN()
	}
	cal := obj.Calibration

	points := make([][3]float64, len(surface))
	for i, v := range surface {
		p := Calibrated(v, cal)
		points[i] = [3]float64{p.X, p.Y, p.Z}
	}

	a, b = surface[0], surface[0]
	best := 0.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			dx := points[i][0] - points[j][0]
			dy := points[i][1] - points[j][1]
			dz := points[i][2] - points[j][2]
			if d := dx*dx + dy*dy + dz*dz; d > best {
				best = d
				a, b = surface[i], surface[j]
			}
		}
	}
	return a, b, math.Sqrt(best)
}
