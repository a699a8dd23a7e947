package poles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/internal/synth"
	"ellipsoids3d/pkg/geom"
)

func sphereObject(t *testing.T) *models.Object {
	t.Helper()
	vol := models.NewVolume(40, 40, 40, models.DefaultCalibration())
	synth.Sphere(vol, 1, geom.Vector{X: 20, Y: 20, Z: 20}, 10)
	objs := vol.Objects()
	require.Len(t, objs, 1)
	return objs[0]
}

func TestMarchSphereSymmetric(t *testing.T) {
	obj := sphereObject(t)
	cal := obj.Calibration
	start := models.Voxel{X: 20, Y: 20, Z: 20}

	for _, dir := range []geom.Vector{{X: 1}, {Y: 1}, {Z: 1}, {X: 1, Y: 1, Z: 1}} {
		fwd := March(obj, start, dir, cal)
		back := March(obj, start, dir.Scale(-1), cal)
		require.True(t, fwd.Found)
		require.True(t, back.Found)
		assert.InDelta(t, fwd.Distance, back.Distance, 1e-9, "direction %v", dir)
		assert.True(t, obj.Contains(fwd.Voxel))
	}

	diag := March(obj, start, geom.Vector{X: 1, Y: 1, Z: 1}, cal)
	assert.Equal(t, models.Voxel{X: 25, Y: 25, Z: 25}, diag.Voxel)
	assert.InDelta(t, 5*math.Sqrt(3), diag.Distance, 1e-9)

	fwd := March(obj, start, geom.Vector{X: 1}, cal)
	assert.Equal(t, models.Voxel{X: 30, Y: 20, Z: 20}, fwd.Voxel)
	assert.InDelta(t, 10.0, fwd.Distance, 1e-9)
}

func TestMarchOutsideStart(t *testing.T) {
	obj := sphereObject(t)
	b := March(obj, models.Voxel{X: 1, Y: 1, Z: 1}, geom.Vector{X: 1}, obj.Calibration)
	assert.False(t, b.Found)
	assert.Equal(t, 0.0, b.Distance)

	b = March(obj, models.Voxel{X: 20, Y: 20, Z: 20}, geom.Vector{}, obj.Calibration)
	assert.True(t, math.IsNaN(b.Distance))
}

func TestMarchCalibrated(t *testing.T) {
	cal := models.Calibration{XY: 0.5, Z: 2, Unit: "um"}
	var voxels []models.Voxel
	for z := 0; z < 5; z++ {
		voxels = append(voxels, models.Voxel{X: 3, Y: 3, Z: z})
	}
	obj := models.NewObject(1, voxels, cal)

	b := March(obj, models.Voxel{X: 3, Y: 3, Z: 0}, geom.Vector{Z: 1}, cal)
	assert.Equal(t, models.Voxel{X: 3, Y: 3, Z: 4}, b.Voxel)
	assert.InDelta(t, 8.0, b.Distance, 1e-9)
}

func TestExtremalSphere(t *testing.T) {
	obj := sphereObject(t)
	center := geom.Vector{X: 20, Y: 20, Z: 20}

	lo, hi, ok := Extremal(obj.Voxels, center, geom.Vector{X: 1}, obj.Calibration)
	require.True(t, ok)
	assert.Equal(t, models.Voxel{X: 10, Y: 20, Z: 20}, lo)
	assert.Equal(t, models.Voxel{X: 30, Y: 20, Z: 20}, hi)

	lo, hi, ok = Extremal(obj.Voxels, center, geom.Vector{X: 1, Y: 1, Z: 1}, obj.Calibration)
	require.True(t, ok)
	dLo := Calibrated(lo, obj.Calibration).Sub(center).Norm()
	dHi := Calibrated(hi, obj.Calibration).Sub(center).Norm()
	assert.InDelta(t, dLo, dHi, 1e-9)
}

func TestExtremalAgreesWithMarchOnEllipsoid(t *testing.T) {
	vol := models.NewVolume(64, 64, 32, models.DefaultCalibration())
	axes := synth.RotateZ(math.Pi / 7)
	center := geom.Vector{X: 32, Y: 32, Z: 16}
	synth.Ellipsoid(vol, 2, center, [3]float64{20, 9, 6}, axes)
	obj := vol.Objects()[0]

	lo, hi, ok := Extremal(obj.Voxels, center, axes[0], obj.Calibration)
	require.True(t, ok)

	start := models.Voxel{X: 32, Y: 32, Z: 16}
	fwd := March(obj, start, axes[0], obj.Calibration)
	back := March(obj, start, axes[0].Scale(-1), obj.Calibration)

	hiDist := Calibrated(hi, obj.Calibration).Sub(center).Norm()
	loDist := Calibrated(lo, obj.Calibration).Sub(center).Norm()
	assert.InDelta(t, hiDist, fwd.Distance, 1.5)
	assert.InDelta(t, loDist, back.Distance, 1.5)
	assert.InDelta(t, hiDist, loDist, 1e-9)
}

func TestExtremalEmpty(t *testing.T) {
	_, _, ok := Extremal(nil, geom.Vector{}, geom.Vector{X: 1}, models.DefaultCalibration())
	assert.False(t, ok)
	_, _, ok = Extremal([]models.Voxel{{}}, geom.Vector{}, geom.Vector{}, models.DefaultCalibration())
	assert.False(t, ok)
}

func TestFeretBox(t *testing.T) {
	vol := models.NewVolume(20, 20, 20, models.DefaultCalibration())
	synth.Box(vol, 5, models.Voxel{X: 2, Y: 3, Z: 4}, models.Voxel{X: 11, Y: 7, Z: 6})
	obj := vol.Objects()[0]

	a, b, d := Feret(obj)
	assert.InDelta(t, math.Sqrt(81+16+4), d, 1e-9)
	assert.InDelta(t, d, Calibrated(a, obj.Calibration).Sub(Calibrated(b, obj.Calibration)).Norm(), 1e-9)

	surface := Surface(obj)
	// 10x5x3 box minus its 8x3x1 interior
	assert.Len(t, surface, 150-24)
}

func TestFeretEmpty(t *testing.T) {
	_, _, d := Feret(models.NewObject(1, nil, models.DefaultCalibration()))
	assert.True(t, math.IsNaN(d))
}
