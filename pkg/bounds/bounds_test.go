package bounds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/internal/synth"
	"ellipsoids3d/pkg/geom"
	"ellipsoids3d/pkg/moments"
)

func TestAxisAligned(t *testing.T) {
	_, ok := AxisAligned(nil)
	assert.False(t, ok, "empty object has no bounding box")

	box, ok := AxisAligned([]models.Voxel{{X: 3, Y: 1, Z: 7}, {X: -1, Y: 4, Z: 2}, {X: 0, Y: 0, Z: 5}})
	require.True(t, ok)
	assert.Equal(t, models.Voxel{X: -1, Y: 0, Z: 2}, box.Min)
	assert.Equal(t, models.Voxel{X: 3, Y: 4, Z: 7}, box.Max)
	assert.Equal(t, 5*5*6, box.VolumePixels())
	assert.Equal(t, [6]int{-1, 3, 0, 4, 2, 7}, box.Array())
}

func TestOrientedMatchesAxisAlignedForBox(t *testing.T) {
	vol := models.NewVolume(20, 20, 20, models.DefaultCalibration())
	synth.Box(vol, 1, models.Voxel{X: 2, Y: 3, Z: 4}, models.Voxel{X: 11, Y: 7, Z: 6})
	obj := vol.Objects()[0]

	f, err := moments.NewAnalyzer(0).Analyze(obj)
	require.NoError(t, err)

	aabb, ok := AxisAligned(obj.Voxels)
	require.True(t, ok)
	obb, ok := NewOriented(obj.Voxels, f.Center, f.Axes, obj.Calibration)
	require.True(t, ok)

	assert.Equal(t, 150, aabb.VolumePixels())
	assert.InDelta(t, 150.0, obb.VolumePixels(), 1e-6)
	for _, v := range obj.Voxels {
		assert.True(t, obb.Contains(v))
	}

	shell := obb.Shell(vol.Grid)
	assert.Len(t, shell, 126)
	for _, v := range shell {
		assert.Equal(t, uint32(1), vol.At(v.X, v.Y, v.Z), "shell voxel %v outside the box", v)
	}
}

func TestVolumeOrderingRotatedEllipsoid(t *testing.T) {
	vol := models.NewVolume(64, 64, 24, models.DefaultCalibration())
	synth.Ellipsoid(vol, 4, geom.Vector{X: 32, Y: 32, Z: 12}, [3]float64{22, 8, 6}, synth.RotateZ(math.Pi/6))
	obj := vol.Objects()[0]

	f, err := moments.NewAnalyzer(0).Analyze(obj)
	require.NoError(t, err)
	aabb, _ := AxisAligned(obj.Voxels)
	obb, _ := NewOriented(obj.Voxels, f.Center, f.Axes, obj.Calibration)

	vobj := float64(obj.Len())
	assert.LessOrEqual(t, vobj, obb.VolumePixels())
	assert.LessOrEqual(t, obb.VolumePixels(), float64(aabb.VolumePixels()))

	for _, v := range obj.Voxels {
		require.True(t, obb.Contains(v), "object voxel %v outside oriented box", v)
	}

	shell := obb.Shell(vol.Grid)
	assert.NotEmpty(t, shell)
	for _, v := range shell {
		assert.True(t, obb.Contains(v))
	}
}

func TestOrientedCalibrated(t *testing.T) {
	cal := models.Calibration{XY: 0.5, Z: 2, Unit: "um"}
	voxels := []models.Voxel{{X: 0, Y: 0, Z: 0}, {X: 3, Y: 1, Z: 2}}
	box, _ := AxisAligned(voxels)

	obb, ok := NewOriented(voxels, geom.Vector{X: 1.5, Y: 0.5, Z: 1}, synth.StandardAxes, cal)
	require.True(t, ok)
	assert.InDelta(t, 2.0, obb.Extents()[0], 1e-9)
	assert.InDelta(t, 1.0, obb.Extents()[1], 1e-9)
	assert.InDelta(t, 6.0, obb.Extents()[2], 1e-9)
	assert.InDelta(t, 12.0, obb.VolumeUnit(), 1e-9)
	assert.InDelta(t, float64(box.VolumePixels()), obb.VolumePixels(), 1e-9)
}
