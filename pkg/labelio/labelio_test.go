package labelio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/internal/synth"
	"ellipsoids3d/pkg/geom"
)

func TestSliceDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cal := models.Calibration{XY: 0.25, Z: 1.5, Unit: "um"}

	vol := models.NewVolume(24, 20, 12, cal)
	synth.Sphere(vol, 1, geom.Vector{X: 8, Y: 8, Z: 6}, 1.25)
	synth.Box(vol, 1234, models.Voxel{X: 15, Y: 2, Z: 1}, models.Voxel{X: 20, Y: 6, Z: 9})
	require.NoError(t, SaveSliceDir(vol, dir))

	loaded, err := Load(dir, cal)
	require.NoError(t, err)
	assert.Equal(t, vol.Grid, loaded.Grid)
	assert.Equal(t, vol.Data, loaded.Data)

	objs := loaded.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, uint32(1), objs[0].Label)
	assert.Equal(t, uint32(1234), objs[1].Label)
	assert.Equal(t, 6*5*9, objs[1].Len())
}

func TestSliceOrderingByNumber(t *testing.T) {
	names := []string{"slice_10.png", "slice_2.png", "slice_1.png"}
	for i, name := range names {
		assert.Equal(t, []int{10, 2, 1}[i], extractNumber(name))
	}
	assert.Equal(t, 0, extractNumber("slice.png"))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.nii"), models.DefaultCalibration())
	assert.Error(t, err)

	other := filepath.Join(dir, "labels.tif")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	_, err = Load(other, models.DefaultCalibration())
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))
	_, err = LoadSliceDir(empty, models.DefaultCalibration())
	assert.Error(t, err)
}
