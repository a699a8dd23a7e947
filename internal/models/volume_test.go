package models

import (
	"testing"
)

func TestVolumeAccess(t *testing.T) {
	vol := NewVolume(4, 3, 2, DefaultCalibration())
	if len(vol.Data) != 24 {
		t.Fatalf("Expected 24 voxels, got %d", len(vol.Data))
	}

	vol.Set(3, 2, 1, 7)
	if got := vol.At(3, 2, 1); got != 7 {
		t.Errorf("Expected label 7, got %d", got)
	}
	if got := vol.Data[vol.Index(3, 2, 1)]; got != 7 {
		t.Errorf("Index does not match At, got %d", got)
	}

	// Out of range access is ignored
	vol.Set(4, 0, 0, 9)
	vol.Set(-1, 0, 0, 9)
	if got := vol.At(4, 0, 0); got != 0 {
		t.Errorf("Expected 0 outside the volume, got %d", got)
	}
	for i, v := range vol.Data {
		if v == 9 {
			t.Errorf("Out of range write landed at index %d", i)
		}
	}
}

func TestObjects(t *testing.T) {
	vol := NewVolume(5, 5, 5, Calibration{XY: 0.5, Z: 2, Unit: "um"})
	vol.Set(4, 4, 4, 12)
	vol.Set(1, 0, 0, 3)
	vol.Set(0, 0, 0, 3)
	vol.Set(2, 2, 2, 12)

	objects := vol.Objects()
	if len(objects) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(objects))
	}
	if objects[0].Label != 3 || objects[1].Label != 12 {
		t.Errorf("Expected labels in ascending order, got %d, %d", objects[0].Label, objects[1].Label)
	}

	first := objects[0]
	if first.Len() != 2 {
		t.Errorf("Expected 2 voxels, got %d", first.Len())
	}
	if first.Voxels[0] != (Voxel{0, 0, 0}) || first.Voxels[1] != (Voxel{1, 0, 0}) {
		t.Errorf("Expected scan order, got %v", first.Voxels)
	}
	if !first.Contains(Voxel{1, 0, 0}) || first.Contains(Voxel{2, 2, 2}) {
		t.Error("Membership test is wrong")
	}
	if first.Calibration.Unit != "um" {
		t.Errorf("Expected object to carry the volume calibration, got %+v", first.Calibration)
	}
}

func TestEmptyVolumeHasNoObjects(t *testing.T) {
	vol := NewVolume(3, 3, 3, DefaultCalibration())
	if objects := vol.Objects(); len(objects) != 0 {
		t.Errorf("Expected no objects, got %d", len(objects))
	}
}

func TestVoxelVolume(t *testing.T) {
	cal := Calibration{XY: 0.5, Z: 2}
	if got := cal.VoxelVolume(); got != 0.5 {
		t.Errorf("Expected 0.5, got %g", got)
	}
	if got := DefaultCalibration().VoxelVolume(); got != 1 {
		t.Errorf("Expected 1, got %g", got)
	}
}
