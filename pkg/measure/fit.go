package measure

import (
	"math"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/bounds"
	"ellipsoids3d/pkg/ellipsoid"
	"ellipsoids3d/pkg/geom"
	"ellipsoids3d/pkg/moments"
	"ellipsoids3d/pkg/poles"
	"ellipsoids3d/pkg/raster"
	"ellipsoids3d/pkg/results"
)

// Fit holds everything measured for one object. It is computed without
// touching shared state; the measurer stamps and records it afterwards.
type Fit struct {
	Object *models.Object
	Frame  moments.Frame
	Radii  ellipsoid.Radii

	// Ellipsoid voxels, empty when the ellipsoid is undefined
	Ellipsoid        []models.Voxel
	EllipsoidDefined bool

	Box      bounds.Box
	Oriented bounds.Oriented
	Shell    []models.Voxel

	// Vector is the segment from the center along the major axis, length R1
	Vector []models.Voxel

	// Borders reached marching from the center along +major and -major
	Border1, Border2 poles.Border

	// Poles of the raw object along the major axis
	ObjectPole1, ObjectPole2 geom.Vector

	// Poles of the fitted ellipsoid along the major axis
	EllipsoidPole1, EllipsoidPole2 geom.Vector

	// FeretDiameter is the largest surface-to-surface distance, between
	// FeretVoxel1 and FeretVoxel2; NaN unless requested
	FeretDiameter            float64
	FeretVoxel1, FeretVoxel2 geom.Vector
}

// FitObject runs the moment analysis, radius resolution, rasterization,
// pole and bounds computations for one object on grid.
func FitObject(obj *models.Object, grid models.Grid, analyzer *moments.Analyzer, computeFeret bool) (*Fit, error) {
	frame, err := analyzer.Analyze(obj)
	if err != nil {
		return nil, err
	}
	cal := obj.Calibration
	major := frame.Major()

	f := &Fit{
		Object:         obj,
		Frame:          frame,
		Radii:          ellipsoid.Resolve(frame.Radius(2), frame.MainElongation(), frame.MedianElongation()),
		ObjectPole1:    geom.NaNVector,
		ObjectPole2:    geom.NaNVector,
		EllipsoidPole1: geom.NaNVector,
		EllipsoidPole2: geom.NaNVector,
		FeretDiameter:  math.NaN(),
		FeretVoxel1:    geom.NaNVector,
		FeretVoxel2:    geom.NaNVector,
	}

	centerUnit := frame.CenterUnit(cal)
	f.Ellipsoid, f.EllipsoidDefined = ellipsoid.Rasterize(ellipsoid.Params{
		Center:    centerUnit,
		Radii:     f.Radii,
		Major:     major,
		Secondary: frame.Secondary(),
	}, grid)

	f.Vector = raster.LineVoxels(centerUnit, centerUnit.AddScaled(major, f.Radii.R1), cal)

	start := models.Voxel{X: int(frame.Center.X), Y: int(frame.Center.Y), Z: int(frame.Center.Z)}
	f.Border1 = poles.March(obj, start, major, cal)
	f.Border2 = poles.March(obj, start, major.Scale(-1), cal)

	if lo, hi, ok := poles.Extremal(obj.Voxels, frame.Center, major, cal); ok {
		f.ObjectPole1, f.ObjectPole2 = voxelVector(hi), voxelVector(lo)
	}
	if lo, hi, ok := poles.Extremal(f.Ellipsoid, frame.Center, major, cal); ok {
		f.EllipsoidPole1, f.EllipsoidPole2 = voxelVector(hi), voxelVector(lo)
	}

	if computeFeret {
		a, b, d := poles.Feret(obj)
		f.FeretDiameter = d
		f.FeretVoxel1, f.FeretVoxel2 = voxelVector(a), voxelVector(b)
	}

	f.Box, _ = bounds.AxisAligned(obj.Voxels)
	f.Oriented, _ = bounds.NewOriented(obj.Voxels, frame.Center, frame.Axes, cal)
	f.Shell = f.Oriented.Shell(grid)

	return f, nil
}

func voxelVector(v models.Voxel) geom.Vector {
	return geom.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Angles returns the angles in degrees between the major axis and the XY,
// XZ and YZ planes
func (f *Fit) Angles() (xy, xz, yz float64) {
	v := f.Frame.Major()
	return v.AnglePlaneDegrees(0, 0, 1), v.AnglePlaneDegrees(0, 1, 0), v.AnglePlaneDegrees(1, 0, 0)
}

// Row assembles the measurement record
func (f *Fit) Row() results.Row {
	cal := f.Object.Calibration
	v := f.Frame.Major()
	xy, xz, yz := f.Angles()
	count := float64(f.Object.Len())

	row := results.Row{
		Label: f.Object.Label,

		Cx: f.Frame.Center.X,
		Cy: f.Frame.Center.Y,
		Cz: f.Frame.Center.Z,

		Vx: v.X,
		Vy: v.Y,
		Vz: v.Z,

		R1: f.Radii.R1,
		R2: f.Radii.R2,
		R3: f.Radii.R3,

		AngleXY: xy,
		AngleXZ: xz,
		AngleYZ: yz,

		VolumePixels:            count,
		VolumeUnit:              count * cal.VoxelVolume(),
		VolumeEllipsoidUnit:     f.Radii.Volume(),
		VolumeBoundingBoxPixels: float64(f.Box.VolumePixels()),
		VolumeOrientedBoxPixels: f.Oriented.VolumePixels(),

		D1: f.Border1.Distance,
		D2: f.Border2.Distance,

		Feret: f.FeretDiameter,
	}
	row.Feret1X, row.Feret1Y, row.Feret1Z = f.ObjectPole1.X, f.ObjectPole1.Y, f.ObjectPole1.Z
	row.Feret2X, row.Feret2Y, row.Feret2Z = f.ObjectPole2.X, f.ObjectPole2.Y, f.ObjectPole2.Z
	row.Pole1X, row.Pole1Y, row.Pole1Z = f.EllipsoidPole1.X, f.EllipsoidPole1.Y, f.EllipsoidPole1.Z
	row.Pole2X, row.Pole2Y, row.Pole2Z = f.EllipsoidPole2.X, f.EllipsoidPole2.Y, f.EllipsoidPole2.Z
	return row
}
