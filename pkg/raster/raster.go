// Package raster holds the label rasters written by the measurement pass:
// fitted ellipsoids, major-axis vectors and oriented-box contours.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/geom"
)

// Raster is a label raster sharing the grid and calibration of the input
// volume. Each object stamps only its own label.
type Raster struct {
	models.Grid

	// Data holds one label per voxel in row-major order
	Data []uint32
}

// New allocates an empty raster on grid
func New(grid models.Grid) *Raster {
	return &Raster{
		Grid: grid,
		Data: make([]uint32, grid.Size()),
	}
}

// At returns the label at a voxel, 0 outside the raster
func (r *Raster) At(x, y, z int) uint32 {
	if !r.InBounds(x, y, z) {
		return 0
	}
	return r.Data[r.Index(x, y, z)]
}

// Stamp writes label into every voxel of the list that lies in the raster
// and returns how many were written. Later stamps overwrite earlier ones.
func (r *Raster) Stamp(label uint32, voxels []models.Voxel) int {
	written := 0
	for _, v := range voxels {
		if !r.InBounds(v.X, v.Y, v.Z) {
			continue
		}
		r.Data[r.Index(v.X, v.Y, v.Z)] = label
		written++
	}
	return written
}

// Line stamps a segment between two calibrated points
func (r *Raster) Line(from, to geom.Vector, label uint32) int {
	return r.Stamp(label, LineVoxels(from, to, r.Calibration))
}

// LineVoxels returns the voxels along the segment between two calibrated
// points, sampled at half the smallest voxel spacing, without duplicates.
func LineVoxels(from, to geom.Vector, cal models.Calibration) []models.Voxel {
	if from.IsNaN() || to.IsNaN() {
		return nil
	}
	d := to.Sub(from)
	step := 0.5 * math.Min(cal.XY, cal.Z)
	n := int(math.Ceil(d.Norm()/step)) + 1

	var voxels []models.Voxel
	seen := make(map[models.Voxel]struct{}, n)
	for i := 0; i < n; i++ {
		t := 1.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		p := from.AddScaled(d, t)
		v := models.Voxel{
			X: int(math.Round(p.X / cal.XY)),
			Y: int(math.Round(p.Y / cal.XY)),
			Z: int(math.Round(p.Z / cal.Z)),
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		voxels = append(voxels, v)
	}
	return voxels
}

// Count returns the number of voxels holding label
func (r *Raster) Count(label uint32) int {
	n := 0
	for _, v := range r.Data {
		if v == label {
			n++
		}
	}
	return n
}

// Object extracts the voxels holding label as an object
func (r *Raster) Object(label uint32) *models.Object {
	var voxels []models.Voxel
	for z := 0; z < r.Depth; z++ {
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				if r.Data[r.Index(x, y, z)] == label {
					voxels = append(voxels, models.Voxel{X: x, Y: y, Z: z})
				}
			}
		}
	}
	return models.NewObject(label, voxels, r.Calibration)
}

// ExtractSlice extracts a 2D slice along the specified axis as a 16-bit
// image. Labels above 65535 saturate.
func (r *Raster) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray16
	switch axis {
	case "x", "X":
		// YZ plane
		if position >= r.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, r.Width)
		}
		img = image.NewGray16(image.Rect(0, 0, r.Depth, r.Height))
		for y := 0; y < r.Height; y++ {
			for z := 0; z < r.Depth; z++ {
				img.SetGray16(z, y, labelColor(r.At(position, y, z)))
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= r.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, r.Height)
		}
		img = image.NewGray16(image.Rect(0, 0, r.Width, r.Depth))
		for z := 0; z < r.Depth; z++ {
			for x := 0; x < r.Width; x++ {
				img.SetGray16(x, z, labelColor(r.At(x, position, z)))
			}
		}

	case "z", "Z":
		// XY plane
		if position >= r.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, r.Depth)
		}
		img = image.NewGray16(image.Rect(0, 0, r.Width, r.Height))
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				img.SetGray16(x, y, labelColor(r.At(x, y, position)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

func labelColor(label uint32) color.Gray16 {
	if label > math.MaxUint16 {
		return color.Gray16{Y: math.MaxUint16}
	}
	return color.Gray16{Y: uint16(label)}
}

// SaveSliceSequence extracts and saves every slice along the axis as
// numbered PNG files prefixed with name
func (r *Raster) SaveSliceSequence(axis, name, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = r.Width
	case "y", "Y":
		maxPos = r.Height
	case "z", "Z":
		maxPos = r.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := r.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s_%03d.png", name, axis, pos))
		if err := imaging.Save(img, filename); err != nil {
			return fmt.Errorf("saving %s: %w", filename, err)
		}
	}

	return nil
}
