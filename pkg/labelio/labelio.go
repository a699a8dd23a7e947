// Package labelio loads label volumes (count masks) from NIfTI files or from
// directories of numbered 16-bit PNG slices.
package labelio

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/disintegration/imaging"
	"github.com/henghuang/nifti"

	"ellipsoids3d/internal/models"
)

// Load reads a label volume from a NIfTI file or a slice directory. The
// fallback calibration is used when the source carries none.
func Load(path string, fallback models.Calibration) (*models.Volume, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if stat.IsDir() {
		return LoadSliceDir(path, fallback)
	}

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".nii") || strings.HasSuffix(lower, ".nii.gz") {
		return LoadNIfTI(path, fallback)
	}
	return nil, pfx.Err(fmt.Errorf("unsupported label volume %s: expected .nii, .nii.gz or a slice directory", path))
}

// LoadNIfTI reads the first time point of a NIfTI count mask. Voxel spacing
// is taken from pixdim when positive; the unit name comes from fallback.
func LoadNIfTI(filename string, fallback models.Calibration) (*models.Volume, error) {
	img, err := safelyNiftiParse(filename)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("reading %s: %w", filename, err))
	}
	header, err := safelyNiftiHeaderParse(filename)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("reading header of %s: %w", filename, err))
	}

	dims := img.GetDims()
	if len(dims) < 3 {
		return nil, pfx.Err(fmt.Errorf("%s: expected a 3D image, got dims %v", filename, dims))
	}
	xm, ym, zm := dims[0], dims[1], dims[2]

	cal := fallback
	if dx, dz := float64(header.Pixdim[1]), float64(header.Pixdim[3]); dx > 0 && dz > 0 {
		cal.XY = dx
		cal.Z = dz
	}

	vol := models.NewVolume(xm, ym, zm, cal)
	for z := 0; z < zm; z++ {
		for y := 0; y < ym; y++ {
			for x := 0; x < xm; x++ {
				value := float64(img.GetAt(x, y, z, 0))
				if value <= 0 {
					continue
				}
				vol.Set(x, y, z, uint32(value))
			}
		}
	}
	return vol, nil
}

// safelyNiftiParse turns panics raised by the nifti library into errors
func safelyNiftiParse(filename string) (parsed nifti.Nifti1Image, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	parsed.LoadImage(filename, true)

	return
}

// safelyNiftiHeaderParse turns panics raised by the nifti library into errors
func safelyNiftiHeaderParse(filename string) (parsed nifti.Nifti1Header, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	parsed.LoadHeader(filename)

	return
}

// LoadSliceDir reads a stack of PNG slices, ordered by the number embedded
// in each filename. Each pixel's 16-bit gray value is its label.
func LoadSliceDir(dir string, cal models.Calibration) (*models.Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".png" {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, pfx.Err(fmt.Errorf("no PNG slices found in %s", dir))
	}

	sort.SliceStable(files, func(i, j int) bool {
		return extractNumber(files[i]) < extractNumber(files[j])
	})

	var vol *models.Volume
	for z, name := range files {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("failed to load slice %s: %w", name, err))
		}

		b := img.Bounds()
		if vol == nil {
			vol = models.NewVolume(b.Dx(), b.Dy(), len(files), cal)
		} else if b.Dx() != vol.Width || b.Dy() != vol.Height {
			return nil, pfx.Err(fmt.Errorf("slice %s is %dx%d, expected %dx%d", name, b.Dx(), b.Dy(), vol.Width, vol.Height))
		}

		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				if g.Y != 0 {
					vol.Set(x, y, z, uint32(g.Y))
				}
			}
		}
	}
	return vol, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// SliceImage renders slice z of a volume as a 16-bit gray image, the format
// LoadSliceDir reads
func SliceImage(vol *models.Volume, z int) image.Image {
	img := image.NewGray16(image.Rect(0, 0, vol.Width, vol.Height))
	for y := 0; y < vol.Height; y++ {
		for x := 0; x < vol.Width; x++ {
			label := vol.At(x, y, z)
			if label > 0xffff {
				label = 0xffff
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(label)})
		}
	}
	return img
}

// SaveSliceDir writes a volume as numbered PNG slices
func SaveSliceDir(vol *models.Volume, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pfx.Err(err)
	}
	for z := 0; z < vol.Depth; z++ {
		name := filepath.Join(dir, fmt.Sprintf("slice_%04d.png", z))
		if err := imaging.Save(SliceImage(vol, z), name); err != nil {
			return pfx.Err(err)
		}
	}
	return nil
}
