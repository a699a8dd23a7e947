// Package measure runs the ellipsoid fit over every object of a label volume
// and collects one results row per object, along with the ellipsoid, vector
// and oriented-contour rasters.
package measure

import (
	"context"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/moments"
	"ellipsoids3d/pkg/raster"
	"ellipsoids3d/pkg/results"
)

// Params holds the measurement parameters
type Params struct {
	// NumWorkers is how many objects are fitted concurrently
	NumWorkers int

	// ComputeFeret enables the Feret diameter
	ComputeFeret bool

	// Epsilon is the degenerate-eigenvalue threshold, 0 for the default
	Epsilon float64

	// Verbose logs every object's measurements
	Verbose bool
}

// Measurer fits ellipsoids to the objects of one label volume.
//
// Objects are fitted in batches of NumWorkers. Fits are pure; once a batch
// is done its objects are stamped into the rasters and appended to the
// table in ascending label order, so output does not depend on scheduling
// and a cancelled run keeps every row emitted so far.
type Measurer struct {
	params   *Params
	volume   *models.Volume
	analyzer *moments.Analyzer

	ellipsoids *raster.Raster
	vectors    *raster.Raster
	contours   *raster.Raster

	table   *results.Table
	skipped int
}

// NewMeasurer creates a measurer writing rows to table. A nil table starts
// a new one.
func NewMeasurer(params *Params, volume *models.Volume, table *results.Table) *Measurer {
	if table == nil {
		table = results.NewTable()
	}
	return &Measurer{
		params:     params,
		volume:     volume,
		analyzer:   moments.NewAnalyzer(params.Epsilon),
		ellipsoids: raster.New(volume.Grid),
		vectors:    raster.New(volume.Grid),
		contours:   raster.New(volume.Grid),
		table:      table,
	}
}

// Process measures every object. It returns ctx.Err() if cancelled; rows
// and raster stamps of batches finished before cancellation are kept.
func (m *Measurer) Process(ctx context.Context) error {
	objects := m.volume.Objects()
	total := len(objects)
	if m.params.Verbose {
		fmt.Printf("Measuring %d objects...\n", total)
	}

	workers := m.params.NumWorkers
	if workers < 1 {
		workers = 1
	}

	for start := 0; start < total; start += workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+workers, total)

		fits := make([]*Fit, end-start)
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			obj := objects[i]
			slot := i - start
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fit, err := FitObject(obj, m.volume.Grid, m.analyzer, m.params.ComputeFeret)
				if err != nil {
					// one object never aborts the batch
					log.Printf("Warning: skipping object %d: %v", obj.Label, err)
					return nil
				}
				fits[slot] = fit
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, fit := range fits {
			if fit == nil {
				m.skipped++
				continue
			}
			m.record(fit)
		}

		if m.params.Verbose {
			progress := float64(end) / float64(total) * 100
			fmt.Printf("\rProcessing objects: %.1f%% complete", progress)
		}
	}
	if m.params.Verbose && total > 0 {
		fmt.Println()
	}

	return nil
}

// record stamps the fit into the rasters and appends its row
func (m *Measurer) record(f *Fit) {
	label := f.Object.Label
	if f.EllipsoidDefined {
		m.ellipsoids.Stamp(label, f.Ellipsoid)
	}
	m.vectors.Stamp(label, f.Vector)
	m.contours.Stamp(label, f.Shell)

	row := f.Row()
	m.table.Append(row)

	if m.params.Verbose {
		m.logFit(f, row)
	}
}

func (m *Measurer) logFit(f *Fit, row results.Row) {
	cal := f.Object.Calibration
	n := m.table.Len() - 1

	log.Printf("obj %d-%d (2 is main axis)", n, f.Object.Label)
	for i := 0; i < 3; i++ {
		log.Printf("%d: Vector %d : %+v", n, i, f.Frame.Axes[i])
		log.Printf("%d: Value  %d : %.3f", n, i, f.Frame.Values[i])
		log.Printf("%d: Value  sqrt %d : %.3f", n, i, math.Sqrt(f.Frame.Values[i]))
	}
	log.Printf("Angles: XY %.3f XZ %.3f YZ %.3f", row.AngleXY, row.AngleXZ, row.AngleYZ)
	log.Printf("%d: radii=%.3f %.3f %.3f %s", n, row.R1, row.R2, row.R3, cal.Unit)
	log.Printf("major from distance %.3f %.3f", row.D1, row.D2)
	log.Printf("Center : %.3f %.3f %.3f", row.Cx, row.Cy, row.Cz)
	log.Printf("Pole1 as Feret 1 : %v (calibrated %.3f %.3f %.3f)", f.ObjectPole1,
		f.ObjectPole1.X*cal.XY, f.ObjectPole1.Y*cal.XY, f.ObjectPole1.Z*cal.Z)
	log.Printf("Pole2 as Feret 2 : %v (calibrated %.3f %.3f %.3f)", f.ObjectPole2,
		f.ObjectPole2.X*cal.XY, f.ObjectPole2.Y*cal.XY, f.ObjectPole2.Z*cal.Z)
	log.Printf("Pole1 as ellipsoid 1 : %v", f.EllipsoidPole1)
	log.Printf("Pole2 as ellipsoid 2 : %v", f.EllipsoidPole2)
	if !math.IsNaN(f.FeretDiameter) {
		log.Printf("Feret : %.3f %s between %v and %v", f.FeretDiameter, cal.Unit, f.FeretVoxel1, f.FeretVoxel2)
	}
	log.Printf("BB  : %v", f.Box.Array())
	log.Printf("Volumes: obj %.3f %s, ell %.3f %s, obj %.0f pixels, bb %.0f pixels, bbo %.1f pixels",
		row.VolumeUnit, cal.Unit, row.VolumeEllipsoidUnit, cal.Unit,
		row.VolumePixels, row.VolumeBoundingBoxPixels, row.VolumeOrientedBoxPixels)
}

// Rows returns the rows of the results table
func (m *Measurer) Rows() []results.Row {
	return m.table.Rows()
}

// Table returns the results table
func (m *Measurer) Table() *results.Table {
	return m.table
}

// Rasters returns the ellipsoid, vector and oriented-contour rasters
func (m *Measurer) Rasters() (ellipsoids, vectors, contours *raster.Raster) {
	return m.ellipsoids, m.vectors, m.contours
}

// Skipped returns how many objects could not be measured
func (m *Measurer) Skipped() int {
	return m.skipped
}
