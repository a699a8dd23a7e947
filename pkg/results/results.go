// Package results holds the per-object measurement rows and writes them as
// a CSV table.
package results

import (
	"math"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Row is the measurement record of one object. Centers, vectors and poles
// are in voxel units; radii, distances and unit volumes in calibrated units.
// Undefined values are NaN.
type Row struct {
	Label uint32 `csv:"Label"`

	Cx float64 `csv:"Cx(pix)"`
	Cy float64 `csv:"Cy(pix)"`
	Cz float64 `csv:"Cz(pix)"`

	Vx float64 `csv:"Vx(pix)"`
	Vy float64 `csv:"Vy(pix)"`
	Vz float64 `csv:"Vz(pix)"`

	R1 float64 `csv:"R1(unit)"`
	R2 float64 `csv:"R2(unit)"`
	R3 float64 `csv:"R3(unit)"`

	AngleXY float64 `csv:"XY(deg)"`
	AngleXZ float64 `csv:"XZ(deg)"`
	AngleYZ float64 `csv:"YZ(deg)"`

	VolumePixels            float64 `csv:"Vobj(pix)"`
	VolumeUnit              float64 `csv:"Vobj(unit)"`
	VolumeEllipsoidUnit     float64 `csv:"Vell(unit)"`
	VolumeBoundingBoxPixels float64 `csv:"Vbb(pix)"`
	VolumeOrientedBoxPixels float64 `csv:"Vbbo(pix)"`

	// Border distances from the center along the major axis, both ways
	D1 float64 `csv:"D1(unit)"`
	D2 float64 `csv:"D2(unit)"`

	Feret float64 `csv:"Feret(unit)"`

	Feret1X float64 `csv:"Feret1.X"`
	Feret1Y float64 `csv:"Feret1.Y"`
	Feret1Z float64 `csv:"Feret1.Z"`
	Feret2X float64 `csv:"Feret2.X"`
	Feret2Y float64 `csv:"Feret2.Y"`
	Feret2Z float64 `csv:"Feret2.Z"`

	Pole1X float64 `csv:"Pole1.X"`
	Pole1Y float64 `csv:"Pole1.Y"`
	Pole1Z float64 `csv:"Pole1.Z"`
	Pole2X float64 `csv:"Pole2.X"`
	Pole2Y float64 `csv:"Pole2.Y"`
	Pole2Z float64 `csv:"Pole2.Z"`
}

// NaNRow returns a row with every measurement undefined
func NaNRow(label uint32) Row {
	nan := math.NaN()
	return Row{
		Label: label,
		Cx:    nan, Cy: nan, Cz: nan,
		Vx: nan, Vy: nan, Vz: nan,
		R1: nan, R2: nan, R3: nan,
		AngleXY: nan, AngleXZ: nan, AngleYZ: nan,
		VolumePixels: nan, VolumeUnit: nan, VolumeEllipsoidUnit: nan,
		VolumeBoundingBoxPixels: nan, VolumeOrientedBoxPixels: nan,
		D1: nan, D2: nan, Feret: nan,
		Feret1X: nan, Feret1Y: nan, Feret1Z: nan,
		Feret2X: nan, Feret2Y: nan, Feret2Z: nan,
		Pole1X: nan, Pole1Y: nan, Pole1Z: nan,
		Pole2X: nan, Pole2Y: nan, Pole2Z: nan,
	}
}

// Table accumulates rows in processing order. Rows are only ever appended.
type Table struct {
	rows []Row
}

// NewTable creates a table, optionally continuing from existing rows
func NewTable(existing ...Row) *Table {
	return &Table{rows: append([]Row(nil), existing...)}
}

// Append adds a row at the end of the table
func (t *Table) Append(row Row) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows
func (t *Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// WriteCSV writes rows with a header, replacing the file
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(f.Close())
}

// AppendCSV appends rows to an existing table, writing the header only when
// the file is new or empty
func AppendCSV(path string, rows []Row) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		return WriteCSV(path, rows)
	} else if err != nil {
		return pfx.Err(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := gocsv.MarshalWithoutHeaders(&rows, f); err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(f.Close())
}

// ReadCSV reads a table written by WriteCSV or AppendCSV
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}
