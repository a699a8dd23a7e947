package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/lumberjack"

	"ellipsoids3d/pkg/config"
	"ellipsoids3d/pkg/labelio"
	"ellipsoids3d/pkg/measure"
	"ellipsoids3d/pkg/raster"
	"ellipsoids3d/pkg/results"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Label volume: a .nii/.nii.gz file or a directory of 16-bit PNG slices")
	configPath := flag.String("config", "", "YAML or TOML configuration file")
	outputFile := flag.String("output", "", "Results CSV file; rows are appended if it exists")
	rasterDir := flag.String("rasters", "", "Directory for the ellipsoid, vector and contour slice stacks")
	numWorkers := flag.Int("workers", 0, "Number of objects fitted concurrently (default: all CPUs)")
	resXY := flag.Float64("resxy", 0, "In-plane voxel size; forces the calibration when set")
	resZ := flag.Float64("resz", 0, "Voxel depth; forces the calibration when set")
	unit := flag.String("unit", "", "Calibration unit name")
	feret := flag.Bool("feret", false, "Compute the Feret diameter")
	logFile := flag.String("log", "", "Rotating log file")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags win over the config file
	if *outputFile != "" {
		cfg.Output.ResultsFile = *outputFile
	}
	if *rasterDir != "" {
		cfg.Output.RasterDir = *rasterDir
	}
	if *numWorkers > 0 {
		cfg.Processing.NumWorkers = *numWorkers
	}
	if *resXY > 0 {
		cfg.Calibration.ResXY = *resXY
		cfg.Calibration.Override = true
	}
	if *resZ > 0 {
		cfg.Calibration.ResZ = *resZ
		cfg.Calibration.Override = true
	}
	if *unit != "" {
		cfg.Calibration.Unit = *unit
	}
	if *feret {
		cfg.Processing.ComputeFeret = true
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Logging.File != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename: cfg.Logging.File,
			MaxSize:  cfg.Logging.MaxSize,
			MaxAge:   cfg.Logging.MaxAge,
		}))
	}

	fmt.Println("================================")
	fmt.Println("3D ELLIPSOID FITTING OF LABELED OBJECTS")
	fmt.Println("================================")

	vol, err := labelio.Load(*inputPath, cfg.CalibrationValue())
	if err != nil {
		log.Fatalf("Failed to load label volume: %v", err)
	}
	if cfg.Calibration.Override {
		vol.Calibration = cfg.CalibrationValue()
	}
	fmt.Printf("Loaded %dx%dx%d volume, voxel %g x %g x %g %s\n",
		vol.Width, vol.Height, vol.Depth, vol.Calibration.XY, vol.Calibration.XY, vol.Calibration.Z, vol.Calibration.Unit)

	// Continue an existing table so row numbers keep counting
	var existing []results.Row
	if info, err := os.Stat(cfg.Output.ResultsFile); err == nil && info.Size() > 0 {
		if existing, err = results.ReadCSV(cfg.Output.ResultsFile); err != nil {
			log.Fatalf("Failed to read existing results: %v", err)
		}
	}

	params := &measure.Params{
		NumWorkers:   cfg.Processing.NumWorkers,
		ComputeFeret: cfg.Processing.ComputeFeret,
		Epsilon:      cfg.Processing.DegenerateEpsilon,
		Verbose:      cfg.Output.Verbose,
	}
	measurer := measure.NewMeasurer(params, vol, results.NewTable(existing...))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting measurement with parallel processing...")
	startTime := time.Now()
	processErr := measurer.Process(ctx)
	if processErr != nil {
		log.Printf("Measurement stopped early: %v", processErr)
	}
	processingTime := time.Since(startTime)

	// Whatever was measured is written, even after an interrupt
	rows := measurer.Rows()[len(existing):]
	if err := results.AppendCSV(cfg.Output.ResultsFile, rows); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}

	if cfg.Output.SaveRasters {
		ellipsoids, vectors, contours := measurer.Rasters()
		names := []string{"ellipsoids", "vectors", "contours"}
		for i, r := range []*raster.Raster{ellipsoids, vectors, contours} {
			dir := filepath.Join(cfg.Output.RasterDir, names[i])
			fmt.Printf("Saving %s slices to: %s\n", names[i], dir)
			if err := r.SaveSliceSequence("z", names[i], dir); err != nil {
				log.Printf("Warning: Failed to save %s raster: %v", names[i], err)
			}
		}
	}

	fmt.Printf("\nMeasured %s objects (%s skipped) in %.2f seconds using %d workers\n",
		humanize.Comma(int64(len(rows))), humanize.Comma(int64(measurer.Skipped())),
		processingTime.Seconds(), cfg.Processing.NumWorkers)
	fmt.Printf("Results written to: %s\n", cfg.Output.ResultsFile)
	if cfg.Output.SaveRasters {
		fmt.Printf("Rasters written to: %s\n", cfg.Output.RasterDir)
	}

	if processErr != nil {
		os.Exit(1)
	}
}
