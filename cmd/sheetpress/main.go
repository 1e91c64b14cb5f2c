// Command sheetpress combines per-sheet PDF files into one document,
// recompressing raster content through Ghostscript and splitting the output
// into size-capped parts when asked to.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"

	"github.com/pinhead001/sheetpress/internal/press"
)

// Define named types for each section of the configuration.
type configPaths struct {
	OutputDir string `toml:"output_dir"`
}

type configLogsDir struct {
	Sheetpress string `toml:"sheetpress"`
}

type configSettings struct {
	Quality   string  `toml:"quality"`
	DPI       int     `toml:"dpi"`
	MaxSizeMB float64 `toml:"max_size_mb"`
}

// config represents the structure of the project.toml file.
type config struct {
	Paths    configPaths    `toml:"paths"`
	LogsDir  configLogsDir  `toml:"logs_dir"`
	Settings configSettings `toml:"settings"`
}

func main() {
	ctx := context.Background()
	// The `run` function contains the core application logic.
	// We call it and then os.Exit to ensure deferred functions are run correctly.
	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main logic function, separated from main to allow for easier
// testing and clean exit handling.
func run(ctx context.Context) error {
	projectRoot, configPath, rootErr := configurator.FindProjectRoot(".")
	if rootErr != nil {
		// No project.toml above the working directory; run on flags alone.
		projectRoot = "."
		configPath = ""
	}

	cfg, cfgErr := safeLoadConfig(configPath)
	if cfgErr != nil {
		return cfgErr
	}

	flgs := parseFlags()

	options := mergeConfigAndFlags(&cfg, flgs)

	return processWithLogger(ctx, &options, projectRoot, cfg.LogsDir.Sheetpress)
}

// safeLoadConfig loads the TOML config, allowing a missing file without error.
func safeLoadConfig(path string) (config, error) {
	if path == "" {
		var emptyCfg config

		return emptyCfg, nil
	}

	cfg, err := loadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			var emptyCfg config

			return emptyCfg, nil
		}

		return config{}, fmt.Errorf("error loading config file: %w", err)
	}

	return cfg, nil
}

// loadConfig reads and parses the project.toml file.
func loadConfig(path string) (config, error) {
	var cfg config

	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var zero config

		return zero, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

// flags represents the command-line arguments.
type flags struct {
	inputs     []string
	outputPath string
	quality    string
	dpi        int
	noCompress bool
	maxSizeMB  float64
}

// parseFlags defines and parses command-line flags. The remaining positional
// arguments are the input PDF files and/or folders.
func parseFlags() flags {
	var flagsVar flags
	flag.StringVar(
		&flagsVar.outputPath,
		"output",
		"",
		"Output PDF path (default: combined_compressed.pdf).",
	)
	flag.StringVar(
		&flagsVar.quality,
		"quality",
		"",
		"Ghostscript quality preset: screen, ebook, printer or prepress.",
	)
	flag.IntVar(
		&flagsVar.dpi,
		"dpi",
		0,
		"Target raster DPI, overriding the preset default.",
	)
	flag.BoolVar(
		&flagsVar.noCompress,
		"no-compress",
		false,
		"Skip compression; just combine the PDFs.",
	)
	flag.Float64Var(
		&flagsVar.maxSizeMB,
		"max-size",
		0,
		"Max output file size in MB; splits into multiple files if needed.",
	)
	flag.Parse()

	flagsVar.inputs = flag.Args()

	return flagsVar
}

// mergeConfigAndFlags combines settings from the config file and command-line
// flags. Flags take precedence over the config file settings.
func mergeConfigAndFlags(cfg *config, flgs flags) press.Options {
	opts := press.Options{
		ProgressBarOutput: nil,
		Inputs:            flgs.inputs,
		OutputPath:        filepath.Join(cfg.Paths.OutputDir, press.DefaultOutputName),
		Quality:           cfg.Settings.Quality,
		DPI:               cfg.Settings.DPI,
		NoCompress:        flgs.noCompress,
		MaxSizeMB:         cfg.Settings.MaxSizeMB,
	}

	// Command-line flags override config file values.
	if flgs.outputPath != "" {
		opts.OutputPath = flgs.outputPath
	}

	if flgs.quality != "" {
		opts.Quality = flgs.quality
	}

	if flgs.dpi > 0 {
		opts.DPI = flgs.dpi
	}

	if flgs.maxSizeMB > 0 {
		opts.MaxSizeMB = flgs.maxSizeMB
	}

	return opts
}

// processWithLogger sets up the logger and runs the processor.
func processWithLogger(
	ctx context.Context,
	options *press.Options,
	projectRoot, logDir string,
) error {
	log, err := setupLogger(projectRoot, logDir)
	if err != nil {
		return fmt.Errorf("could not set up logger: %w", err)
	}

	defer func() {
		cerr := log.Close()
		if cerr != nil {
			_, _ = fmt.Fprintf(
				os.Stderr,
				"failed to close logger: %v\n",
				cerr,
			)
		}
	}()

	processor := press.NewProcessor(options, log)

	procErr := processor.Process(ctx)
	if procErr != nil {
		return fmt.Errorf("PDF processing failed: %w", procErr)
	}

	return nil
}

// setupLogger initializes the logger, creating the log directory if needed.
func setupLogger(projectRoot, logDirConfig string) (*logger.Logger, error) {
	logDir := logDirConfig
	if logDir == "" {
		logDir = filepath.Join(projectRoot, "logs", "sheetpress")
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("20060102_150405"))

	log, err := logger.New(logDir, logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}
