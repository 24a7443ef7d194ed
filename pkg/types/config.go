// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"runtime"
)

// Defaults for the conversion command.
const (
	DefaultInputExt  = ".cr3"
	DefaultOutputExt = ".png"
	DefaultQuality   = 95
	DefaultDecoder   = DecoderAuto
)

// DecoderName selects the external raw developer program.
type DecoderName string

const (
	DecoderAuto     DecoderName = "auto"
	DecoderDcrawEmu DecoderName = "dcraw_emu"
	DecoderDcraw    DecoderName = "dcraw"
)

// Config holds settings for one conversion run. Values come from flags,
// the config file, and FORMATFLIP_* environment variables.
type Config struct {
	// InputPath is a raw file or a directory of raw files.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputDir receives converted files. Created if missing.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// InputExt filters directory entries (ignored for a single file).
	InputExt string `json:"input_ext" yaml:"input_ext"`

	// OutputExt selects the target format.
	OutputExt string `json:"output_ext" yaml:"output_ext"`

	// Threads is the worker count. Zero means one worker per CPU.
	Threads int `json:"threads" yaml:"threads"`

	// Quality is the JPEG quality (1-100), also used for PDF image data.
	Quality int `json:"quality" yaml:"quality"`

	// Decoder picks the developer program: auto, dcraw_emu, or dcraw.
	Decoder DecoderName `json:"decoder" yaml:"decoder"`

	// SkipExisting leaves tasks whose output already exists untouched.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// ReportPath, when set, receives a YAML run report.
	ReportPath string `json:"report,omitempty" yaml:"report,omitempty"`

	// JournalPath, when set, is the SQLite database the run is recorded in.
	JournalPath string `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// Validate normalizes extensions and rejects out-of-range values.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	c.InputExt = NormalizeExt(c.InputExt)
	if c.InputExt == "" {
		c.InputExt = DefaultInputExt
	}
	c.OutputExt = NormalizeExt(c.OutputExt)
	if c.OutputExt == "" {
		c.OutputExt = DefaultOutputExt
	}

	if c.Threads < 0 {
		return fmt.Errorf("invalid threads: %d (must be >= 0)", c.Threads)
	}
	if c.Quality == 0 {
		c.Quality = DefaultQuality
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("invalid quality: %d (must be 1-100)", c.Quality)
	}

	switch c.Decoder {
	case "":
		c.Decoder = DefaultDecoder
	case DecoderAuto, DecoderDcrawEmu, DecoderDcraw:
	default:
		return fmt.Errorf("unknown decoder %q (want auto, dcraw_emu, or dcraw)", c.Decoder)
	}
	return nil
}

// Workers returns the effective worker count for this config.
func (c Config) Workers() int {
	return ResolveWorkers(c.Threads)
}

// ResolveWorkers returns n when positive, otherwise the host CPU count.
func ResolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return max(runtime.NumCPU(), 1)
}
