// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes a YAML summary of a conversion run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/formatflip/pkg/types"
)

// Report is the on-disk shape of a run report.
type Report struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Elapsed    string    `yaml:"elapsed"`

	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Format  string `yaml:"format"`
	Decoder string `yaml:"decoder"`
	Workers int    `yaml:"workers"`

	Summary Summary `yaml:"summary"`
	Files   []File  `yaml:"files"`
}

// Summary holds the run counts.
type Summary struct {
	Converted int `yaml:"converted"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
	Total     int `yaml:"total"`
}

// File is one task's line in the report.
type File struct {
	Input    string          `yaml:"input"`
	Output   string          `yaml:"output"`
	Outcome  types.Outcome   `yaml:"outcome"`
	Message  string          `yaml:"message,omitempty"`
	Duration string          `yaml:"duration,omitempty"`
	Camera   *types.Metadata `yaml:"camera,omitempty"`
}

// Build converts a Run into its report form.
func Build(run types.Run) Report {
	r := Report{
		RunID:      run.ID,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Elapsed:    run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
		Input:      run.InputPath,
		Output:     run.OutputDir,
		Format:     run.OutputExt,
		Decoder:    run.Decoder,
		Workers:    run.Workers,
		Summary: Summary{
			Converted: run.Converted,
			Skipped:   run.Skipped,
			Failed:    run.Failed,
			Total:     run.Total(),
		},
		Files: make([]File, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		f := File{
			Input:   res.Task.InputPath,
			Output:  res.Task.OutputPath(),
			Outcome: res.Outcome,
			Message: res.Message,
			Camera:  res.Metadata,
		}
		if res.Duration > 0 {
			f.Duration = res.Duration.Round(time.Millisecond).String()
		}
		r.Files = append(r.Files, f)
	}
	return r
}

// Write marshals the report for run to path, creating parent directories.
func Write(path string, run types.Run) error {
	data, err := yaml.Marshal(Build(run))
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}
