// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Run describes one invocation of the converter: what was asked for and
// how every task ended. Reports and the journal are built from it.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	InputPath string `json:"input_path" yaml:"input_path"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	InputExt  string `json:"input_ext" yaml:"input_ext"`
	OutputExt string `json:"output_ext" yaml:"output_ext"`
	Decoder   string `json:"decoder" yaml:"decoder"`
	Workers   int    `json:"workers" yaml:"workers"`

	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`

	Results []Result `json:"results,omitempty" yaml:"results,omitempty"`
}

// Total returns the number of tasks in the run.
func (r Run) Total() int {
	return r.Converted + r.Skipped + r.Failed
}
