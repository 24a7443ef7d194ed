// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for formatflip: conversion
// tasks, their results, and run configuration.
package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Outcome is the terminal state of one conversion task.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeSkipped Outcome = "skipped"
)

// Task is one input file to output file conversion unit. Tasks are created
// by the enumerator and never modified afterwards.
type Task struct {
	// InputPath is the raw file to decode.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputDir is the directory the converted file is written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// OutputExt is the normalized target extension, including the dot (e.g. ".png").
	OutputExt string `json:"output_ext" yaml:"output_ext"`
}

// NewTask builds a task with normalized output extension.
func NewTask(inputPath, outputDir, outputExt string) Task {
	return Task{
		InputPath: inputPath,
		OutputDir: outputDir,
		OutputExt: NormalizeExt(outputExt),
	}
}

// Name returns the base name of the input file.
func (t Task) Name() string {
	return filepath.Base(t.InputPath)
}

// Stem returns the input file name without its extension.
func (t Task) Stem() string {
	base := filepath.Base(t.InputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath returns <OutputDir>/<stem><OutputExt>.
func (t Task) OutputPath() string {
	return filepath.Join(t.OutputDir, t.Stem()+t.OutputExt)
}

// TaskSet is the ordered, read-only list of tasks for one run.
type TaskSet []Task

// Metadata is camera information read from a raw file's embedded EXIF.
// Every field is optional.
type Metadata struct {
	Make        string `json:"make,omitempty" yaml:"make,omitempty"`
	Model       string `json:"model,omitempty" yaml:"model,omitempty"`
	DateTime    string `json:"date_time,omitempty" yaml:"date_time,omitempty"`
	Orientation int    `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// IsZero reports whether no metadata field was found.
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Result is the outcome of converting one task. A worker creates exactly one
// Result per task.
type Result struct {
	Task     Task          `json:"task" yaml:"task"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Metadata *Metadata     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Succeeded builds a success result.
func Succeeded(t Task, d time.Duration) Result {
	return Result{Task: t, Outcome: OutcomeSuccess, Duration: d}
}

// Failed builds a failure result whose message names the input file.
func Failed(t Task, err error, d time.Duration) Result {
	return Result{
		Task:     t,
		Outcome:  OutcomeFailure,
		Message:  "Error processing " + t.Name() + ": " + err.Error(),
		Duration: d,
	}
}

// Skipped builds a result for a task whose output already existed.
func Skipped(t Task) Result {
	return Result{Task: t, Outcome: OutcomeSkipped, Message: "output already exists"}
}

// NormalizeExt trims, lower-cases, and adds a leading dot: "CR3" -> ".cr3".
// An empty or whitespace-only value stays empty.
func NormalizeExt(ext string) string {
	e := strings.ToLower(strings.TrimSpace(ext))
	if e == "" {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}
