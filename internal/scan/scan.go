// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan turns an input path into the set of conversion tasks.
// A single file yields exactly one task; a directory yields one task per
// direct entry whose extension matches the filter, case-insensitively.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/formatflip/pkg/types"
)

var (
	// ErrInvalidInput means the input path is neither a file nor a directory.
	ErrInvalidInput = errors.New("invalid input path")

	// ErrNoFiles means a directory contained no file matching the filter.
	ErrNoFiles = errors.New("no matching files found")

	// ErrOutputCollision means two inputs would write the same output file.
	ErrOutputCollision = errors.New("output file collision")
)

// Tasks enumerates inputPath. inputExt is only consulted for directories.
func Tasks(inputPath, inputExt, outputDir, outputExt string) (types.TaskSet, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, inputPath, err)
	}

	switch {
	case info.Mode().IsRegular():
		return types.TaskSet{types.NewTask(inputPath, outputDir, outputExt)}, nil
	case info.IsDir():
		return dirTasks(inputPath, inputExt, outputDir, outputExt)
	default:
		return nil, fmt.Errorf("%w: %s is not a regular file or directory", ErrInvalidInput, inputPath)
	}
}

// Files lists the direct entries of dir whose extension matches ext.
// Sub-directories and AppleDouble "._" companions are skipped.
func Files(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	want := types.NormalizeExt(ext)
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "._") {
			continue
		}
		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != want {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

func dirTasks(dir, inputExt, outputDir, outputExt string) (types.TaskSet, error) {
	files, err := Files(dir, inputExt)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoFiles, types.NormalizeExt(inputExt), dir)
	}

	tasks := make(types.TaskSet, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, f := range files {
		t := types.NewTask(f, outputDir, outputExt)
		out := t.OutputPath()
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%w: %s and %s both map to %s",
				ErrOutputCollision, filepath.Base(prev), t.Name(), out)
		}
		seen[out] = f
		tasks = append(tasks, t)
	}
	return tasks, nil
}
