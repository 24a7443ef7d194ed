// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert develops raw files and writes them in the target format.
// ConvertFile handles one task and never returns an error: failures become
// a Result. Batch fans a TaskSet out over a bounded worker pool and returns
// once every task has a result.
package convert

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/pdiddy/formatflip/internal/encode"
	"github.com/pdiddy/formatflip/internal/exifmeta"
	"github.com/pdiddy/formatflip/pkg/types"
)

// Decoder turns a raw file into an image. raw.Decoder satisfies it.
type Decoder interface {
	Decode(ctx context.Context, path string) (image.Image, error)
}

// Options tunes per-file behaviour.
type Options struct {
	// SkipExisting leaves a task alone when its output file already exists.
	SkipExisting bool

	// Metadata attaches EXIF camera metadata to each result.
	Metadata bool
}

// Converter pairs a decoder with an encoder.
type Converter struct {
	decoder  Decoder
	encoder  encode.Encoder
	opts     Options
	readMeta func(path string) (types.Metadata, error)
}

// New returns a Converter that decodes with d and encodes with e.
func New(d Decoder, e encode.Encoder, opts Options) *Converter {
	return &Converter{
		decoder:  d,
		encoder:  e,
		opts:     opts,
		readMeta: exifmeta.Read,
	}
}

// ConvertFile decodes task.InputPath and writes task.OutputPath(). The
// output directory must already exist. Decode and encode errors are
// returned as a failure Result naming the input file.
func (c *Converter) ConvertFile(ctx context.Context, task types.Task) types.Result {
	start := time.Now()
	out := task.OutputPath()

	if c.opts.SkipExisting {
		if _, err := os.Stat(out); err == nil {
			return types.Skipped(task)
		}
	}

	res := c.convert(ctx, task, out, start)
	if c.opts.Metadata {
		if md, err := c.readMeta(task.InputPath); err == nil && !md.IsZero() {
			res.Metadata = &md
		}
	}
	return res
}

func (c *Converter) convert(ctx context.Context, task types.Task, out string, start time.Time) types.Result {
	img, err := c.decoder.Decode(ctx, task.InputPath)
	if err != nil {
		return types.Failed(task, err, time.Since(start))
	}
	if img == nil {
		return types.Failed(task, fmt.Errorf("decoder returned no image"), time.Since(start))
	}

	if err := encode.WriteFile(out, img, c.encoder); err != nil {
		return types.Failed(task, err, time.Since(start))
	}
	return types.Succeeded(task, time.Since(start))
}
