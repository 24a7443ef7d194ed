// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raw decodes camera raw files by running an external developer
// program (LibRaw's dcraw_emu or classic dcraw) that writes an 8-bit TIFF
// to stdout, then decoding that TIFF in process.
package raw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/pdiddy/formatflip/pkg/types"
)

// ErrNoDecoder means no developer program could be found on PATH.
var ErrNoDecoder = errors.New("no raw decoder available")

// maxStderr bounds how much of the developer's stderr ends up in an error.
const maxStderr = 256

// Decoder turns a raw file into an in-memory image.
type Decoder interface {
	// Name returns the developer program name ("dcraw_emu" or "dcraw").
	Name() string

	// Decode develops the raw file at path.
	Decode(ctx context.Context, path string) (image.Image, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// tool implements Decoder for one developer binary. dcraw and dcraw_emu
// differ only in how they are asked to stream a TIFF to stdout.
type tool struct {
	bin  string
	args func(path string) []string
	exec executor
}

func (t *tool) Name() string { return t.bin }

// Available reports whether the binary exists on PATH.
func (t *tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *tool) Decode(ctx context.Context, path string) (image.Image, error) {
	var stdout, stderr bytes.Buffer
	if err := t.exec.RunPiped(ctx, t.bin, t.args(path), &stdout, &stderr); err != nil {
		return nil, fmt.Errorf("running %s: %w%s", t.bin, err, stderrTail(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no image data%s", t.bin, stderrTail(stderr.Bytes()))
	}

	img, err := tiff.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", t.bin, err)
	}
	return img, nil
}

// stderrTail formats the last line of the developer's stderr for an error
// message, or returns "" when there is nothing useful.
func stderrTail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return ""
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return " (" + s + ")"
}

// newDcrawEmu uses LibRaw's sample program: -T writes TIFF, -w uses the
// camera white balance, -Z - sends the result to stdout.
func newDcrawEmu(exec executor) *tool {
	return &tool{
		bin:  string(types.DecoderDcrawEmu),
		args: func(path string) []string { return []string{"-T", "-w", "-Z", "-", path} },
		exec: exec,
	}
}

// newDcraw uses classic dcraw: -c writes to stdout, -T selects TIFF.
func newDcraw(exec executor) *tool {
	return &tool{
		bin:  string(types.DecoderDcraw),
		args: func(path string) []string { return []string{"-c", "-T", "-w", path} },
		exec: exec,
	}
}

var defaultExec = &osExecutor{}

// Detect returns the decoder for name. DecoderAuto tries dcraw_emu first
// and falls back to dcraw.
func Detect(name types.DecoderName) (Decoder, error) {
	return detect(defaultExec, name)
}

func detect(exec executor, name types.DecoderName) (Decoder, error) {
	var candidates []*tool
	switch name {
	case types.DecoderDcrawEmu:
		candidates = []*tool{newDcrawEmu(exec)}
	case types.DecoderDcraw:
		candidates = []*tool{newDcraw(exec)}
	case types.DecoderAuto, "":
		candidates = []*tool{newDcrawEmu(exec), newDcraw(exec)}
	default:
		return nil, fmt.Errorf("unknown decoder %q", name)
	}

	bins := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Available() {
			return c, nil
		}
		bins = append(bins, c.bin)
	}
	return nil, fmt.Errorf("%w: %s not found on PATH", ErrNoDecoder, strings.Join(bins, " or "))
}
