// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package console prints the coloured status lines users see: info for
// start and progress, success for completion, warning for empty results and
// skips, error for per-file failures.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// Printer writes one status line per call. It is safe for concurrent use.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// New returns a Printer for f. Colour is used only when f is a terminal and
// noColor is false; on Windows the writer translates ANSI sequences.
func New(f *os.File, noColor bool) *Printer {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &Printer{
		w:     colorable.NewColorable(f),
		color: tty && !noColor,
	}
}

// NewWriter returns a Printer writing to w, coloured when color is true.
func NewWriter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// Info prints a start or progress line.
func (p *Printer) Info(format string, args ...any) { p.line(ansiGreen, format, args...) }

// Success prints a completion line.
func (p *Printer) Success(format string, args ...any) { p.line(ansiCyan, format, args...) }

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) { p.line(ansiYellow, format, args...) }

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) { p.line(ansiRed, format, args...) }

// Plain prints an uncoloured line.
func (p *Printer) Plain(format string, args ...any) { p.line("", format, args...) }

func (p *Printer) line(code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.color && code != "" {
		fmt.Fprintln(p.w, code+msg+ansiReset)
		return
	}
	fmt.Fprintln(p.w, msg)
}
