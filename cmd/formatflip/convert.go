// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formatflip/internal/console"
	"github.com/pdiddy/formatflip/internal/convert"
	"github.com/pdiddy/formatflip/internal/encode"
	"github.com/pdiddy/formatflip/internal/journal"
	"github.com/pdiddy/formatflip/internal/raw"
	"github.com/pdiddy/formatflip/internal/report"
	"github.com/pdiddy/formatflip/internal/scan"
	"github.com/pdiddy/formatflip/pkg/types"
)

// detectDecoder is replaced in tests.
var detectDecoder = func(name types.DecoderName) (raw.Decoder, error) {
	return raw.Detect(name)
}

func init() {
	f := rootCmd.Flags()
	f.String("input-ext", types.DefaultInputExt, "input file extension (used when INPUT_PATH is a directory)")
	f.String("output-ext", types.DefaultOutputExt, fmt.Sprintf("output file extension, one of %v", encode.Extensions()))
	f.Int("threads", 0, "number of worker threads (default: CPU count)")
	f.Int("quality", types.DefaultQuality, "JPEG quality 1-100 (also used for PDF output)")
	f.String("decoder", string(types.DefaultDecoder), "raw developer: auto, dcraw_emu, or dcraw")
	f.Bool("skip-existing", false, "skip files whose output already exists")
	f.String("report", "", "write a YAML run report to this path")

	bindFlags(f, "input-ext", "output-ext", "threads", "quality", "decoder", "skip-existing", "report")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := types.Config{
		InputPath:    args[0],
		OutputDir:    args[1],
		InputExt:     viper.GetString("input-ext"),
		OutputExt:    viper.GetString("output-ext"),
		Threads:      viper.GetInt("threads"),
		Quality:      viper.GetInt("quality"),
		Decoder:      types.DecoderName(viper.GetString("decoder")),
		SkipExisting: viper.GetBool("skip-existing"),
		ReportPath:   viper.GetString("report"),
		JournalPath:  viper.GetString("journal"),
	}
	return convertRun(cmd.Context(), cfg, newPrinter())
}

// convertRun validates cfg, enumerates tasks, converts them, and records
// the run. Configuration problems abort before any conversion; per-file
// failures are reported and turn into a non-nil error at the end.
func convertRun(ctx context.Context, cfg types.Config, p *console.Printer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		p.Error("Invalid configuration: %v", err)
		return reportedError{err}
	}

	enc, err := encode.ForExt(cfg.OutputExt, encode.Options{Quality: cfg.Quality})
	if err != nil {
		p.Error("Invalid output extension: %v", err)
		return reportedError{err}
	}

	tasks, err := scan.Tasks(cfg.InputPath, cfg.InputExt, cfg.OutputDir, cfg.OutputExt)
	switch {
	case errors.Is(err, scan.ErrNoFiles):
		p.Warn("No raw files found in the input directory!")
		return reportedError{err}
	case errors.Is(err, scan.ErrInvalidInput):
		p.Error("Invalid input path! Provide a valid file or directory.")
		return reportedError{err}
	case err != nil:
		p.Error("%v", err)
		return reportedError{err}
	}

	dec, err := detectDecoder(cfg.Decoder)
	if err != nil {
		p.Error("%v", err)
		return reportedError{err}
	}
	log.Debug().Str("decoder", dec.Name()).Int("tasks", len(tasks)).Msg("decoder selected")

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		p.Error("Cannot create output directory %s: %v", cfg.OutputDir, err)
		return reportedError{err}
	}

	if fi, statErr := os.Stat(cfg.InputPath); statErr == nil && !fi.IsDir() {
		p.Info("Processing single file: %s", tasks[0].Name())
	} else {
		p.Info("Using %d threads to convert %d files.", cfg.Workers(), len(tasks))
	}

	conv := convert.New(dec, enc, convert.Options{
		SkipExisting: cfg.SkipExisting,
		Metadata:     cfg.ReportPath != "" || cfg.JournalPath != "",
	})

	started := time.Now()
	result := conv.Batch(ctx, tasks, cfg.Threads, func(r types.Result) {
		switch r.Outcome {
		case types.OutcomeSuccess:
			p.Plain("converted: %s -> %s", r.Task.Name(), r.Task.OutputPath())
		case types.OutcomeSkipped:
			p.Warn("skipped:   %s (%s)", r.Task.Name(), r.Message)
		default:
			p.Error("%s", r.Message)
		}
	})

	run := types.Run{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: started.Add(result.Elapsed),
		InputPath:  cfg.InputPath,
		OutputDir:  cfg.OutputDir,
		InputExt:   cfg.InputExt,
		OutputExt:  cfg.OutputExt,
		Decoder:    dec.Name(),
		Workers:    result.Workers,
		Converted:  result.Converted,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		Results:    result.Results,
	}

	p.Plain("\n%s", result.Summary())

	if err := recordRun(ctx, cfg, run); err != nil {
		p.Error("%v", err)
		return reportedError{err}
	}

	if result.HasFailures() {
		err := fmt.Errorf("%d file(s) failed conversion", result.Failed)
		p.Warn("Processing completed with %d failure(s). Converted images saved in %s", result.Failed, cfg.OutputDir)
		return reportedError{err}
	}
	p.Success("Processing completed. Converted images saved in %s", cfg.OutputDir)
	return nil
}

// recordRun writes the optional report and journal entry.
func recordRun(ctx context.Context, cfg types.Config, run types.Run) error {
	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, run); err != nil {
			return err
		}
		log.Debug().Str("path", cfg.ReportPath).Msg("report written")
	}

	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("opening journal %s: %w", cfg.JournalPath, err)
		}
		defer store.Close()
		if err := store.Record(ctx, run); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		log.Debug().Str("run", run.ID).Str("journal", cfg.JournalPath).Msg("run recorded")
	}
	return nil
}
