// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the formatflip CLI. The root command
// converts a raw file or a directory of raw files; history and version are
// subcommands.
package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/formatflip/internal/console"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts raw images. It is the only command most users run.
var rootCmd = &cobra.Command{
	Use:   "formatflip INPUT_PATH OUTPUT_DIR",
	Short: "Convert camera raw images to PNG, JPEG, TIFF, and other formats",
	Long: `formatflip develops camera raw files (CR3, CR2, NEF, ARW, DNG, ...) with an
external dcraw-compatible program and writes them as ordinary images.

INPUT_PATH is a single raw file or a directory. For a directory, every file
directly inside it whose extension matches --input-ext is converted, in
parallel across --threads workers. OUTPUT_DIR is created if missing.

The process exits non-zero when the input is invalid, when a directory has
no matching files, or when any file fails to convert.`,
	Example: `  formatflip photo.cr3 out --output-ext .jpg
  formatflip ~/raw ~/converted --input-ext .nef --threads 4`,
	Args:              cobra.ExactArgs(2),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./formatflip.yaml or ~/.config/formatflip/formatflip.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable coloured output")
	rootCmd.PersistentFlags().String("journal", "", "SQLite database recording conversion runs")

	bindFlags(rootCmd.PersistentFlags(), "verbose", "no-color", "journal")
}

// bindFlags makes each named flag the source of the matching viper key.
func bindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = viper.BindPFlag(name, fs.Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("formatflip")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "formatflip"))
		}
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// configureEnv maps FORMATFLIP_OUTPUT_EXT and friends onto config keys.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("FORMATFLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func setupLogging(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    viper.GetBool("no-color"),
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if viper.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return nil
}

func newPrinter() *console.Printer {
	return console.New(os.Stdout, viper.GetBool("no-color"))
}

// reportedError marks an error already shown to the user as a status line.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

func main() {
	if err := rootCmd.Execute(); err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			newPrinter().Error("Error: %v", err)
		}
		os.Exit(1)
	}
}
