// Package cmd implements the pcb-extract command line interface.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/extract"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// Exit codes of the pcb-extract tool.
const (
	exitOK          = 0
	exitBadArgs     = 2
	exitUnsupported = 3
	exitParseError  = 4
	exitIOError     = 5
)

var (
	outputPath    string
	formatTag     string
	includeTracks bool
	includeNets   bool
	pretty        bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "pcb-extract <INPUT>",
	Short: "Extract PCB design data to tool-independent JSON",
	Long: `pcb-extract reads a PCB design file (KiCad, EasyEDA, Eagle/Fusion360 or
Altium Designer) and emits a normalized JSON description of the board:
edges, footprints, pads, drawings and optionally tracks, zones and nets.

The format is detected from the file name and content; use --format to
override the detection.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExtract,
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	setupLogging()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pcb-extract: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write JSON to FILE instead of stdout")
	rootCmd.Flags().StringVarP(&formatTag, "format", "f", "", "input format: kicad|easyeda|eagle|altium")
	rootCmd.Flags().BoolVar(&includeTracks, "include-tracks", false, "include tracks and zones in the output")
	rootCmd.Flags().BoolVar(&includeNets, "include-nets", false, "include the net name list in the output")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print the JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose parser logging")
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func runExtract(cmd *cobra.Command, args []string) error {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	input := args[0]
	opts := pcb.ExtractOptions{
		IncludeTracks: includeTracks,
		IncludeNets:   includeNets,
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	var format extract.Format
	if formatTag != "" {
		format, err = extract.ParseFormat(formatTag)
	} else {
		format, err = extract.DetectFormat(input, data)
	}
	if err != nil {
		return err
	}

	result, err := extract.ExtractBytes(data, format, opts)
	if err != nil {
		return err
	}

	out, err := extract.EmitJSON(result, pretty)
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if outputPath != "" {
		return os.WriteFile(outputPath, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// exitCode maps the library error taxonomy onto the CLI exit codes.
func exitCode(err error) int {
	var malformed *pcb.MalformedError
	var schema *pcb.SchemaError
	switch {
	case errors.Is(err, pcb.ErrUnsupportedFormat):
		return exitUnsupported
	case errors.As(err, &malformed), errors.As(err, &schema),
		errors.Is(err, pcb.ErrTruncated), errors.Is(err, pcb.ErrInternalInvariant):
		return exitParseError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return exitIOError
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return exitIOError
	}
	return exitBadArgs
}
