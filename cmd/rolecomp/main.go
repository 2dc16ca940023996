package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rolecomp/internal/version"
)

// errDiagnostics signals that errors were already reported as diagnostics.
var errDiagnostics = errors.New("run finished with errors")

var rootCmd = &cobra.Command{
	Use:           "rolecomp",
	Short:         "Role composition over compiled type metadata",
	Long:          `rolecomp turns role classes into interface contracts and composes their members into the types that use them`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceCleanup != nil {
			traceCleanup()
			traceCleanup = nil
		}
	},
}

var traceCleanup func()

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(morphCmd, composeCmd, checkCmd, verifyCmd, versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show per module")
	pf.Int("jobs", 0, "modules processed in parallel (0 = GOMAXPROCS)")
	pf.String("trace", "", "trace output path (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
}

// main executes the root command. Any error exits with status 1; errors that
// were already reported as diagnostics are not printed again.
func main() {
	err := rootCmd.Execute()
	if traceCleanup != nil {
		traceCleanup()
	}
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "rolecomp: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q (auto|on|off)", colorFlag)
}
