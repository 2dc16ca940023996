package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rolecomp/internal/diag"
	"rolecomp/internal/diagfmt"
	"rolecomp/internal/driver"
	"rolecomp/internal/loader"
	"rolecomp/internal/trace"
)

var morphCmd = &cobra.Command{
	Use:   "morph [module...]",
	Short: "Turn role classes into interface contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, driver.ModeMorph)
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose [module...]",
	Short: "Morph roles and compose them into every type that uses them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, driver.ModeCompose)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [module...]",
	Short: "Report composition problems without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, driver.ModeCheck)
	},
}

func init() {
	for _, c := range []*cobra.Command{morphCmd, composeCmd, checkCmd, verifyCmd} {
		c.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
		c.Flags().String("self-type", "", "name of the self-type generic parameter of roles")
		c.Flags().Bool("notes", true, "show diagnostic notes")
		c.Flags().Bool("fullpath", false, "show absolute paths in diagnostics")
	}
	for _, c := range []*cobra.Command{morphCmd, composeCmd, verifyCmd} {
		c.Flags().String("out", "", "write the result: a .mp/.toml/.yaml file, or a directory when several modules run")
	}
}

func runPipeline(cmd *cobra.Command, args []string, mode driver.Mode) error {
	settings, err := resolveSettings(cmd, args, mode)
	if err != nil {
		return err
	}
	results, err := driver.RunFiles(cmd.Context(), settings.paths, settings.driver)
	if err != nil {
		return err
	}
	if _, err := writeOutputs(cmd, results); err != nil {
		return err
	}
	return report(cmd, settings, results)
}

// writeOutputs stores committed modules under --out and returns the written
// paths by module index.
func writeOutputs(cmd *cobra.Command, results []*driver.ModuleResult) (map[int]string, error) {
	f := cmd.Flags().Lookup("out")
	if f == nil || f.Value.String() == "" {
		return nil, nil
	}
	out := f.Value.String()
	written := make(map[int]string, len(results))
	single := len(results) == 1 && !strings.HasSuffix(out, string(filepath.Separator))
	if single {
		if _, err := loader.FormatOf(out); err != nil {
			single = false
		}
	}
	for i, res := range results {
		if !res.Committed {
			continue
		}
		path := out
		if !single {
			path = driver.OutputPath(out, res, ".mp")
		}
		digest, err := driver.WriteOutput(res, path)
		if err != nil {
			return nil, err
		}
		trace.Point(trace.FromContext(cmd.Context()), trace.ScopeDriver, "write", path, 0,
			map[string]string{"digest": digest.String()})
		written[i] = path
	}
	return written, nil
}

func report(cmd *cobra.Command, settings runSettings, results []*driver.ModuleResult) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	notes, err := cmd.Flags().GetBool("notes")
	if err != nil {
		return err
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return err
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	color, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := false
	for _, res := range results {
		res.Bag.Sort()
		if res.Bag.HasErrors() || !res.Success() {
			failed = true
		}
		switch format {
		case "pretty":
			if len(results) > 1 && res.Bag.Len() > 0 {
				fmt.Fprintf(w, "== %s\n", res.Path)
			}
			diagfmt.Pretty(w, res.Bag, diagfmt.PrettyOpts{
				Color:     color,
				PathMode:  pathMode,
				BaseDir:   settings.baseDir,
				ShowNotes: notes,
				Summary:   true,
			})
		case "short":
			diagfmt.Short(w, res.Bag, diagfmt.PrettyOpts{PathMode: pathMode, BaseDir: settings.baseDir})
		case "json":
			name := res.Path
			if res.Module != nil {
				name = res.Module.Name
			}
			if err := diagfmt.JSON(w, name, res.Bag, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: settings.baseDir, IncludeNotes: notes}); err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
		if res.Dropped > 0 && format != "json" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d more diagnostics not shown (--max-diagnostics)\n", res.Path, res.Dropped)
		}
	}
	if failed {
		return errDiagnostics
	}
	return nil
}

// mergeInto appends extra diagnostics to the module's bag, growing it if the
// limit was reached.
func mergeInto(res *driver.ModuleResult, extra *diag.Result) {
	res.Result.AddChild(extra)
	more := diag.NewBag(extra.Len())
	more.AddAll(extra.Diagnostics())
	res.Bag.Merge(more)
}
