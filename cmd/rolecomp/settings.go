package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rolecomp/internal/driver"
	"rolecomp/internal/project"
	"rolecomp/internal/verify"
)

const noManifestMessage = "no rolecomp.toml found\nplease name the module descriptions explicitly, e.g.:\n  rolecomp compose path/to/module.toml"

// runSettings merges rolecomp.toml with command-line flags. Flags win.
type runSettings struct {
	paths    []string
	baseDir  string
	driver   driver.Options
	verifier verify.Verifier
}

func resolveSettings(cmd *cobra.Command, args []string, mode driver.Mode) (runSettings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return runSettings{}, err
	}
	s := runSettings{baseDir: cwd, driver: driver.Options{Mode: mode}}

	manifest, found, err := project.LoadManifest(cwd)
	if err != nil {
		return runSettings{}, err
	}
	if found {
		s.baseDir = manifest.Root
		cfg := manifest.Config
		s.driver.SelfTypeParam = cfg.Compose.SelfTypeParam
		s.driver.MaxDiagnostics = cfg.Compose.MaxDiagnostics
		s.verifier = verify.Verifier{Command: cfg.Verify.Command, Args: cfg.Verify.Args, Timeout: cfg.Verify.Timeout.Duration}
	}

	switch {
	case len(args) > 0:
		s.paths = args
	case found:
		if s.paths, err = manifest.ModulePaths(); err != nil {
			return runSettings{}, err
		}
		if len(s.paths) == 0 {
			return runSettings{}, fmt.Errorf("%s: [package].modules is empty", manifest.Path)
		}
	default:
		return runSettings{}, errors.New(noManifestMessage)
	}

	root := cmd.Root().PersistentFlags()
	if root.Changed("max-diagnostics") || !found || s.driver.MaxDiagnostics == 0 {
		if s.driver.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return runSettings{}, err
		}
	}
	if s.driver.Jobs, err = root.GetInt("jobs"); err != nil {
		return runSettings{}, err
	}
	if s.driver.EnableTimings, err = root.GetBool("timings"); err != nil {
		return runSettings{}, err
	}
	if f := cmd.Flags().Lookup("self-type"); f != nil && f.Changed {
		s.driver.SelfTypeParam = f.Value.String()
	}
	if f := cmd.Flags().Lookup("verifier"); f != nil && f.Changed {
		s.verifier.Command = f.Value.String()
	}
	if f := cmd.Flags().Lookup("verifier-timeout"); f != nil && f.Changed {
		if s.verifier.Timeout, err = time.ParseDuration(f.Value.String()); err != nil {
			return runSettings{}, fmt.Errorf("invalid --verifier-timeout: %w", err)
		}
	}
	if mode, _ := root.GetString("trace-mode"); mode == "ring" || mode == "both" {
		s.driver.CrashDump = cmd.ErrOrStderr()
	}
	return s, nil
}
