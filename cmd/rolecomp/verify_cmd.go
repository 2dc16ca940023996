package main

import (
	"os"

	"github.com/spf13/cobra"

	"rolecomp/internal/driver"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [module...]",
	Short: "Compose modules and run the external verifier on the result",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().String("verifier", "", "verifier command (overrides [verify].command)")
	verifyCmd.Flags().String("verifier-timeout", "", "verifier timeout, e.g. 30s (overrides [verify].timeout)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd, args, driver.ModeCompose)
	if err != nil {
		return err
	}
	results, err := driver.RunFiles(cmd.Context(), settings.paths, settings.driver)
	if err != nil {
		return err
	}

	written, err := writeOutputs(cmd, results)
	if err != nil {
		return err
	}
	if written == nil {
		// без --out пишем снимки во временный каталог
		tmp, err := os.MkdirTemp("", "rolecomp-verify-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		written = make(map[int]string, len(results))
		for i, res := range results {
			if !res.Committed {
				continue
			}
			path := driver.OutputPath(tmp, res, ".mp")
			if _, err := driver.WriteOutput(res, path); err != nil {
				return err
			}
			written[i] = path
		}
	}

	for i, res := range results {
		path, ok := written[i]
		if !ok {
			continue
		}
		vres, err := settings.verifier.Run(cmd.Context(), path)
		if err != nil {
			return err
		}
		mergeInto(res, vres)
	}
	return report(cmd, settings, results)
}
