package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rolecomp/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat string
	versionFull   bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include commit hash and build date")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the rolecomp version",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), versionFull)
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), versionFull)
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func renderVersionPretty(out io.Writer, full bool) {
	fmt.Fprintf(out, "rolecomp %s\n", version.Version)
	if full {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{Tool: "rolecomp", Version: version.Plain()}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
