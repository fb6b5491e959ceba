package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/pkg/version"
)

// versionReport adds the index format this binary reads and writes.
type versionReport struct {
	version.BuildInfo
	IndexFormat string `json:"index_format"`
}

func newVersionCmd() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the snapfind version, build stamp and the index file format it uses.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			report := versionReport{
				BuildInfo:   version.Get(),
				IndexFormat: fmt.Sprintf("%s v%d", search.Magic, search.Version),
			}

			switch {
			case short:
				_, err := fmt.Fprintln(w, report.Version)
				return err
			case asJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err := fmt.Fprintf(w, "%s\nindex format: %s\n", report.BuildInfo, report.IndexFormat)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Output only the version number")

	return cmd
}
