package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/snapfind/internal/index"
	"github.com/Aman-CERP/snapfind/internal/output"
)

func newSearchCmd() *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "search <query> [dir]",
		Short: "Search an indexed directory",
		Long: `Search the index of a directory (default ".").

Terms match whole words, case-insensitively, in file paths and contents.
A term containing '*' is a filename pattern: "*.md" returns only
Markdown files, "src/*" only files under src.

If the index is missing or unreadable the directory is re-crawled in
memory for this search.`,
		Example: `  snapfind search "config loader"
  snapfind search "*.go" ./project
  snapfind search readme --format json --limit 5`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if err := validateQuery(query); err != nil {
				return err
			}

			if err := output.ValidateFormat(format); err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			p, err := loadProject(dirArg(args, 1), "")
			if err != nil {
				return err
			}

			engine, rebuilt, err := index.LoadOrBuild(cmd.Context(), index.NewRunner(nil), p.runCfg)
			if err != nil {
				return err
			}
			if rebuilt && format == output.FormatText {
				out.Warning("No usable index found; searched a fresh in-memory crawl. Run 'snapfind index' to save one.")
			}

			results, err := engine.Search(query)
			if err != nil {
				return err
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			return out.Results(query, results, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", output.FormatText, "Output format: text or json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 = limits.max_results)")

	return cmd
}
