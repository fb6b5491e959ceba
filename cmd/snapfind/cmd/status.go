package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/snapfind/internal/search"
	"github.com/Aman-CERP/snapfind/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Show index status for a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(dirArg(args, 0), "")
			if err != nil {
				return err
			}

			info := collectStatus(p)
			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), !ui.IsTTY(cmd.OutOrStdout()) || ui.DetectNoColor())
			if jsonOutput {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")

	return cmd
}

func collectStatus(p *project) ui.StatusInfo {
	info := ui.StatusInfo{
		RootDir:      p.root,
		IndexPath:    p.runCfg.IndexPath,
		State:        ui.StateMissing,
		Profile:      p.cfg.Profile,
		MaxDocuments: p.limits.MaxDocuments,
		MaxFiles:     p.limits.MaxFiles,
		MaxDepth:     p.limits.MaxDepth,
	}

	stat, err := os.Stat(p.runCfg.IndexPath)
	if err != nil {
		return info
	}
	info.IndexSize = stat.Size()
	info.LastIndexed = stat.ModTime()

	engine, err := search.Load(p.runCfg.IndexPath, p.limits)
	if err != nil {
		info.State = ui.StateError
		info.Error = err.Error()
		return info
	}
	info.State = ui.StateReady
	info.Documents = engine.Len()
	return info
}
