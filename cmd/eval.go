package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tastingroom/winescore/internal/evalcmd"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Scoring and extraction evaluation tools",
		Long: `Evaluation tools for measuring blind-tasting scores and label extraction
accuracy over datasets.

Datasets are parquet or jsonl files, local or fetched over HTTP into a cache.
Each run writes aggregated JSON, a detailed text report and a YAML results file.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewTastingCmd())
	cmd.AddCommand(evalcmd.NewLabelsCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())
	cmd.AddCommand(evalcmd.NewConvertCmd())

	return cmd
}
