package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tastingroom/winescore/internal/evalcmd"
)

func newCorrectCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Fix known mis-transcriptions of wine terms in a voice note",
		Example: `  winescore correct --text "notes of cherry, a classic pino noir"
  echo "cab sav from napa" | winescore correct`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := evalcmd.LoadPolicy(cmd)
			if err != nil {
				return err
			}

			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read transcript: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}

			fmt.Fprintln(cmd.OutOrStdout(), policy.Corrector().Correct(text))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Transcript to correct (default: stdin)")

	return cmd
}
