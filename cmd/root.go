package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "winescore",
		Short: "Wine label extraction, blind-tasting scoring and recommendations",
		Long: `Winescore reads wine labels, scores blind-tasting guesses against the wine
that was poured, and ranks wines for a user from their preferences and ratings.

Scoring weights and vocabularies come from a YAML policy file given with
--policy; without one the built-in defaults are used.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	cmd.PersistentFlags().String("policy", "", "Path to a YAML scoring policy")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newBlindCmd())
	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newCorrectCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
