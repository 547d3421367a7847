package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tastingroom/winescore/internal/evalcmd"
	"github.com/tastingroom/winescore/internal/models"
)

func newBlindCmd() *cobra.Command {
	var guessPath string
	var actualPath string
	var policyName string

	cmd := &cobra.Command{
		Use:   "blind",
		Short: "Score a blind-tasting guess against the wine poured",
		Example: `  winescore blind --guess guess.yaml --actual wine.yaml
  winescore blind --guess guess.yaml --actual wine.yaml --policy-name utility`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := evalcmd.LoadPolicy(cmd)
			if err != nil {
				return err
			}
			scorer, err := policy.TastingScorer(policyName)
			if err != nil {
				return err
			}

			var guess models.Guess
			if err := readYAML(guessPath, &guess); err != nil {
				return err
			}
			var actual models.WineRecord
			if err := readYAML(actualPath, &actual); err != nil {
				return err
			}

			data, err := yaml.Marshal(scorer.Score(guess, actual))
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&guessPath, "guess", "", "Guess as YAML (required)")
	cmd.Flags().StringVar(&actualPath, "actual", "", "Actual wine as YAML (required)")
	cmd.Flags().StringVar(&policyName, "policy-name", "", "Built-in tasting policy (canonical or utility); overrides the policy file")

	_ = cmd.MarkFlagRequired("guess")
	_ = cmd.MarkFlagRequired("actual")

	return cmd
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
