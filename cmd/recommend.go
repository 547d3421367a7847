package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/evalcmd"
	"github.com/tastingroom/winescore/internal/models"
	"github.com/tastingroom/winescore/internal/recommend"
	"github.com/tastingroom/winescore/internal/storage"
)

func newRecommendCmd() *cobra.Command {
	var catalogPath string
	var ratingsPath string
	var profilePath string
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank catalog wines for a user",
		Long: `Rank the wines a user has not rated yet by their stated preferences and
the wines they rated highly. The top recommendation is explained.`,
		Example: `  winescore recommend --catalog wines.jsonl --ratings ratings.jsonl --user ana --profile ana.yaml --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := evalcmd.LoadPolicy(cmd)
			if err != nil {
				return err
			}
			scorer, err := policy.RecommendScorer()
			if err != nil {
				return err
			}

			cellar, err := loadCellar(catalogPath, ratingsPath)
			if err != nil {
				return err
			}

			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}

			candidates := cellar.Candidates(userID)
			history := cellar.History(userID, policy.HistoryLimit)
			slog.Debug("Ranking candidates", "user", userID, "candidates", len(candidates), "history", len(history))

			ranked, explanation := scorer.Rank(candidates, profile, history, limit)
			printRecommendations(cmd.OutOrStdout(), ranked, explanation)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Wines to rank (jsonl or parquet, required)")
	cmd.Flags().StringVar(&ratingsPath, "ratings", "", "User ratings (jsonl or parquet)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "User preference profile (YAML)")
	cmd.Flags().StringVar(&userID, "user", "", "User to recommend for (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recommendations (0 for all)")

	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// loadCellar fills a cellar from dataset files. Either path may be empty.
func loadCellar(catalogPath, ratingsPath string) (*storage.Cellar, error) {
	cellar := storage.New()

	if catalogPath != "" {
		wines, err := dataset.NewLoader[models.WineRecord](catalogPath).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		for _, wine := range wines {
			cellar.AddWine(wine)
		}
		slog.Info("Catalog loaded", "wines", len(wines))
	}

	if ratingsPath != "" {
		ratings, err := dataset.NewLoader[models.Rating](ratingsPath).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load ratings: %w", err)
		}
		skipped := 0
		for _, r := range ratings {
			if err := cellar.AddRating(r); err != nil {
				slog.Warn("Skipping rating", "user", r.UserID, "wine", r.WineID, "error", err)
				skipped++
			}
		}
		slog.Info("Ratings loaded", "ratings", len(ratings)-skipped, "skipped", skipped)
	}

	return cellar, nil
}

func loadProfile(path string) (models.Profile, error) {
	var profile models.Profile
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse profile: %w", err)
	}
	return profile, nil
}

func printRecommendations(w io.Writer, ranked []recommend.Candidate, explanation string) {
	for i, c := range ranked {
		name := c.Wine.Name
		if name == "" {
			name = c.Wine.ID
		}
		fmt.Fprintf(w, "%2d. %-40s %6.2f", i+1, name, c.Score)
		if c.Wine.Winery != "" {
			fmt.Fprintf(w, "  (%s)", c.Wine.Winery)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, explanation)
}
