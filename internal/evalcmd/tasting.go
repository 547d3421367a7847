package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tastingroom/winescore/internal/config"
	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/eval/metrics"
	"github.com/tastingroom/winescore/internal/models"
	"github.com/tastingroom/winescore/internal/tasting"
)

func executeTasting(ctx context.Context, policy config.Policy, policyName string, opts Options) (*metrics.AggregateResults, error) {
	scorer, err := policy.TastingScorer(policyName)
	if err != nil {
		return nil, fmt.Errorf("failed to build tasting scorer: %w", err)
	}

	slog.Info("Starting tasting evaluation",
		"dataset", opts.DatasetPath,
		"sample_size", opts.SampleSize,
		"policy", scorer.Policy().Name)

	records, err := loadRecords[dataset.TastingRecord](ctx, opts)
	if err != nil {
		return nil, err
	}

	results := runPool(ctx, records, opts.Concurrency, func(ctx context.Context, record dataset.TastingRecord) metrics.EvaluationResult {
		return evaluateTasting(ctx, scorer, record)
	})

	dimensions := make([]string, 0, len(scorer.Policy().Weights))
	for _, w := range scorer.Policy().Weights {
		dimensions = append(dimensions, w.Dimension)
	}

	agg := saveOutputs(results, dimensions, "tasting", scorer.Policy().Name, opts)
	slog.Info("Evaluation complete")
	return agg, nil
}

// evaluateTasting scores one guess against its ground truth
func evaluateTasting(ctx context.Context, scorer *tasting.Scorer, record dataset.TastingRecord) metrics.EvaluationResult {
	startTime := time.Now()

	result := metrics.EvaluationResult{
		ID:      record.ID,
		Summary: summarizeWine(record.Actual),
	}

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Sprintf("evaluation canceled: %v", err)
		return result
	}

	if isBlankWine(record.Actual) {
		result.Error = "record has no ground truth wine"
		result.ProcessingTime = time.Since(startTime)
		slog.Warn("Skipping tasting record", "id", record.ID, "reason", result.Error)
		return result
	}

	scored := scorer.Score(record.Guess, record.Actual)
	result.Matches = scored.Details
	result.OverallScore = float64(scored.Breakdown.Overall)
	result.ProcessingTime = time.Since(startTime)

	slog.Debug("Scored tasting",
		"id", record.ID,
		"overall", scored.Breakdown.Overall,
		"scores", scored.Breakdown.Scores)

	return result
}

// summarizeWine renders the identifying fields of a wine for reports.
func summarizeWine(w models.WineRecord) string {
	parts := []string{w.Winery, w.Name}
	if w.Vintage != nil {
		parts = append(parts, fmt.Sprintf("%d", *w.Vintage))
	}
	parts = append(parts, w.Region, w.Country)
	return strings.Join(models.NonBlank(parts), ", ")
}

func isBlankWine(w models.WineRecord) bool {
	return summarizeWine(w) == "" &&
		!models.Present(w.WineType) &&
		len(models.NonBlank(w.GrapeVarieties)) == 0
}
