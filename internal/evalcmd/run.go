package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/eval/metrics"
	resultsutil "github.com/tastingroom/winescore/internal/eval/results"
)

// Options are the flags shared by the evaluation commands.
type Options struct {
	DatasetPath  string
	OutputJSON   string
	OutputReport string
	OutputDir    string // YAML results directory
	SampleSize   int
	Concurrency  int
	CacheDir     string
	Token        string
}

type evaluateFunc[T any] func(ctx context.Context, record T) metrics.EvaluationResult

// runPool evaluates records with at most concurrency in flight. Results come
// back in input order so output files are deterministic.
func runPool[T any](ctx context.Context, records []T, concurrency int, evaluate evaluateFunc[T]) []metrics.EvaluationResult {
	if concurrency < 1 {
		concurrency = 1
	}

	slog.Info("Processing records", "count", len(records), "concurrency", concurrency)

	results := make([]metrics.EvaluationResult, len(records))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record T) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Processing record", "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			results[idx] = evaluate(ctx, record)
		}(i, record)
	}

	wg.Wait()
	return results
}

// loadRecords resolves a local or remote dataset and loads a sample of it.
func loadRecords[T any](ctx context.Context, opts Options) ([]T, error) {
	downloader := dataset.NewDownloader(dataset.DownloadConfig{CacheDir: opts.CacheDir, Token: opts.Token})
	path, err := downloader.Resolve(ctx, opts.DatasetPath)
	if err != nil {
		return nil, err
	}

	loader := dataset.NewLoader[T](path)
	var records []T
	if opts.SampleSize > 0 {
		slog.Info("Loading sample from dataset", "path", path, "limit", opts.SampleSize)
		records, err = loader.LoadSample(opts.SampleSize)
	} else {
		slog.Info("Loading full dataset", "path", path)
		records, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	slog.Info("Dataset loaded", "records", len(records))
	return records, nil
}

// saveOutputs aggregates results, prints the summary and writes the JSON,
// text report and YAML files. Output failures are logged, not fatal.
func saveOutputs(results []metrics.EvaluationResult, dimensions []string, mode, policy string, opts Options) *metrics.AggregateResults {
	slog.Info("Aggregating results")
	aggregated := metrics.AggregateEvaluationResults(results, dimensions, mode, policy)

	aggregated.PrintSummary()

	slog.Info("Saving results", "json", opts.OutputJSON, "report", opts.OutputReport)

	if opts.OutputJSON != "" {
		if err := aggregated.SaveToJSON(opts.OutputJSON); err != nil {
			slog.Warn("Failed to save JSON results", "error", err)
		} else {
			fmt.Printf("\nResults saved to: %s\n", opts.OutputJSON)
		}
	}

	if opts.OutputReport != "" {
		if err := aggregated.SaveDetailedReport(opts.OutputReport); err != nil {
			slog.Warn("Failed to save detailed report", "error", err)
		} else {
			fmt.Printf("Detailed report saved to: %s\n", opts.OutputReport)
		}
	}

	yamlPath, err := resultsutil.SaveToYAML(opts.OutputDir, resultsutil.EvalConfig{
		Mode:        mode,
		Policy:      policy,
		DatasetPath: opts.DatasetPath,
		SampleSize:  opts.SampleSize,
		Concurrency: opts.Concurrency,
	}, aggregated.Results)
	if err != nil {
		slog.Warn("Failed to save YAML results", "error", err)
	} else {
		fmt.Printf("YAML results saved to: %s\n", yamlPath)
	}

	return aggregated
}
