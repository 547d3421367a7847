package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tastingroom/winescore/internal/config"
	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/eval/metrics"
	"github.com/tastingroom/winescore/internal/extract"
	"github.com/tastingroom/winescore/internal/models"
	"github.com/tastingroom/winescore/internal/ocr"
)

// recognizer reads text off a label image.
type recognizer interface {
	RecognizeFile(ctx context.Context, imagePath string) (ocr.Recognition, error)
}

// labelEvaluator scores extractions against catalogued label fields. With a
// recognizer set, records that carry an image are recognized first.
type labelEvaluator struct {
	extractor  *extract.Extractor
	weights    extract.ConfidenceWeights
	recognizer recognizer
	imageRoot  string // relative image paths resolve against this
}

func executeLabels(ctx context.Context, policy config.Policy, opts Options, recognize bool, provider, model string) (*metrics.AggregateResults, error) {
	slog.Info("Starting label evaluation",
		"dataset", opts.DatasetPath,
		"sample_size", opts.SampleSize,
		"recognize", recognize)

	evaluator := &labelEvaluator{
		extractor: policy.Extractor(nil),
		weights:   policy.Confidence,
	}

	policyName := "text"
	if recognize {
		service, err := ocr.NewServiceFromEnv(provider, model)
		if err != nil {
			return nil, fmt.Errorf("failed to create OCR service: %w", err)
		}
		evaluator.recognizer = service
		policyName = "ocr"
		if !dataset.IsRemote(opts.DatasetPath) {
			evaluator.imageRoot = filepath.Dir(opts.DatasetPath)
		}
	}

	records, err := loadRecords[dataset.LabelRecord](ctx, opts)
	if err != nil {
		return nil, err
	}

	results := runPool(ctx, records, opts.Concurrency, evaluator.evaluate)

	agg := saveOutputs(results, metrics.LabelDimensions, "labels", policyName, opts)
	slog.Info("Evaluation complete")
	return agg, nil
}

func (e *labelEvaluator) evaluate(ctx context.Context, record dataset.LabelRecord) metrics.EvaluationResult {
	startTime := time.Now()

	result := metrics.EvaluationResult{
		ID:      record.ID,
		Summary: summarizeLabel(record.Expected),
	}

	tokens, fullText := record.Tokens, record.FullText
	if e.recognizer != nil && record.ImagePath != "" {
		rec, err := e.recognizer.RecognizeFile(ctx, e.resolveImage(record.ImagePath))
		if err != nil {
			result.Error = fmt.Sprintf("OCR failed: %v", err)
			result.ProcessingTime = time.Since(startTime)
			slog.Error("Label recognition failed", "id", record.ID, "error", err)
			return result
		}
		tokens, fullText = rec.Tokens, rec.FullText
	}

	if len(tokens) == 0 && strings.TrimSpace(fullText) == "" {
		result.Error = "record has no label text"
		result.ProcessingTime = time.Since(startTime)
		return result
	}

	extracted := e.extractor.Extract(tokens, fullText)
	comparison := metrics.CompareLabel(record.Expected, extracted.Fields, e.weights)

	result.Matches = comparison.Matches
	result.OverallScore = comparison.OverallScore
	result.ProcessingTime = time.Since(startTime)

	slog.Debug("Scored label",
		"id", record.ID,
		"overall", fmt.Sprintf("%.2f", comparison.OverallScore),
		"confidence", extracted.Fields.Confidence)

	return result
}

func (e *labelEvaluator) resolveImage(path string) string {
	if filepath.IsAbs(path) || e.imageRoot == "" {
		return path
	}
	return filepath.Join(e.imageRoot, path)
}

func summarizeLabel(f dataset.LabelFields) string {
	parts := []string{f.Winery, f.WineName}
	if f.Vintage != nil {
		parts = append(parts, fmt.Sprintf("%d", *f.Vintage))
	}
	parts = append(parts, f.Region)
	return strings.Join(models.NonBlank(parts), ", ")
}
