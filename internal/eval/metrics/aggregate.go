package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tastingroom/winescore/internal/compare"
)

// EvaluationResult represents the outcome for a single dataset record
type EvaluationResult struct {
	ID             string
	Summary        string                   // short description for reports
	Matches        map[string]compare.Match // dimension -> comparison
	OverallScore   float64                  // 0 to 100
	ProcessingTime time.Duration
	Error          string // If scoring failed
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	// Dimension-level statistics, reported in Dimensions order
	Dimensions    []string
	FieldAccuracy map[string]*FieldStats

	// Overall, 0 to 100
	OverallAccuracy float64

	// Timing
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Detailed results
	Results []EvaluationResult

	// Metadata
	EvaluationDate time.Time
	Mode           string // "tasting" or "labels"
	Policy         string
	SampleSize     int
}

// FieldStats contains statistics for one scored dimension
type FieldStats struct {
	ExactMatches   int
	PartialMatches int
	NoMatches      int
	MissingFields  int
	AverageScore   float64
	Scores         []float64
}

// AggregateEvaluationResults aggregates multiple evaluation results over
// the given dimensions
func AggregateEvaluationResults(results []EvaluationResult, dimensions []string, mode, policy string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		Dimensions:     dimensions,
		FieldAccuracy:  make(map[string]*FieldStats, len(dimensions)),
		EvaluationDate: time.Now(),
		Mode:           mode,
		Policy:         policy,
		SampleSize:     len(results),
	}

	for _, dim := range dimensions {
		agg.FieldAccuracy[dim] = &FieldStats{Scores: []float64{}}
	}

	totalOverallScore := 0.0
	var totalDuration time.Duration
	var successDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		for _, dim := range dimensions {
			if match, ok := result.Matches[dim]; ok {
				aggregateFieldStats(agg.FieldAccuracy[dim], match)
			}
		}

		totalOverallScore += result.OverallScore
	}

	if agg.SuccessCount > 0 {
		for _, stats := range agg.FieldAccuracy {
			stats.AverageScore = calculateAverage(stats.Scores)
		}
		agg.OverallAccuracy = totalOverallScore / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	agg.TotalProcessingTime = totalDuration

	return agg
}

// aggregateFieldStats updates field statistics. Absence outcomes count as
// missing whatever they scored; otherwise the score decides.
func aggregateFieldStats(stats *FieldStats, match compare.Match) {
	stats.Scores = append(stats.Scores, float64(match.Score))

	switch {
	case match.Method == compare.MethodActualMissing,
		match.Method == compare.MethodExpectedMissing,
		match.Method == compare.MethodBothMissing:
		stats.MissingFields++
	case match.Score >= compare.Full:
		stats.ExactMatches++
	case match.Score <= compare.None:
		stats.NoMatches++
	default:
		stats.PartialMatches++
	}
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

// PrintSummary prints a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("WINESCORE %s EVALUATION SUMMARY\n", strings.ToUpper(a.Mode))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Printf("Policy: %s\n", a.Policy)
	fmt.Printf("Sample Size: %d records\n", a.SampleSize)
	fmt.Println()

	fmt.Println("PROCESSING STATISTICS")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Total Records: %d\n", a.TotalRecords)
	fmt.Printf("Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Printf("Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Printf("Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Printf("Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Println()

	fmt.Println("DIMENSION-LEVEL ACCURACY")
	fmt.Println(strings.Repeat("-", 70))
	for _, dim := range a.Dimensions {
		printFieldStats(dim, a.FieldAccuracy[dim])
	}
	fmt.Println()

	fmt.Println("OVERALL SCORE")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Overall Accuracy: %.2f / 100\n", a.OverallAccuracy)
	fmt.Println(strings.Repeat("=", 70))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// printFieldStats prints statistics for a single dimension
func printFieldStats(name string, stats *FieldStats) {
	if stats == nil {
		return
	}
	fmt.Printf("\n%s:\n", name)
	fmt.Printf("  Average Score: %.2f\n", stats.AverageScore)
	fmt.Printf("  Exact Matches: %d\n", stats.ExactMatches)
	fmt.Printf("  Partial Matches: %d\n", stats.PartialMatches)
	fmt.Printf("  No Matches: %d\n", stats.NoMatches)
	fmt.Printf("  Missing Fields: %d\n", stats.MissingFields)
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "WINESCORE %s EVALUATION DETAILED REPORT\n", strings.ToUpper(a.Mode))
	fmt.Fprintf(file, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Policy: %s\n", a.Policy)
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(file, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for i, result := range a.Results {
		fmt.Fprintf(file, "RECORD %d: %s\n", i+1, result.ID)
		fmt.Fprintf(file, "%s\n", dash)
		if result.Summary != "" {
			fmt.Fprintf(file, "Wine: %s\n", result.Summary)
		}
		fmt.Fprintf(file, "Processing Time: %s\n", result.ProcessingTime)

		if result.Error != "" {
			fmt.Fprintf(file, "ERROR: %s\n", result.Error)
		} else {
			fmt.Fprintf(file, "\nDimension Comparisons:\n")
			for _, dim := range a.Dimensions {
				match, ok := result.Matches[dim]
				if !ok {
					continue
				}
				fmt.Fprintf(file, "  %-15s %3d (%s) - Expected: %s, Actual: %s\n",
					dim+":", match.Score, match.Method, match.Expected, match.Actual)
			}
			fmt.Fprintf(file, "\nOverall Score: %.2f\n", result.OverallScore)
		}

		fmt.Fprintf(file, "\n%s\n\n", separator)
	}

	return nil
}

// LoadFromJSON reads results written by SaveToJSON
func LoadFromJSON(filepath string) (*AggregateResults, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var results AggregateResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}

	return &results, nil
}
