package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/tastingroom/winescore/internal/eval/metrics"
)

func executeReport(w io.Writer, resultsPath, format string, threshold int) error {
	results, err := metrics.LoadFromJSON(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(w, results, threshold)
	case "json":
		return printJSONReport(w, results)
	case "csv":
		return printCSVReport(w, results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// printTextReport prints every record, and for each one the dimensions that
// scored below threshold.
func printTextReport(w io.Writer, results *metrics.AggregateResults, threshold int) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Winescore %s Evaluation Report\n", results.Mode)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Policy:   %s\n", results.Policy)
	fmt.Fprintf(w, "Records:  %d (%d failed)\n", results.TotalRecords, results.FailureCount)
	fmt.Fprintf(w, "Accuracy: %.2f / 100\n", results.OverallAccuracy)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Dimension Averages:")
	for _, dim := range results.Dimensions {
		if stats := results.FieldAccuracy[dim]; stats != nil {
			fmt.Fprintf(w, "  %s: %.2f\n", dim, stats.AverageScore)
		}
	}

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")

	for i, result := range results.Results {
		fmt.Fprintf(w, "\n[%d] Record ID: %s\n", i+1, result.ID)
		if result.Summary != "" {
			fmt.Fprintf(w, "  Wine: %s\n", result.Summary)
		}

		if result.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", result.Error)
			continue
		}

		fmt.Fprintf(w, "  Overall Score: %.2f\n", result.OverallScore)

		header := false
		for _, dim := range results.Dimensions {
			match, ok := result.Matches[dim]
			if !ok || match.Score >= threshold {
				continue
			}
			if !header {
				fmt.Fprintln(w, "  Significant Differences:")
				header = true
			}
			fmt.Fprintf(w, "    %s (%d, %s):\n", dim, match.Score, match.Method)
			fmt.Fprintf(w, "      Expected: %s\n", truncate(match.Expected, 80))
			fmt.Fprintf(w, "      Actual:   %s\n", truncate(match.Actual, 80))
		}
	}

	return nil
}

func printJSONReport(w io.Writer, results *metrics.AggregateResults) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func printCSVReport(w io.Writer, results *metrics.AggregateResults) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Summary", "Overall Score", "Error"}
	for _, dim := range results.Dimensions {
		header = append(header, "Score_"+dim)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results.Results {
		row := []string{result.ID, result.Summary}

		if result.Error != "" {
			row = append(row, "0", result.Error)
		} else {
			row = append(row, fmt.Sprintf("%.2f", result.OverallScore), "")
		}

		for _, dim := range results.Dimensions {
			if match, ok := result.Matches[dim]; ok && result.Error == "" {
				row = append(row, strconv.Itoa(match.Score))
			} else {
				row = append(row, "")
			}
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
