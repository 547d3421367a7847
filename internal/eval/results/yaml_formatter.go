package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tastingroom/winescore/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// DefaultDir is where evaluation YAML files are written.
const DefaultDir = "evals"

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Mode        string `yaml:"mode"`
	Policy      string `yaml:"policy"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Concurrency int    `yaml:"concurrency"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier   string            `yaml:"identifier"`
	Summary      string            `yaml:"summary,omitempty"`
	OverallScore float64           `yaml:"overallscore"`
	FieldScores  map[string]int    `yaml:"fieldscores"`
	FieldMethods map[string]string `yaml:"fieldmethods"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// BuildSpec converts evaluation results, skipping failed records.
func BuildSpec(config EvalConfig, results []metrics.EvaluationResult) EvalSpec {
	spec := EvalSpec{
		Config:  config,
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		if r.Error != "" {
			continue // Skip failed evaluations
		}

		evalResult := EvalResult{
			Identifier:   r.ID,
			Summary:      r.Summary,
			OverallScore: r.OverallScore,
			FieldScores:  make(map[string]int, len(r.Matches)),
			FieldMethods: make(map[string]string, len(r.Matches)),
		}
		for dim, match := range r.Matches {
			evalResult.FieldScores[dim] = match.Score
			evalResult.FieldMethods[dim] = match.Method
		}

		spec.Results = append(spec.Results, evalResult)
	}

	return spec
}

// SaveToYAML writes evaluation results to a timestamped YAML file in dir
// and returns its path.
func SaveToYAML(dir string, config EvalConfig, results []metrics.EvaluationResult) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if config.Timestamp == "" {
		config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	spec := BuildSpec(config, results)

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s-%s.yaml", config.Mode, config.Policy, config.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	return absPath, nil
}
