package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tastingroom/winescore/internal/config"
	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/models"
)

// LoadPolicy loads the scoring policy named by the inherited --policy flag,
// or the built-in defaults when it is unset.
func LoadPolicy(cmd *cobra.Command) (config.Policy, error) {
	path := ""
	if f := cmd.Flag("policy"); f != nil {
		path = f.Value.String()
	}
	policy, err := config.Load(path)
	if err != nil {
		return config.Policy{}, fmt.Errorf("failed to load policy: %w", err)
	}
	return policy, nil
}

func addRunFlags(cmd *cobra.Command, opts *Options, mode string) {
	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Path or URL of a parquet or jsonl dataset (required)")
	cmd.Flags().StringVar(&opts.OutputJSON, "output-json", mode+"_results.json", "Path to output JSON results file")
	cmd.Flags().StringVar(&opts.OutputReport, "output-report", mode+"_report.txt", "Path to output detailed report file")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Directory for YAML results (default: evals)")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", 10, "Number of records to evaluate (0 for all)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Number of records evaluated in parallel")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", dataset.DefaultCacheDir, "Cache directory for remote datasets")
	cmd.Flags().StringVar(&opts.Token, "token", os.Getenv("WINESCORE_DATASET_TOKEN"), "Bearer token for remote datasets")

	_ = cmd.MarkFlagRequired("dataset")
}

// NewTastingCmd creates the tasting command for scoring a dataset of blind tastings
func NewTastingCmd() *cobra.Command {
	var opts Options
	var policyName string

	cmd := &cobra.Command{
		Use:   "tasting",
		Short: "Score a dataset of blind tastings",
		Long: `Score every guess in a blind-tasting dataset against the wine that was poured.

Each record holds a guess and the actual wine. Results are aggregated per
scored dimension and written as JSON, a text report and YAML.`,
		Example: `  # Score 10 tastings with the canonical policy
  winescore eval tasting --dataset ./tastings.jsonl

  # Score every tasting with the utility policy
  winescore eval tasting --dataset ./tastings.parquet --sample 0 --policy-name utility`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := LoadPolicy(cmd)
			if err != nil {
				return err
			}
			_, err = executeTasting(background(cmd.Context()), policy, policyName, opts)
			return err
		},
	}

	addRunFlags(cmd, &opts, "tasting")
	cmd.Flags().StringVar(&policyName, "policy-name", "", "Built-in tasting policy (canonical or utility); overrides the policy file")

	return cmd
}

// NewLabelsCmd creates the labels command for evaluating field extraction
func NewLabelsCmd() *cobra.Command {
	var opts Options
	var recognize bool
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Evaluate label field extraction against catalogued labels",
		Long: `Run field extraction over a dataset of wine labels and compare the result
with the fields a cataloguer entered.

By default the recognized text stored in the dataset is used. With --recognize,
records that carry an image_path are first sent to an LLM vision provider.`,
		Example: `  # Evaluate extraction over stored label text
  winescore eval labels --dataset ./labels.jsonl

  # Recognize label images with OpenAI first
  winescore eval labels --dataset ./labels.jsonl --recognize --provider openai --model gpt-4o`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := LoadPolicy(cmd)
			if err != nil {
				return err
			}
			_, err = executeLabels(background(cmd.Context()), policy, opts, recognize, provider, model)
			return err
		},
	}

	addRunFlags(cmd, &opts, "labels")
	cmd.Flags().BoolVar(&recognize, "recognize", false, "Recognize label images instead of using stored text")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (ollama, openai, or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string
	var threshold int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report from saved evaluation results",
		Example: `  winescore eval report --results tasting_results.json
  winescore eval report --results labels_results.json --format csv > labels.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format, threshold)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a JSON results file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, or csv)")
	cmd.Flags().IntVar(&threshold, "threshold", 80, "Show dimensions scoring below this in text reports")

	_ = cmd.MarkFlagRequired("results")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset records",
		Long: `Inspect records from a parquet or jsonl dataset file.

Records are printed as YAML. For label datasets the recognized text is
previewed below each record.`,
		Example: `  # Inspect first 5 labels interactively
  winescore eval inspect --dataset ./labels.parquet --kind labels --limit 5 --interactive

  # Inspect all tastings
  winescore eval inspect --dataset ./tastings.jsonl --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(background(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", KindTasting, "Dataset kind (tasting, labels, wines, or ratings)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Number of records to inspect (0 for all)")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "Pause after each record (press Enter to continue)")
	cmd.Flags().BoolVar(&opts.ShowText, "text", true, "Show label text preview")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewConvertCmd creates the convert command for turning jsonl datasets into parquet
func NewConvertCmd() *cobra.Command {
	var input string
	var output string
	var kind string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a jsonl dataset to parquet",
		Example: `  winescore eval convert --input ./tastings.jsonl --output ./tastings.parquet --kind tasting`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := executeConvert(input, output, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to jsonl dataset (required)")
	cmd.Flags().StringVar(&output, "output", "", "Path to parquet output (required)")
	cmd.Flags().StringVar(&kind, "kind", KindTasting, "Dataset kind (tasting, labels, wines, or ratings)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func executeConvert(input, output, kind string) (int, error) {
	switch kind {
	case KindTasting:
		return convert[dataset.TastingRecord](input, output)
	case KindLabels:
		return convert[dataset.LabelRecord](input, output)
	case KindWines:
		return convert[models.WineRecord](input, output)
	case KindRatings:
		return convert[models.Rating](input, output)
	default:
		return 0, fmt.Errorf("unknown dataset kind: %s", kind)
	}
}

func convert[T any](input, output string) (int, error) {
	records, err := dataset.NewLoader[T](input).Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load dataset: %w", err)
	}
	if err := dataset.WriteParquet(output, records); err != nil {
		return 0, err
	}
	slog.Info("Converted dataset", "input", input, "output", output, "records", len(records))
	return len(records), nil
}

// background is used when a command runs without a context, as in tests.
func background(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
