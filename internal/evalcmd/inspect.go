package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/models"
)

// Dataset kinds understood by inspect and convert.
const (
	KindTasting = "tasting"
	KindLabels  = "labels"
	KindWines   = "wines"
	KindRatings = "ratings"
)

type inspectOptions struct {
	DatasetPath string
	Kind        string
	Limit       int
	Interactive bool
	ShowText    bool // label text preview; labels only
}

func executeInspect(ctx context.Context, in io.Reader, out io.Writer, opts inspectOptions) error {
	switch opts.Kind {
	case KindTasting:
		return inspectRecords[dataset.TastingRecord](ctx, in, out, opts, nil)
	case KindLabels:
		return inspectRecords(ctx, in, out, opts, func(r dataset.LabelRecord) string {
			if !opts.ShowText {
				return ""
			}
			return r.FullText
		})
	case KindWines:
		return inspectRecords[models.WineRecord](ctx, in, out, opts, nil)
	case KindRatings:
		return inspectRecords[models.Rating](ctx, in, out, opts, nil)
	default:
		return fmt.Errorf("unknown dataset kind: %s", opts.Kind)
	}
}

// inspectRecords prints records as YAML. preview, when set, returns text
// shown below each record.
func inspectRecords[T any](ctx context.Context, in io.Reader, out io.Writer, opts inspectOptions, preview func(T) string) error {
	loader := dataset.NewLoader[T](opts.DatasetPath)

	var records []T
	var err error
	if opts.Limit > 0 {
		records, err = loader.LoadSample(opts.Limit)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Fprintf(out, "Loaded %d records from %s\n", len(records), opts.DatasetPath)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)

	for i, record := range records {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(out, "RECORD %d/%d\n", i+1, len(records))
		fmt.Fprintln(out, strings.Repeat("-", 80))

		data, err := yaml.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to render record %d: %w", i+1, err)
		}
		fmt.Fprint(out, string(data))

		if preview != nil {
			if text := preview(record); text != "" {
				printPreview(out, text)
			}
		}

		fmt.Fprintln(out)

		if !opts.Interactive {
			continue
		}

		fmt.Fprint(out, "Press Enter to continue to next record (or Ctrl+C to quit)...")

		inputCh := make(chan struct{})
		go func() {
			_, _ = reader.ReadString('\n')
			close(inputCh)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		case <-inputCh:
			fmt.Fprintln(out)
		}
	}

	return nil
}

func printPreview(out io.Writer, text string) {
	const maxChars = 500

	fmt.Fprintf(out, "Text Length: %d characters, %d words (approx)\n", len(text), len(strings.Fields(text)))

	display := text
	truncated := len(display) > maxChars
	if truncated {
		display = display[:maxChars]
	}

	fmt.Fprintln(out, "LABEL TEXT PREVIEW:")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	fmt.Fprintln(out, display)
	if truncated {
		fmt.Fprintf(out, "\n[... truncated, showing first %d of %d characters ...]\n", maxChars, len(text))
	}
	fmt.Fprintln(out, strings.Repeat("-", 80))
}
