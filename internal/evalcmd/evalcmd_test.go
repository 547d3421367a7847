package evalcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tastingroom/winescore/internal/config"
	"github.com/tastingroom/winescore/internal/eval/dataset"
	"github.com/tastingroom/winescore/internal/eval/metrics"
	"github.com/tastingroom/winescore/internal/ocr"
	"github.com/tastingroom/winescore/internal/tasting"
)

func intPtr(v int) *int { return &v }

const tastingJSONL = `{"id":"t1","guess":{"wine_type":"red","grape_varieties":["Pinot Noir"],"region":"Burgundy","country":"France","vintage_range":{"min":2016,"max":2020}},"actual":{"id":"w1","name":"Clos de Vougeot","wine_type":"red","grape_varieties":["Pinot Noir"],"region":"Burgundy","country":"France","vintage":2018}}
{"id":"t2","guess":{"wine_type":"white"},"actual":{"id":"w2","name":"Sancerre","wine_type":"red","country":"France"}}
{"id":"t3","guess":{"region":"Rioja"},"actual":{"id":"w3"}}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func testOptions(t *testing.T, datasetPath string) Options {
	dir := t.TempDir()
	return Options{
		DatasetPath:  datasetPath,
		OutputJSON:   filepath.Join(dir, "results.json"),
		OutputReport: filepath.Join(dir, "report.txt"),
		OutputDir:    filepath.Join(dir, "evals"),
		Concurrency:  2,
		CacheDir:     filepath.Join(dir, "cache"),
	}
}

func TestRunPoolKeepsInputOrder(t *testing.T) {
	records := []string{"a", "b", "c", "d", "e", "f"}
	var inFlight, peak int32

	results := runPool(context.Background(), records, 2, func(ctx context.Context, r string) metrics.EvaluationResult {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(&inFlight, -1)
		return metrics.EvaluationResult{ID: r}
	})

	for i, r := range results {
		if r.ID != records[i] {
			t.Errorf("Expected result %d to be %s, got %s", i, records[i], r.ID)
		}
	}
	if peak > 2 {
		t.Errorf("Expected at most 2 evaluations in flight, got %d", peak)
	}
}

func TestRunPoolZeroConcurrency(t *testing.T) {
	results := runPool(context.Background(), []int{1, 2}, 0, func(ctx context.Context, r int) metrics.EvaluationResult {
		return metrics.EvaluationResult{OverallScore: float64(r)}
	})
	if len(results) != 2 || results[1].OverallScore != 2 {
		t.Errorf("Unexpected results: %+v", results)
	}
}

func TestEvaluateTasting(t *testing.T) {
	records, err := dataset.NewLoader[dataset.TastingRecord](writeFile(t, t.TempDir(), "t.jsonl", tastingJSONL)).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	scorer := tasting.NewScorer()

	perfect := evaluateTasting(context.Background(), scorer, records[0])
	if perfect.Error != "" {
		t.Fatalf("Unexpected error: %s", perfect.Error)
	}
	if perfect.OverallScore != 100 {
		t.Errorf("Expected 100 for a perfect guess, got %.2f", perfect.OverallScore)
	}
	if perfect.Summary != "Clos de Vougeot, 2018, Burgundy, France" {
		t.Errorf("Unexpected summary %q", perfect.Summary)
	}
	if len(perfect.Matches) != 4 {
		t.Errorf("Expected a match per canonical dimension, got %d", len(perfect.Matches))
	}

	wrongType := evaluateTasting(context.Background(), scorer, records[1])
	if m := wrongType.Matches[tasting.DimWineType]; m.Score != 0 {
		t.Errorf("Expected wine type miss, got %+v", m)
	}

	blank := evaluateTasting(context.Background(), scorer, records[2])
	if blank.Error == "" {
		t.Error("Expected error for a record without ground truth")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if canceled := evaluateTasting(ctx, scorer, records[0]); canceled.Error == "" {
		t.Error("Expected error for a canceled context")
	}
}

func TestExecuteTasting(t *testing.T) {
	opts := testOptions(t, writeFile(t, t.TempDir(), "t.jsonl", tastingJSONL))

	agg, err := executeTasting(context.Background(), config.Default(), tasting.PolicyUtility, opts)
	if err != nil {
		t.Fatalf("executeTasting failed: %v", err)
	}

	if agg.TotalRecords != 3 || agg.SuccessCount != 2 || agg.FailureCount != 1 {
		t.Errorf("Unexpected counts: %d total, %d ok, %d failed", agg.TotalRecords, agg.SuccessCount, agg.FailureCount)
	}
	if agg.Policy != tasting.PolicyUtility {
		t.Errorf("Expected utility policy, got %s", agg.Policy)
	}
	if len(agg.Dimensions) != 4 || agg.Dimensions[0] != tasting.DimGrapeVariety {
		t.Errorf("Expected utility dimensions, got %v", agg.Dimensions)
	}

	for _, path := range []string{opts.OutputJSON, opts.OutputReport} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected output %s: %v", path, err)
		}
	}
	yamls, _ := filepath.Glob(filepath.Join(opts.OutputDir, "tasting-utility-*.yaml"))
	if len(yamls) != 1 {
		t.Errorf("Expected one YAML result file, got %v", yamls)
	}
}

func TestExecuteTastingErrors(t *testing.T) {
	opts := testOptions(t, filepath.Join(t.TempDir(), "missing.jsonl"))
	if _, err := executeTasting(context.Background(), config.Default(), "", opts); err == nil {
		t.Error("Expected error for missing dataset")
	}
	if _, err := executeTasting(context.Background(), config.Default(), "bogus", opts); err == nil {
		t.Error("Expected error for unknown policy name")
	}
}

type fakeRecognizer struct {
	text  string
	err   error
	paths []string
}

func (f *fakeRecognizer) RecognizeFile(ctx context.Context, imagePath string) (ocr.Recognition, error) {
	f.paths = append(f.paths, imagePath)
	if f.err != nil {
		return ocr.Recognition{}, f.err
	}
	return ocr.FromText(f.text), nil
}

var silverOak = dataset.LabelFields{
	Winery:       "Silver Oak",
	WineName:     "Alexander Bottling",
	Vintage:      intPtr(2018),
	Region:       "Sonoma",
	GrapeVariety: "Cabernet Sauvignon",
}

const silverOakText = "Silver Oak\nAlexander Bottling\n2018\nSonoma\nCabernet Sauvignon"

func TestLabelEvaluatorStoredText(t *testing.T) {
	policy := config.Default()
	e := &labelEvaluator{extractor: policy.Extractor(nil), weights: policy.Confidence}

	rec := ocr.FromText(silverOakText)
	result := e.evaluate(context.Background(), dataset.LabelRecord{
		ID:       "l1",
		Tokens:   rec.Tokens,
		FullText: rec.FullText,
		Expected: silverOak,
	})

	if result.Error != "" {
		t.Fatalf("Unexpected error: %s", result.Error)
	}
	if result.OverallScore != 100 {
		t.Errorf("Expected 100, got %.2f (%+v)", result.OverallScore, result.Matches)
	}
	if result.Summary != "Silver Oak, Alexander Bottling, 2018, Sonoma" {
		t.Errorf("Unexpected summary %q", result.Summary)
	}

	empty := e.evaluate(context.Background(), dataset.LabelRecord{ID: "l2", Expected: silverOak})
	if empty.Error == "" {
		t.Error("Expected error for a record without label text")
	}
}

func TestLabelEvaluatorRecognizes(t *testing.T) {
	policy := config.Default()
	fake := &fakeRecognizer{text: silverOakText}
	e := &labelEvaluator{
		extractor:  policy.Extractor(nil),
		weights:    policy.Confidence,
		recognizer: fake,
		imageRoot:  "/data",
	}

	result := e.evaluate(context.Background(), dataset.LabelRecord{
		ID:        "l1",
		FullText:  "stale text",
		ImagePath: "images/l1.jpg",
		Expected:  silverOak,
	})
	if result.OverallScore != 100 {
		t.Errorf("Expected recognized text to be used, got %.2f", result.OverallScore)
	}
	if len(fake.paths) != 1 || fake.paths[0] != filepath.Join("/data", "images/l1.jpg") {
		t.Errorf("Expected image resolved against root, got %v", fake.paths)
	}

	fake.err = errors.New("provider down")
	failed := e.evaluate(context.Background(), dataset.LabelRecord{ID: "l2", ImagePath: "/abs/l2.jpg"})
	if !strings.Contains(failed.Error, "provider down") {
		t.Errorf("Expected OCR error to be recorded, got %q", failed.Error)
	}
	if fake.paths[1] != "/abs/l2.jpg" {
		t.Errorf("Expected absolute path untouched, got %s", fake.paths[1])
	}
}

func TestExecuteLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.parquet")
	rec := ocr.FromText(silverOakText)
	labels := []dataset.LabelRecord{
		{ID: "l1", Tokens: rec.Tokens, FullText: rec.FullText, Expected: silverOak},
		{ID: "l2", Tokens: []string{"Muga"}, FullText: "Muga", Expected: dataset.LabelFields{Winery: "Muga"}},
	}
	if err := dataset.WriteParquet(path, labels); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}

	agg, err := executeLabels(context.Background(), config.Default(), testOptions(t, path), false, "", "")
	if err != nil {
		t.Fatalf("executeLabels failed: %v", err)
	}
	if agg.SuccessCount != 2 || agg.Mode != "labels" || agg.Policy != "text" {
		t.Errorf("Unexpected aggregate: %d ok, %s/%s", agg.SuccessCount, agg.Mode, agg.Policy)
	}
	if agg.FieldAccuracy[metrics.LabelWinery].ExactMatches != 2 {
		t.Errorf("Expected both wineries to match, got %+v", agg.FieldAccuracy[metrics.LabelWinery])
	}
}

func TestReportFormats(t *testing.T) {
	opts := testOptions(t, writeFile(t, t.TempDir(), "t.jsonl", tastingJSONL))
	if _, err := executeTasting(context.Background(), config.Default(), "", opts); err != nil {
		t.Fatalf("executeTasting failed: %v", err)
	}

	var text bytes.Buffer
	if err := executeReport(&text, opts.OutputJSON, "text", 80); err != nil {
		t.Fatalf("text report failed: %v", err)
	}
	for _, want := range []string{"Winescore tasting Evaluation Report", "Record ID: t1", "Significant Differences:", "Error: record has no ground truth wine"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("Text report missing %q", want)
		}
	}

	var csvOut bytes.Buffer
	if err := executeReport(&csvOut, opts.OutputJSON, "csv", 80); err != nil {
		t.Fatalf("csv report failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("Expected header plus 3 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID,Summary,Overall Score,Error,Score_wine_type") {
		t.Errorf("Unexpected CSV header %q", lines[0])
	}

	var jsonOut bytes.Buffer
	if err := executeReport(&jsonOut, opts.OutputJSON, "json", 80); err != nil {
		t.Fatalf("json report failed: %v", err)
	}
	if !strings.Contains(jsonOut.String(), `"Policy": "canonical"`) {
		t.Error("JSON report missing policy")
	}

	if err := executeReport(&jsonOut, opts.OutputJSON, "xml", 80); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestInspect(t *testing.T) {
	path := writeFile(t, t.TempDir(), "t.jsonl", tastingJSONL)

	var out bytes.Buffer
	err := executeInspect(context.Background(), strings.NewReader(""), &out, inspectOptions{
		DatasetPath: path,
		Kind:        KindTasting,
		Limit:       2,
	})
	if err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}
	for _, want := range []string{"Loaded 2 records", "RECORD 2/2", "name: Clos de Vougeot", "vintage: 2018"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Inspect output missing %q", want)
		}
	}

	if err := executeInspect(context.Background(), nil, &out, inspectOptions{DatasetPath: path, Kind: "bogus"}); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestInspectInteractiveInterrupted(t *testing.T) {
	path := writeFile(t, t.TempDir(), "t.jsonl", tastingJSONL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := executeInspect(ctx, strings.NewReader(""), &out, inspectOptions{
		DatasetPath: path,
		Kind:        KindTasting,
		Interactive: true,
	})
	if err != nil {
		t.Fatalf("Expected clean exit, got %v", err)
	}
	if !strings.Contains(out.String(), "Inspection interrupted.") {
		t.Error("Expected interruption message")
	}
}

func TestInspectLabelPreview(t *testing.T) {
	path := writeFile(t, t.TempDir(), "labels.jsonl",
		`{"id":"l1","tokens":["Muga"],"full_text":"Muga Reserva Rioja","expected":{"winery":"Muga"}}`+"\n")

	var out bytes.Buffer
	err := executeInspect(context.Background(), strings.NewReader(""), &out, inspectOptions{
		DatasetPath: path,
		Kind:        KindLabels,
		ShowText:    true,
	})
	if err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}
	if !strings.Contains(out.String(), "LABEL TEXT PREVIEW:") || !strings.Contains(out.String(), "3 words") {
		t.Errorf("Expected label preview, got %s", out.String())
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "t.jsonl", tastingJSONL)
	output := filepath.Join(dir, "t.parquet")

	n, err := executeConvert(input, output, KindTasting)
	if err != nil {
		t.Fatalf("executeConvert failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 records converted, got %d", n)
	}

	records, err := dataset.NewLoader[dataset.TastingRecord](output).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 3 || records[0].Actual.Name != "Clos de Vougeot" {
		t.Errorf("Unexpected converted records: %+v", records)
	}

	if _, err := executeConvert(input, output, "bogus"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestLoadPolicy(t *testing.T) {
	cmd := NewTastingCmd()
	cmd.PersistentFlags().String("policy", "", "")

	policy, err := LoadPolicy(cmd)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if policy.HistoryLimit != config.DefaultHistoryLimit {
		t.Errorf("Expected defaults, got history limit %d", policy.HistoryLimit)
	}

	path := writeFile(t, t.TempDir(), "policy.yaml", "history_limit: 3\n")
	if err := cmd.PersistentFlags().Set("policy", path); err != nil {
		t.Fatal(err)
	}
	policy, err = LoadPolicy(cmd)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if policy.HistoryLimit != 3 {
		t.Errorf("Expected history limit 3, got %d", policy.HistoryLimit)
	}
}
