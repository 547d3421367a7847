package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tastingroom/winescore/internal/providers"
)

type fakeProvider struct {
	text   string
	err    error
	config providers.Config
}

func (f *fakeProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	f.config = config
	return f.text, f.err
}

func TestFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"lines", "SILVER OAK\nNapa Valley\n2019", []string{"SILVER OAK", "Napa Valley", "2019"}},
		{"blank lines and padding", "\n  Opus One  \n\n\t2018\n", []string{"Opus One", "2018"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := FromText(tt.text)
			if !reflect.DeepEqual(rec.Tokens, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, rec.Tokens)
			}
			if rec.FullText != tt.text {
				t.Errorf("Expected full text to be kept verbatim")
			}
		})
	}
}

func TestRecognizePassesImage(t *testing.T) {
	fake := &fakeProvider{text: "Cloudy Bay\nSauvignon Blanc"}
	s := NewService(fake, "fake", "vision-1")

	rec, err := s.Recognize(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(rec.Tokens) != 2 {
		t.Errorf("Expected 2 tokens, got %v", rec.Tokens)
	}
	if fake.config.Model != "vision-1" || fake.config.MIMEType != "image/png" || len(fake.config.Image) != 4 {
		t.Errorf("Unexpected provider config: %+v", fake.config)
	}
	if fake.config.Temperature != 0 {
		t.Errorf("Expected zero temperature, got %f", fake.config.Temperature)
	}
}

func TestRecognizeProviderError(t *testing.T) {
	s := NewService(&fakeProvider{err: errors.New("boom")}, "fake", "m")
	if _, err := s.Recognize(context.Background(), nil, ""); err == nil {
		t.Error("Expected provider error to be returned")
	}
}

func TestRecognizeFileWithOllama(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "MUGA\nRioja\nReserva\n2017"})
	}))
	defer server.Close()

	t.Setenv("OLLAMA_URL", server.URL)
	t.Setenv("WINESCORE_PROVIDER", "")
	t.Setenv("OLLAMA_MODEL", "")

	path := filepath.Join(t.TempDir(), "label.jpg")
	if err := os.WriteFile(path, []byte("fake image"), 0644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	s, err := NewServiceFromEnv("", "")
	if err != nil {
		t.Fatalf("NewServiceFromEnv failed: %v", err)
	}
	rec, err := s.RecognizeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("RecognizeFile failed: %v", err)
	}

	expected := []string{"MUGA", "Rioja", "Reserva", "2017"}
	if !reflect.DeepEqual(rec.Tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, rec.Tokens)
	}
	if got["model"] != "mistral-small3.2:24b" {
		t.Errorf("Expected default model, got %v", got["model"])
	}
	images, ok := got["images"].([]interface{})
	if !ok || len(images) != 1 {
		t.Errorf("Expected one base64 image, got %v", got["images"])
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"ollama", "openai", "gemini"} {
		if _, err := NewProvider(name); err != nil {
			t.Errorf("NewProvider(%s) failed: %v", name, err)
		}
	}
	if _, err := NewProvider("tesseract"); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestDefaultModel(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-custom")
	t.Setenv("GEMINI_MODEL", "")

	if got := DefaultModel("openai"); got != "gpt-custom" {
		t.Errorf("Expected env override, got %s", got)
	}
	if got := DefaultModel("gemini"); got != "gemini-1.5-flash" {
		t.Errorf("Expected gemini default, got %s", got)
	}
	if got := DefaultModel("unknown"); got != "" {
		t.Errorf("Expected empty model, got %s", got)
	}
}
