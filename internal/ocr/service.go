package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/tastingroom/winescore/internal/gemini"
	"github.com/tastingroom/winescore/internal/ollama"
	"github.com/tastingroom/winescore/internal/openai"
	"github.com/tastingroom/winescore/internal/providers"
)

// Recognition is the raw text read off a label. Tokens are the non-empty
// lines in reading order; FullText is the transcription as returned.
type Recognition struct {
	Tokens   []string `json:"tokens" yaml:"tokens"`
	FullText string   `json:"full_text" yaml:"full_text"`
}

// Service reads text off wine label images with an LLM vision provider
type Service struct {
	provider providers.Provider
	name     string
	model    string
}

// NewService creates an OCR service over the given provider
func NewService(provider providers.Provider, name, model string) *Service {
	return &Service{provider: provider, name: name, model: model}
}

// NewServiceFromEnv picks the provider from WINESCORE_PROVIDER when name is
// empty, and the model from the provider's env var when model is empty.
func NewServiceFromEnv(name, model string) (*Service, error) {
	if name == "" {
		name = os.Getenv("WINESCORE_PROVIDER")
		if name == "" {
			name = "ollama"
		}
	}

	provider, err := NewProvider(name)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = DefaultModel(name)
	}
	return NewService(provider, name, model), nil
}

// NewProvider returns the provider registered under name.
func NewProvider(name string) (providers.Provider, error) {
	switch name {
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s", name)
	}
}

// DefaultModel returns the model used for a provider when none is given.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return envOr("OPENAI_MODEL", "gpt-4o")
	case "ollama":
		return envOr("OLLAMA_MODEL", "mistral-small3.2:24b")
	case "gemini":
		return envOr("GEMINI_MODEL", "gemini-1.5-flash")
	default:
		return ""
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RecognizeFile reads an image from disk and recognizes it.
func (s *Service) RecognizeFile(ctx context.Context, imagePath string) (Recognition, error) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return Recognition{}, fmt.Errorf("failed to read image for OCR: %w", err)
	}
	return s.Recognize(ctx, image, http.DetectContentType(image))
}

// Recognize transcribes the label in image.
func (s *Service) Recognize(ctx context.Context, image []byte, mimeType string) (Recognition, error) {
	text, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0.0,
		Prompt:      labelPrompt,
		Image:       image,
		MIMEType:    mimeType,
	})
	if err != nil {
		return Recognition{}, fmt.Errorf("failed to extract label text: %w", err)
	}

	rec := FromText(text)
	slog.Info("Extracted OCR text", "provider", s.name, "model", s.model, "length", len(rec.FullText), "tokens", len(rec.Tokens))
	return rec, nil
}

// FromText splits a transcription into line tokens.
func FromText(text string) Recognition {
	rec := Recognition{FullText: text}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rec.Tokens = append(rec.Tokens, line)
		}
	}
	return rec
}

const labelPrompt = `You are performing OCR (Optical Character Recognition) on a photo of a wine bottle label.

Your task is to extract ALL visible text from the label exactly as it appears, preserving:
- Line breaks
- Capitalization
- Accents and special characters
- Order of text elements, top to bottom

INSTRUCTIONS:
1. Read the label carefully from top to bottom
2. Put each separate line or text block of the label on its own line
3. Include the producer, wine name, vintage, region, grape variety and any small print
4. Do not add any interpretation, commentary, or explanations
5. If text is partially obscured or unclear, transcribe what you can see and use [?] for illegible portions

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The label reads:".

Example output:
CHATEAU MONTELENA
Napa Valley
Cabernet Sauvignon
2016`
