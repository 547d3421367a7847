package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tastingroom/winescore/internal/config"
	"github.com/tastingroom/winescore/internal/extract"
	"github.com/tastingroom/winescore/internal/lexicon"
	"github.com/tastingroom/winescore/internal/ocr"
	"github.com/tastingroom/winescore/internal/recommend"
	"github.com/tastingroom/winescore/internal/storage"
)

const maxUploadSize = 10 * 1024 * 1024

// labelReader transcribes a label image.
type labelReader interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (ocr.Recognition, error)
}

// readerFactory builds a label reader for a provider and model; empty values
// fall back to the environment.
type readerFactory func(provider, model string) (labelReader, error)

type Handler struct {
	cellar       *storage.Cellar
	policy       config.Policy
	extractor    *extract.Extractor
	recommender  *recommend.Scorer
	corrector    *lexicon.Corrector
	newReader    readerFactory
	historyLimit int
}

// New creates a handler over an empty cellar.
func New(policy config.Policy) (*Handler, error) {
	return NewWithCellar(policy, storage.New())
}

// NewWithCellar creates a handler over an existing cellar.
func NewWithCellar(policy config.Policy, cellar *storage.Cellar) (*Handler, error) {
	recommender, err := policy.RecommendScorer()
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation scorer: %w", err)
	}
	return &Handler{
		cellar:      cellar,
		policy:      policy,
		extractor:   policy.Extractor(nil),
		recommender: recommender,
		corrector:   policy.Corrector(),
		newReader: func(provider, model string) (labelReader, error) {
			return ocr.NewServiceFromEnv(provider, model)
		},
		historyLimit: policy.HistoryLimit,
	}, nil
}

// Routes registers the API on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/labels", h.HandleLabels)
	mux.HandleFunc("/api/tastings", h.HandleTastings)
	mux.HandleFunc("/api/wines", h.HandleWines)
	mux.HandleFunc("/api/wines/", h.HandleWineDetail)
	mux.HandleFunc("/api/ratings", h.HandleRatings)
	mux.HandleFunc("/api/recommendations", h.HandleRecommendations)
	mux.HandleFunc("/api/corrections", h.HandleCorrections)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadSize)).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
