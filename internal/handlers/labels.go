package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tastingroom/winescore/internal/extract"
	"github.com/tastingroom/winescore/internal/ocr"
)

// LabelResponse is an extraction, with the recognized text when the label
// was uploaded as an image.
type LabelResponse struct {
	Recognition *ocr.Recognition `json:"recognition,omitempty"`
	Result      extract.Result   `json:"result"`
}

func (h *Handler) HandleLabels(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with recognized text
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleTextLabel(w, r)
		return
	}

	h.handleImageLabel(w, r)
}

func (h *Handler) handleTextLabel(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Tokens   []string `json:"tokens"`
		FullText string   `json:"full_text"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	tokens := request.Tokens
	if len(tokens) == 0 {
		tokens = ocr.FromText(request.FullText).Tokens
	}
	if len(tokens) == 0 && strings.TrimSpace(request.FullText) == "" {
		h.writeError(w, "tokens or full_text is required", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, LabelResponse{Result: h.extractor.Extract(tokens, request.FullText)})
}

func (h *Handler) handleImageLabel(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	provider := r.FormValue("provider")
	model := r.FormValue("model")

	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if len(fileData) >= maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	mimeType, err := checkImage(fileData)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reader, err := h.newReader(provider, model)
	if err != nil {
		h.writeError(w, "Failed to create OCR service: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := reader.Recognize(r.Context(), fileData, mimeType)
	if err != nil {
		h.writeError(w, "Failed to recognize label: "+err.Error(), http.StatusBadGateway)
		return
	}

	result := h.extractor.Extract(rec.Tokens, rec.FullText)
	slog.Info("Label extracted", "provider", provider, "confidence", result.Fields.Confidence)

	h.writeJSON(w, LabelResponse{Recognition: &rec, Result: result})
}

// checkImage rejects uploads that do not decode as an image and returns the
// MIME type of the ones that do.
func checkImage(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("file is not a supported image: %w", err)
	}
	slog.Debug("Image uploaded", "format", format, "width", cfg.Width, "height", cfg.Height)
	return "image/" + format, nil
}
