package providers

import (
	"context"
)

// Config represents one request to an LLM provider. Image is optional; when
// set the provider sends it alongside the prompt.
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	MIMEType    string
}

// ImageMIMEType returns the configured MIME type, defaulting to JPEG.
func (c Config) ImageMIMEType() string {
	if c.MIMEType == "" {
		return "image/jpeg"
	}
	return c.MIMEType
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
