package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tastingroom/winescore/internal/evalcmd"
	"github.com/tastingroom/winescore/internal/ocr"
)

func newExtractCmd() *cobra.Command {
	var text string
	var tokens []string
	var imagePath string
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract winery, name, vintage, region and grape from a label",
		Long: `Extract structured fields from wine label text.

Give the recognized text with --text (one token per line) and optionally the
tokens with --token. With --image the label is first recognized by an LLM
vision provider.`,
		Example: `  winescore extract --text $'Silver Oak\nNapa Valley\nCabernet Sauvignon\n2018'
  winescore extract --image label.jpg --provider gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := evalcmd.LoadPolicy(cmd)
			if err != nil {
				return err
			}

			rec := ocr.FromText(text)
			if len(tokens) > 0 {
				rec.Tokens = tokens
				if rec.FullText == "" {
					rec.FullText = strings.Join(tokens, "\n")
				}
			}

			if imagePath != "" {
				service, err := ocr.NewServiceFromEnv(provider, model)
				if err != nil {
					return fmt.Errorf("failed to create OCR service: %w", err)
				}
				rec, err = service.RecognizeFile(cmd.Context(), imagePath)
				if err != nil {
					return err
				}
			}

			if len(rec.Tokens) == 0 && strings.TrimSpace(rec.FullText) == "" {
				return fmt.Errorf("one of --text, --token or --image is required")
			}

			result := policy.Extractor(nil).Extract(rec.Tokens, rec.FullText)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Recognized label text")
	cmd.Flags().StringArrayVar(&tokens, "token", nil, "Recognized token (repeatable)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Label image to recognize")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (ollama, openai, or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")

	cmd.MarkFlagsMutuallyExclusive("image", "text")
	cmd.MarkFlagsMutuallyExclusive("image", "token")

	return cmd
}
