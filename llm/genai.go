package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const _genai_image_model = "imagen-3.0-generate-002"

var (
	_ Provider       = (*Gemini)(nil)
	_ ImageGenerator = (*Gemini)(nil)
)

type Gemini struct {
	model      string
	imageModel string
	cli        *genai.Client
}

func NewGemini(ctx context.Context, key, model string) (*Gemini, error) {
	if model == "" {
		return nil, fmt.Errorf("gemini model cannot be empty")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed start gemini client: %w", err)
	}
	return &Gemini{
		model:      model,
		imageModel: _genai_image_model,
		cli:        cli,
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini failed generating content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// GenerateImage renders one image for the prompt and returns its raw bytes.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.cli.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini failed generating image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("gemini returned no image")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
