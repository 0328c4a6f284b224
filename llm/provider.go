// Package llm holds thin adapters over the supported text-generation
// backends. The bot treats them as black boxes: prompt in, text out.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when a backend answers successfully but
// with no usable text. Callers treat it like any other generation failure.
var ErrEmptyCompletion = errors.New("llm: empty completion")

type Provider interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ImageGenerator is implemented by providers that can also render images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// New selects a provider by name.
func New(ctx context.Context, name, model, key, endpoint string) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAI(endpoint, key, model), nil
	case "ollama":
		return NewOllama(endpoint, model)
	case "genai":
		return NewGemini(ctx, key, model)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
