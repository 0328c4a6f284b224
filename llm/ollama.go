package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const _ollama_domain = "http://127.0.0.1:11434"

var _ Provider = (*Ollama)(nil)

type Ollama struct {
	model string
	c     *ollama.Client
}

func NewOllama(endpoint, model string) (*Ollama, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama model cannot be empty")
	}
	if endpoint == "" {
		endpoint = _ollama_domain
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	return &Ollama{
		model: model,
		c:     ollama.NewClient(u, http.DefaultClient),
	}, nil
}

func (o *Ollama) Generate(ctx context.Context, system, prompt string) (string, error) {
	msgs := []ollama.Message{}
	if system != "" {
		msgs = append(msgs, ollama.Message{Role: "system", Content: system})
	}
	msgs = append(msgs, ollama.Message{Role: "user", Content: prompt})

	stream := false
	req := &ollama.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
	}

	var text string
	err := o.c.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		text = cr.Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
