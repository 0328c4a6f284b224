package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const _openai_domain = "https://api.openai.com"

var _ Provider = (*OpenAI)(nil)

// OpenAI talks to any OpenAI-compatible chat-completions endpoint.
type OpenAI struct {
	client   *http.Client
	endpoint string
	key      string
	model    string
}

func NewOpenAI(endpoint, key, model string) *OpenAI {
	if endpoint == "" {
		endpoint = _openai_domain
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	return &OpenAI{
		client:   http.DefaultClient,
		endpoint: endpoint,
		key:      key,
		model:    model,
	}
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaRequest struct {
	Model    string      `json:"model"`
	Messages []oaMessage `json:"messages"`
}

type oaResponse struct {
	Choices []struct {
		Message      oaMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
}

func (c *OpenAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	in := oaRequest{Model: c.model}
	if system != "" {
		in.Messages = append(in.Messages, oaMessage{Role: "system", Content: system})
	}
	in.Messages = append(in.Messages, oaMessage{Role: "user", Content: prompt})

	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("openai failed create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.key))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out oaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
