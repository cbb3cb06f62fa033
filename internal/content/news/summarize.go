// internal/content/news/summarize.go
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Summarizer shortens an article summary to one sentence.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// refusal marks a model reply that talks about the task instead of doing it.
const refusal = "I need to summarize"

// DefaultModel is used when OllamaConfig.Model is empty.
const DefaultModel = "deepseek-r1:14b"

type OllamaConfig struct {
	URL    string // e.g. http://host:11434/api/generate
	Model  string
	Client *http.Client // optional
}

// Ollama summarizes through an Ollama generate endpoint.
type Ollama struct {
	url    string
	model  string
	client *http.Client
}

func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if cfg.URL == "" {
		return nil, errors.New("news: summarizer url required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	cli := cfg.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	return &Ollama{url: cfg.URL, model: model, client: cli}, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Summarize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: "Summarize this news article in one sentence:\n" + text,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("news: summarize: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("news: summarize: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news: summarize: http %d", resp.StatusCode)
	}

	// streamed replies are one JSON object per line; the last one wins
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	var r generateResponse
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &r); err != nil {
		return "", fmt.Errorf("news: summarize: decode: %w", err)
	}
	return strings.TrimSpace(r.Response), nil
}

// usable reports whether a model reply may replace the extracted text.
func usable(s string) bool {
	return len(strings.Fields(s)) >= MinSummaryWords && !strings.Contains(s, refusal)
}
