package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// OllamaEmbedder computes embeddings through an Ollama instance via
// POST /api/embed. Requests set truncate so a chunk longer than the model's
// context window is cut server-side instead of failing the whole batch.
// Safe for concurrent use; Ollama needs no API key.
type OllamaEmbedder struct {
	host   string
	model  string
	client *http.Client
}

// NewOllamaEmbedder constructs an OllamaEmbedder from the active settings,
// falling back to the local default host and the nomic embedding model when
// the settings leave them empty.
func NewOllamaEmbedder(s *vectorstore.Settings) *OllamaEmbedder {
	e := &OllamaEmbedder{
		host:   s.OllamaURL,
		model:  s.OllamaModel,
		client: httpClient,
	}
	if e.host == "" {
		e.host = defaultOllamaHost
	}
	if e.model == "" {
		e.model = defaultOllamaModel
	}
	return e
}

type ollamaEmbedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{
		Model:    e.model,
		Input:    texts,
		Truncate: true,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama read response: %w", err)
	}

	var result ollamaEmbedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("embedder: ollama decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Error != "" {
			return nil, fmt.Errorf("embedder: ollama: %s", result.Error)
		}
		return nil, fmt.Errorf("embedder: ollama: HTTP %d", resp.StatusCode)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder: ollama returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}
	for i, vec := range result.Embeddings {
		if len(vec) == 0 {
			return nil, fmt.Errorf("embedder: ollama returned an empty embedding at index %d", i)
		}
	}
	return result.Embeddings, nil
}
