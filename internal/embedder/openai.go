package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// OpenAICompatEmbedder speaks the OpenAI embeddings API shape, which both
// OpenAI itself and a vLLM server expose. Auth is a Bearer token; an empty
// key sends no Authorization header (vLLM often runs without one).
// Safe for concurrent use.
type OpenAICompatEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

// NewOpenAIEmbedder constructs an embedder against the hosted OpenAI API.
// The key is mandatory; the model falls back to the small embedding model
// and the dimensionality hint is taken from VectorDim when set.
func NewOpenAIEmbedder(s *vectorstore.Settings) (*OpenAICompatEmbedder, error) {
	if s.OpenAIKey == "" {
		return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY")
	}
	model := s.OpenAIModel
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAICompatEmbedder{
		baseURL:    openAIBaseURL,
		apiKey:     s.OpenAIKey,
		model:      model,
		dimensions: s.VectorDim,
		client:     httpClient,
	}, nil
}

// NewVLLMEmbedder constructs an embedder against a vLLM server, which serves
// the OpenAI embeddings API under /v1 on its own endpoint.
func NewVLLMEmbedder(s *vectorstore.Settings) (*OpenAICompatEmbedder, error) {
	if s.VLLMURL == "" {
		return nil, fmt.Errorf("embedder: vllm requires VLLM_URL")
	}
	return &OpenAICompatEmbedder{
		baseURL:    strings.TrimRight(s.VLLMURL, "/") + "/v1",
		apiKey:     s.VLLMKey,
		model:      s.VLLMModel,
		dimensions: s.VectorDim,
		client:     httpClient,
	}, nil
}

type openaiEmbedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *OpenAICompatEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(openaiEmbedRequest{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: openai marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embedder: openai create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder: openai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedder: openai read response: %w", err)
	}

	var result openaiEmbedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("embedder: openai decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Error != nil {
			return nil, fmt.Errorf("embedder: openai: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("embedder: openai: HTTP %d", resp.StatusCode)
	}

	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embedder: openai returned %d embeddings for %d texts", len(result.Data), len(texts))
	}

	// The API may return data out of order; place each row by its index.
	embeddings := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedder: openai returned index %d out of range [0, %d)", d.Index, len(texts))
		}
		embeddings[d.Index] = d.Embedding
	}
	return embeddings, nil
}
