// Package embedder provides client-side embedding for the precomputed-vector
// path: the CLI fills VectorItem.Vector before insert (and the query vector
// before search) so the backend skips its own embedding step. The storage
// layer itself never computes embeddings. Each client is a plain JSON/HTTP
// adapter over the provider's embeddings endpoint.
package embedder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// Defaults applied when the settings leave the corresponding field empty.
const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"
)

// openAIBaseURL is the hosted OpenAI embeddings API base.
const openAIBaseURL = "https://api.openai.com/v1"

// httpClient is shared by every embedder client. The timeout covers large
// batches on CPU-bound local models.
var httpClient = &http.Client{Timeout: 60 * time.Second}

// New constructs a client-side vectorstore.Embedder for the provider selected
// in s. Only providers with a directly reachable embeddings endpoint are
// supported here: ollama, vllm (OpenAI-compatible), and openai. The remaining
// providers (transformers, cohere, google) embed server-side only — the host
// or the extension holds their credentials, and items travel without a
// pre-computed vector.
func New(s *vectorstore.Settings) (vectorstore.Embedder, error) {
	switch s.Source {
	case "ollama":
		return NewOllamaEmbedder(s), nil
	case "openai":
		return NewOpenAIEmbedder(s)
	case "vllm":
		return NewVLLMEmbedder(s)
	default:
		return nil, fmt.Errorf("embedder: source %q embeds server-side only — client-side vectors are available for ollama, vllm, and openai", s.Source)
	}
}
