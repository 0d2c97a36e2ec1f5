// Package provider maps an embedding-provider identifier to the extra
// request fields each provider needs on insert and query calls. The mapping
// is a closed registry: unknown providers fail validation at configuration
// load rather than silently producing empty fields at request time.
package provider

import (
	"fmt"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// Source enumerates the supported embedding providers.
type Source string

const (
	// SourceTransformers selects the host's local transformers pipeline.
	SourceTransformers Source = "transformers"
	// SourceOpenAI selects the OpenAI embeddings API.
	SourceOpenAI Source = "openai"
	// SourceCohere selects the Cohere embeddings API, which distinguishes
	// query embeddings from document embeddings.
	SourceCohere Source = "cohere"
	// SourceOllama selects a proxy-style Ollama endpoint.
	SourceOllama Source = "ollama"
	// SourceVLLM selects a proxy-style vLLM endpoint.
	SourceVLLM Source = "vllm"
	// SourceGoogle selects Google's embedding API (MakerSuite or Vertex AI).
	SourceGoogle Source = "google"
)

// registry is the closed set of recognized providers.
var registry = map[Source]bool{
	SourceTransformers: true,
	SourceOpenAI:       true,
	SourceCohere:       true,
	SourceOllama:       true,
	SourceVLLM:         true,
	SourceGoogle:       true,
}

// Validate reports whether source names a registered provider. Called at
// configuration load so misconfiguration fails fast, before the first request.
func Validate(source string) error {
	if !registry[Source(source)] {
		return fmt.Errorf("provider: unknown embedding source %q — valid values: transformers, openai, cohere, ollama, vllm, google", source)
	}
	return nil
}

// Cohere input_type values: the provider embeds queries and documents
// differently and must be told which an input is.
const (
	cohereInputQuery    = "search_query"
	cohereInputDocument = "search_document"
)

// defaultGoogleAuthMode is used when the settings do not pick an auth mode.
const defaultGoogleAuthMode = "makersuite"

// ExtraFields are the provider-specific fields layered onto every insert and
// query request body. All fields are optional; providers needing none of
// them (transformers, openai) produce the zero value.
type ExtraFields struct {
	// APIURL is the alternate endpoint URL for proxy-style providers.
	APIURL string `json:"apiUrl,omitempty"`
	// APIKey is the alternate endpoint credential for proxy-style providers.
	APIKey string `json:"apiKey,omitempty"`
	// InputType distinguishes query from document embedding for providers
	// that embed the two differently.
	InputType string `json:"input_type,omitempty"`
	// Region is the cloud region for providers that require one.
	Region string `json:"region,omitempty"`
	// AuthMode selects the cloud auth flavour (e.g. makersuite, vertexai).
	AuthMode string `json:"auth_mode,omitempty"`
}

// Resolve returns the extra request fields for the active provider in s.
// isQuery selects query-mode fields for providers that distinguish query
// embeddings from document embeddings. Resolve is pure: same settings in,
// same fields out — it runs on every request and must stay side-effect-free.
func Resolve(s *vectorstore.Settings, isQuery bool) ExtraFields {
	switch Source(s.Source) {
	case SourceOllama:
		return ExtraFields{APIURL: s.OllamaURL}
	case SourceVLLM:
		return ExtraFields{APIURL: s.VLLMURL, APIKey: s.VLLMKey}
	case SourceCohere:
		input := cohereInputDocument
		if isQuery {
			input = cohereInputQuery
		}
		return ExtraFields{InputType: input}
	case SourceGoogle:
		mode := s.GoogleAuthMode
		if mode == "" {
			mode = defaultGoogleAuthMode
		}
		return ExtraFields{Region: s.GoogleRegion, AuthMode: mode}
	default:
		// transformers and openai need only the model field, which travels
		// separately on every request.
		return ExtraFields{}
	}
}
