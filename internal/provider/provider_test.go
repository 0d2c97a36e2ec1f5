package provider

import (
	"testing"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"transformers", "openai", "cohere", "ollama", "vllm", "google"} {
		if err := Validate(source); err != nil {
			t.Errorf("Validate(%q): unexpected error: %v", source, err)
		}
	}

	for _, source := range []string{"", "palm", "OPENAI", "qdrant"} {
		if err := Validate(source); err == nil {
			t.Errorf("Validate(%q): expected error for unknown provider", source)
		}
	}
}

func TestResolve_ProxyProviders(t *testing.T) {
	t.Parallel()

	s := &vectorstore.Settings{
		Source:    "ollama",
		OllamaURL: "http://ollama.internal:11434",
		VLLMURL:   "http://vllm.internal:8000",
		VLLMKey:   "vllm-secret",
	}

	got := Resolve(s, false)
	if got.APIURL != "http://ollama.internal:11434" {
		t.Errorf("ollama APIURL = %q", got.APIURL)
	}
	if got.APIKey != "" {
		t.Errorf("ollama APIKey should stay empty, got %q", got.APIKey)
	}

	s.Source = "vllm"
	got = Resolve(s, true)
	if got.APIURL != "http://vllm.internal:8000" || got.APIKey != "vllm-secret" {
		t.Errorf("vllm fields = %+v", got)
	}
}

func TestResolve_CohereInputType(t *testing.T) {
	t.Parallel()

	s := &vectorstore.Settings{Source: "cohere"}

	if got := Resolve(s, true); got.InputType != "search_query" {
		t.Errorf("query InputType = %q, want search_query", got.InputType)
	}
	if got := Resolve(s, false); got.InputType != "search_document" {
		t.Errorf("document InputType = %q, want search_document", got.InputType)
	}
}

func TestResolve_GoogleDefaults(t *testing.T) {
	t.Parallel()

	s := &vectorstore.Settings{Source: "google", GoogleRegion: "us-central1"}
	got := Resolve(s, false)
	if got.AuthMode != "makersuite" {
		t.Errorf("default AuthMode = %q, want makersuite", got.AuthMode)
	}
	if got.Region != "us-central1" {
		t.Errorf("Region = %q", got.Region)
	}

	s.GoogleAuthMode = "vertexai"
	if got := Resolve(s, false); got.AuthMode != "vertexai" {
		t.Errorf("explicit AuthMode = %q, want vertexai", got.AuthMode)
	}
}

// Resolve must be idempotent — it runs on every request.
func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	s := &vectorstore.Settings{Source: "cohere", CohereModel: "embed-english-v3.0"}
	first := Resolve(s, true)
	for range 5 {
		if got := Resolve(s, true); got != first {
			t.Fatalf("Resolve not idempotent: %+v != %+v", got, first)
		}
	}
}

func TestResolve_NoExtraFieldsForLocalAndOpenAI(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"transformers", "openai"} {
		s := &vectorstore.Settings{Source: source, OpenAIKey: "sk-1"}
		if got := Resolve(s, true); got != (ExtraFields{}) {
			t.Errorf("%s: expected zero ExtraFields, got %+v", source, got)
		}
	}
}
