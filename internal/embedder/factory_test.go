package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

func TestNew_SelectsClientPerSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		s       vectorstore.Settings
		wantErr bool
	}{
		{"ollama", vectorstore.Settings{Source: "ollama"}, false},
		{"openai with key", vectorstore.Settings{Source: "openai", OpenAIKey: "sk-test"}, false},
		{"openai without key", vectorstore.Settings{Source: "openai"}, true},
		{"vllm with url", vectorstore.Settings{Source: "vllm", VLLMURL: "http://vllm:8000"}, false},
		{"vllm without url", vectorstore.Settings{Source: "vllm"}, true},
		{"transformers is server-side only", vectorstore.Settings{Source: "transformers"}, true},
		{"cohere is server-side only", vectorstore.Settings{Source: "cohere"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			emb, err := New(&tt.s)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if emb == nil {
				t.Fatal("New returned nil embedder")
			}
		})
	}
}

func TestNewOllamaEmbedder_Defaults(t *testing.T) {
	t.Parallel()

	e := NewOllamaEmbedder(&vectorstore.Settings{})
	if e.host != defaultOllamaHost || e.model != defaultOllamaModel {
		t.Errorf("defaults = %q/%q", e.host, e.model)
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body struct {
			Model    string   `json:"model"`
			Input    []string `json:"input"`
			Truncate bool     `json:"truncate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "nomic-embed-text" {
			t.Errorf("model = %q", body.Model)
		}
		if !body.Truncate {
			t.Error("truncate not set; oversized chunks would fail the batch")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&vectorstore.Settings{OllamaURL: srv.URL})
	vecs, err := emb.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 2 {
		t.Errorf("vecs = %v", vecs)
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1}},
		})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&vectorstore.Settings{OllamaURL: srv.URL, OllamaModel: "m"})
	if _, err := emb.Embed(context.Background(), []string{"one", "two"}); err == nil {
		t.Fatal("expected error for embedding count mismatch")
	}
}

func TestOpenAICompatEmbedder_ReordersByIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		// Out-of-order response: the client must place rows by index.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.2}, "index": 1},
				{"embedding": []float32{0.1}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	emb, err := NewVLLMEmbedder(&vectorstore.Settings{VLLMURL: srv.URL, VLLMKey: "sk-test", VLLMModel: "intfloat/e5-small"})
	if err != nil {
		t.Fatalf("NewVLLMEmbedder: %v", err)
	}
	vecs, err := emb.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vecs[0][0] != 0.1 || vecs[1][0] != 0.2 {
		t.Errorf("vecs = %v, want placed by index", vecs)
	}
}

// A keyless vLLM server must not receive an Authorization header.
func TestOpenAICompatEmbedder_NoKeyNoAuthHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header sent without an API key")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.5}, "index": 0}},
		})
	}))
	defer srv.Close()

	emb, err := NewVLLMEmbedder(&vectorstore.Settings{VLLMURL: srv.URL})
	if err != nil {
		t.Fatalf("NewVLLMEmbedder: %v", err)
	}
	if _, err := emb.Embed(context.Background(), []string{"one"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
}

func TestLooksLikeChatModel(t *testing.T) {
	t.Parallel()

	chat := []string{"gpt-4o", "LLaMA3-8B", "mistral-7b-instruct"}
	for _, m := range chat {
		if !looksLikeChatModel(m) {
			t.Errorf("looksLikeChatModel(%q) = false", m)
		}
	}
	embedding := []string{"nomic-embed-text", "text-embedding-3-small", "embed-english-v3.0"}
	for _, m := range embedding {
		if looksLikeChatModel(m) {
			t.Errorf("looksLikeChatModel(%q) = true", m)
		}
	}
}
