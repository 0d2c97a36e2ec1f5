package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
backend: qdrant
embedding:
  source: cohere
  cohere_model: embed-english-v3.0
  dimensions: 1024
plugin:
  url: http://plugin.internal:8000
qdrant:
  url: http://qdrant.internal:6333
query:
  score_threshold: 0.25
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"VECTOR_BACKEND", "VECTOR_SOURCE", "COHERE_MODEL", "VECTOR_DIMENSIONS",
		"PLUGIN_URL", "QDRANT_URL", "SCORE_THRESHOLD",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"VECTOR_BACKEND":    "qdrant",
		"VECTOR_SOURCE":     "cohere",
		"COHERE_MODEL":      "embed-english-v3.0",
		"VECTOR_DIMENSIONS": "1024",
		"PLUGIN_URL":        "http://plugin.internal:8000",
		"QDRANT_URL":        "http://qdrant.internal:6333",
		"SCORE_THRESHOLD":   "0.25",
		"LOG_LEVEL":         "debug",
		"LOG_FORMAT":        "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
backend: chroma
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("VECTOR_BACKEND", "milvus")

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("VECTOR_BACKEND"); got != "milvus" {
		t.Errorf("VECTOR_BACKEND: expected env override %q, got %q", "milvus", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestSettings_UnknownSourceFailsFast(t *testing.T) {
	t.Setenv("VECTOR_SOURCE", "carrier-pigeon")

	if _, err := Settings(); err == nil {
		t.Fatal("expected error for unknown embedding source")
	}
}

func TestSettings_FromEnv(t *testing.T) {
	t.Setenv("VECTOR_SOURCE", "ollama")
	t.Setenv("OLLAMA_MODEL", "nomic-embed-text")
	t.Setenv("OLLAMA_URL", "http://ollama.internal:11434")
	t.Setenv("SCORE_THRESHOLD", "0.3")
	t.Setenv("VECTOR_DIMENSIONS", "768")

	s, err := Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if s.Source != "ollama" {
		t.Errorf("Source: got %q", s.Source)
	}
	if s.Model() != "nomic-embed-text" {
		t.Errorf("Model(): got %q", s.Model())
	}
	if s.OllamaURL != "http://ollama.internal:11434" {
		t.Errorf("OllamaURL: got %q", s.OllamaURL)
	}
	if s.ScoreThreshold != 0.3 {
		t.Errorf("ScoreThreshold: got %v", s.ScoreThreshold)
	}
	if s.VectorDim != 768 {
		t.Errorf("VectorDim: got %d", s.VectorDim)
	}
}

func TestFloatStr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0.0, ""},
		{0.2, "0.2"},
		{0.25, "0.25"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := floatStr(tt.in); got != tt.want {
			t.Errorf("floatStr(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
