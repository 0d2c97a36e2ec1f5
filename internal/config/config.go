// Package config provides YAML-based configuration for vecthare.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so existing workflows are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. VECTHARE_CONFIG environment variable
//  3. ~/.vecthare/config.yaml
//  4. ./vecthare.yaml
//
// If no file is found the system runs entirely from env vars (backwards compatible).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vecthare/vecthare-go/internal/provider"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming (lowercase, underscored).
type Config struct {
	// Backend selects the vector backend: vectra, chroma, qdrant, milvus.
	Backend string `yaml:"backend"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Native configures the host-native vector API used by the vectra backend.
	Native NativeConfig `yaml:"native"`

	// Plugin configures the extension's unified vector API.
	Plugin PluginConfig `yaml:"plugin"`

	// Chroma configures the Chroma store connection.
	Chroma ChromaConfig `yaml:"chroma"`

	// Qdrant configures the Qdrant store connection.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Milvus configures the Milvus store connection.
	Milvus MilvusConfig `yaml:"milvus"`

	// Query configures similarity-query behaviour.
	Query QueryConfig `yaml:"query"`

	// Transport configures the shared outbound HTTP client.
	Transport TransportConfig `yaml:"transport"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Journal configures the CLI operation journal.
	Journal JournalConfig `yaml:"journal"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Source selects the provider: transformers, openai, cohere, ollama,
	// vllm, google.
	Source string `yaml:"source"`
	// Per-provider model names. The field consumed depends on Source.
	TransformersModel string `yaml:"transformers_model"`
	OpenAIModel       string `yaml:"openai_model"`
	CohereModel       string `yaml:"cohere_model"`
	OllamaModel       string `yaml:"ollama_model"`
	VLLMModel         string `yaml:"vllm_model"`
	GoogleModel       string `yaml:"google_model"`
	// OpenAIKey is the OpenAI API key. Prefer env var OPENAI_API_KEY.
	OpenAIKey string `yaml:"openai_key"`
	// CohereKey is the Cohere API key. Prefer env var COHERE_API_KEY.
	CohereKey string `yaml:"cohere_key"`
	// OllamaURL is the proxy-style Ollama endpoint.
	OllamaURL string `yaml:"ollama_url"`
	// VLLMURL is the proxy-style vLLM endpoint.
	VLLMURL string `yaml:"vllm_url"`
	// VLLMKey is the vLLM API key. Prefer env var VLLM_API_KEY.
	VLLMKey string `yaml:"vllm_key"`
	// GoogleRegion is the cloud region for the google provider.
	GoogleRegion string `yaml:"google_region"`
	// GoogleAuthMode is makersuite (default) or vertexai.
	GoogleAuthMode string `yaml:"google_auth_mode"`
	// Dimensions is the embedding vector length. Zero lets the Qdrant
	// adapter auto-detect it at initialization.
	Dimensions int `yaml:"dimensions"`
}

// NativeConfig holds the host-native vector API settings.
type NativeConfig struct {
	// URL is the host application base URL.
	URL string `yaml:"url"`
}

// PluginConfig holds the extension API settings.
type PluginConfig struct {
	// URL is the extension host base URL.
	URL string `yaml:"url"`
}

// ChromaConfig holds Chroma store settings.
type ChromaConfig struct {
	// URL is the Chroma server endpoint.
	URL string `yaml:"url"`
}

// QdrantConfig holds Qdrant store settings.
type QdrantConfig struct {
	// URL is the Qdrant server endpoint.
	URL string `yaml:"url"`
	// APIKey is the Qdrant API key. Prefer env var QDRANT_API_KEY.
	APIKey string `yaml:"api_key"`
}

// MilvusConfig holds Milvus store settings.
type MilvusConfig struct {
	// Address is the Milvus host:port address.
	Address string `yaml:"address"`
	// User is the Milvus username.
	User string `yaml:"user"`
	// Password is the Milvus password. Prefer env var MILVUS_PASSWORD.
	Password string `yaml:"password"`
}

// QueryConfig holds similarity-query settings.
type QueryConfig struct {
	// ScoreThreshold is the minimum relevance score a hit must reach.
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// TransportConfig holds outbound HTTP client settings.
type TransportConfig struct {
	// RateLimit is the sustained outbound request rate (req/s). Zero disables.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the maximum instantaneous burst when RateLimit is set.
	RateBurst int `yaml:"rate_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// JournalConfig holds CLI operation journal settings.
type JournalConfig struct {
	// DBPath is the SQLite database path. Set to "disabled" to disable.
	DBPath string `yaml:"db_path"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"VECTOR_BACKEND", func(c *Config) string { return c.Backend }},
	{"VECTOR_SOURCE", func(c *Config) string { return c.Embedding.Source }},
	{"TRANSFORMERS_MODEL", func(c *Config) string { return c.Embedding.TransformersModel }},
	{"OPENAI_MODEL", func(c *Config) string { return c.Embedding.OpenAIModel }},
	{"COHERE_MODEL", func(c *Config) string { return c.Embedding.CohereModel }},
	{"OLLAMA_MODEL", func(c *Config) string { return c.Embedding.OllamaModel }},
	{"VLLM_MODEL", func(c *Config) string { return c.Embedding.VLLMModel }},
	{"GOOGLE_MODEL", func(c *Config) string { return c.Embedding.GoogleModel }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.Embedding.OpenAIKey }},
	{"COHERE_API_KEY", func(c *Config) string { return c.Embedding.CohereKey }},
	{"OLLAMA_URL", func(c *Config) string { return c.Embedding.OllamaURL }},
	{"VLLM_URL", func(c *Config) string { return c.Embedding.VLLMURL }},
	{"VLLM_API_KEY", func(c *Config) string { return c.Embedding.VLLMKey }},
	{"GOOGLE_REGION", func(c *Config) string { return c.Embedding.GoogleRegion }},
	{"GOOGLE_AUTH_MODE", func(c *Config) string { return c.Embedding.GoogleAuthMode }},
	{"VECTOR_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"NATIVE_URL", func(c *Config) string { return c.Native.URL }},
	{"PLUGIN_URL", func(c *Config) string { return c.Plugin.URL }},
	{"CHROMA_URL", func(c *Config) string { return c.Chroma.URL }},
	{"QDRANT_URL", func(c *Config) string { return c.Qdrant.URL }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"MILVUS_ADDRESS", func(c *Config) string { return c.Milvus.Address }},
	{"MILVUS_USER", func(c *Config) string { return c.Milvus.User }},
	{"MILVUS_PASSWORD", func(c *Config) string { return c.Milvus.Password }},
	{"SCORE_THRESHOLD", func(c *Config) string { return floatStr(c.Query.ScoreThreshold) }},
	{"TRANSPORT_RATE_LIMIT", func(c *Config) string { return floatStr(c.Transport.RateLimit) }},
	{"TRANSPORT_RATE_BURST", func(c *Config) string { return intStr(c.Transport.RateBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"VECTHARE_JOURNAL_DB", func(c *Config) string { return c.Journal.DBPath }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" || yamlVal == "0" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set — do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// defaultSource is the embedding provider used when VECTOR_SOURCE is unset.
const defaultSource = "transformers"

// Settings materialises a vectorstore.Settings from the environment. It
// validates the embedding source against the provider registry so a
// misconfigured provider fails here, at load, rather than producing empty
// extra fields on the first request.
func Settings() (*vectorstore.Settings, error) {
	source := getEnvOrDefault("VECTOR_SOURCE", defaultSource)
	if err := provider.Validate(source); err != nil {
		return nil, err
	}

	return &vectorstore.Settings{
		Source:            source,
		TransformersModel: os.Getenv("TRANSFORMERS_MODEL"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		CohereModel:       os.Getenv("COHERE_MODEL"),
		OllamaModel:       os.Getenv("OLLAMA_MODEL"),
		VLLMModel:         os.Getenv("VLLM_MODEL"),
		GoogleModel:       os.Getenv("GOOGLE_MODEL"),
		ScoreThreshold:    getEnvFloat("SCORE_THRESHOLD", 0),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		CohereKey:         os.Getenv("COHERE_API_KEY"),
		OllamaURL:         os.Getenv("OLLAMA_URL"),
		VLLMURL:           os.Getenv("VLLM_URL"),
		VLLMKey:           os.Getenv("VLLM_API_KEY"),
		GoogleRegion:      os.Getenv("GOOGLE_REGION"),
		GoogleAuthMode:    os.Getenv("GOOGLE_AUTH_MODE"),
		NativeURL:         getEnvOrDefault("NATIVE_URL", "http://localhost:8000"),
		PluginURL:         getEnvOrDefault("PLUGIN_URL", "http://localhost:8000"),
		ChromaURL:         getEnvOrDefault("CHROMA_URL", "http://localhost:8000"),
		QdrantURL:         getEnvOrDefault("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		MilvusAddress:     getEnvOrDefault("MILVUS_ADDRESS", "localhost:19530"),
		MilvusUser:        os.Getenv("MILVUS_USER"),
		MilvusPass:        os.Getenv("MILVUS_PASSWORD"),
		VectorDim:         getEnvInt("VECTOR_DIMENSIONS", 0),
	}, nil
}

// Backend returns the configured vector backend name, defaulting to vectra.
func Backend() string {
	return getEnvOrDefault("VECTOR_BACKEND", "vectra")
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("VECTHARE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".vecthare", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("vecthare.yaml"); err == nil {
		return "vecthare.yaml"
	}

	return ""
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat returns the float value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// floatStr converts a float64 to string, returning "" for zero values.
func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
