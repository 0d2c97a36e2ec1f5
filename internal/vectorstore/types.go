package vectorstore

// VectorItem is one embeddable unit of text. Identity is the content hash:
// two items with the same hash in the same collection are the same logical
// chunk, so insert is an upsert by hash, never an append.
type VectorItem struct {
	// Hash is the stable content hash identifying this chunk.
	Hash string `json:"hash"`

	// Text is the raw chunk text.
	Text string `json:"text"`

	// Index is the chunk's position within its source document.
	Index int `json:"index"`

	// Vector is an optional pre-computed embedding. When non-nil, adapters
	// forward it instead of requesting server-side embedding.
	Vector []float32 `json:"vector,omitempty"`

	// Metadata is the open domain-metadata bag: importance, keyword
	// associations, custom weights, grouping, activation conditions,
	// summarization linkage, parent hash. Backends without a native schema
	// for these fields carry them as payload metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is a stored item as returned by the extended chunk endpoints.
type Chunk struct {
	// Hash is the chunk's content hash.
	Hash string `json:"hash"`
	// Text is the stored chunk text.
	Text string `json:"text"`
	// Index is the chunk's position within its source document.
	Index int `json:"index"`
	// Metadata is the stored domain-metadata bag.
	Metadata map[string]any `json:"metadata"`
}

// ChunkPage is one page of a paginated chunk listing.
type ChunkPage struct {
	// Items holds the chunks in this page.
	Items []Chunk `json:"items"`
	// Total is the total number of chunks in the collection.
	Total int `json:"total"`
	// Offset is the page's starting position.
	Offset int `json:"offset"`
	// Limit is the requested page size.
	Limit int `json:"limit"`
}

// QueryResult is the fixed result shape every adapter normalizes its backend
// response into: a relevance-descending hash list with a parallel metadata
// list. Metadata[i] belongs to Hashes[i] and carries at least "score" and
// "text" plus any backend-specific extras merged in.
type QueryResult struct {
	// Hashes lists the matching chunk hashes, highest score first.
	Hashes []string `json:"hashes"`
	// Metadata is parallel to Hashes.
	Metadata []map[string]any `json:"metadata"`
}

// EmptyResult returns the degraded empty QueryResult used when one
// collection's query fails inside a multi-collection query.
func EmptyResult() *QueryResult {
	return &QueryResult{Hashes: []string{}, Metadata: []map[string]any{}}
}

// Stats is the aggregate statistics result of the extended stats operation.
type Stats struct {
	// Count is the number of chunks stored for the collection.
	Count int `json:"count"`
	// Backend identifies the backend that produced the statistics.
	Backend string `json:"backend,omitempty"`
	// Extra carries backend-reported statistics beyond the count
	// (segment sizes, index state, etc.).
	Extra map[string]any `json:"extra,omitempty"`
}

// Settings is the active configuration supplied by the caller on every
// operation. The layer never persists it and holds no session state beyond
// the per-adapter capability flag set at Initialize.
type Settings struct {
	// Source is the embedding-provider identifier (see internal/provider).
	Source string

	// Per-provider model fields. The field consumed depends on Source.
	TransformersModel string
	OpenAIModel       string
	CohereModel       string
	OllamaModel       string
	VLLMModel         string
	GoogleModel       string

	// ScoreThreshold is the minimum relevance score a query hit must reach.
	ScoreThreshold float64

	// Provider credentials and endpoints, consumed by the parameter resolver.
	OpenAIKey      string
	CohereKey      string
	OllamaURL      string
	VLLMURL        string
	VLLMKey        string
	GoogleRegion   string
	GoogleAuthMode string

	// Backend connection parameters, consumed only at Initialize.
	NativeURL     string
	PluginURL     string
	ChromaURL     string
	QdrantURL     string
	QdrantAPIKey  string
	MilvusAddress string
	MilvusUser    string
	MilvusPass    string

	// VectorDim is the embedding dimensionality. Zero means unset; the
	// Qdrant adapter then attempts auto-detection at Initialize.
	VectorDim int

	// Headers are host-supplied HTTP headers (auth injection) attached to
	// every outbound request. Header management itself lives in the host.
	Headers map[string]string
}

// ModelFor returns the model field value matching the given provider id.
// Unknown providers yield an empty model, which the remote side rejects.
func (s *Settings) ModelFor(source string) string {
	switch source {
	case "transformers":
		return s.TransformersModel
	case "openai":
		return s.OpenAIModel
	case "cohere":
		return s.CohereModel
	case "ollama":
		return s.OllamaModel
	case "vllm":
		return s.VLLMModel
	case "google":
		return s.GoogleModel
	default:
		return ""
	}
}

// Model returns the model field value for the active Source.
func (s *Settings) Model() string {
	return s.ModelFor(s.Source)
}

// ChunkSizeStats summarizes the byte sizes of a batch of items. Adapters log
// these figures when an insert fails so oversized payloads are diagnosable
// before the original error is returned.
func ChunkSizeStats(items []VectorItem) (count, totalBytes, maxBytes int) {
	count = len(items)
	for _, it := range items {
		n := len(it.Text)
		totalBytes += n
		if n > maxBytes {
			maxBytes = n
		}
	}
	return count, totalBytes, maxBytes
}
