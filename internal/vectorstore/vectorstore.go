// Package vectorstore defines the contract every vector storage backend must
// satisfy: chunk persistence, similarity queries, collection purging, and an
// optional extended feature set (chunk editing, statistics, discovery).
// Concrete adapters (the hybrid native store, Chroma, Qdrant, Milvus) satisfy
// the Backend interface so callers never depend on a specific backend.
package vectorstore

import (
	"context"
)

// Backend is the interface for a vector storage backend. All four adapters
// implement it with identical caller-visible semantics; a caller selects one
// adapter at startup and holds it behind this type for the process lifetime.
// Implementations must be safe to call from multiple goroutines.
type Backend interface {
	// Initialize performs one-time backend setup: capability probing and
	// remote collection/schema creation. It wraps ErrBackendUnavailable when
	// the backend cannot be reached or configured. Callers must not use a
	// backend whose Initialize failed.
	Initialize(ctx context.Context, s *Settings) error

	// HealthCheck reports backend liveness. It never returns an error; an
	// unreachable backend is simply unhealthy. A probed collection that does
	// not exist yet is a healthy state, not a failure.
	HealthCheck(ctx context.Context) bool

	// GetSavedHashes returns the content hashes currently stored for the
	// collection. A collection that has never been created yields an empty
	// slice, not an error. Order is not significant.
	GetSavedHashes(ctx context.Context, collectionID string, s *Settings) ([]string, error)

	// InsertVectorItems upserts each item by its content hash. An empty item
	// slice is a no-op that performs zero network calls. Items carrying a
	// pre-computed Vector are passed through as-is instead of requesting
	// server-side embedding.
	InsertVectorItems(ctx context.Context, collectionID string, items []VectorItem, s *Settings) error

	// DeleteVectorItems removes items by hash. Deleting a hash that does not
	// exist is not an error.
	DeleteVectorItems(ctx context.Context, collectionID string, hashes []string, s *Settings) error

	// QueryCollection returns the topK highest-scoring items at or above
	// s.ScoreThreshold, scoped to the given collection only. Results are
	// relevance-descending as returned by the backend; this layer never
	// re-sorts. A non-nil vector skips server-side query embedding.
	QueryCollection(ctx context.Context, collectionID, text string, topK int, s *Settings, vector []float32) (*QueryResult, error)

	// QueryMultipleCollections queries each collection id independently and
	// returns a result per id. A failure querying one collection never fails
	// the others: that collection's entry degrades to an empty QueryResult
	// and a warning is logged.
	QueryMultipleCollections(ctx context.Context, collectionIDs []string, text string, topK int, threshold float64, s *Settings, vector []float32) (map[string]*QueryResult, error)

	// PurgeVectorIndex deletes every item scoped to one collection.
	PurgeVectorIndex(ctx context.Context, collectionID string, s *Settings) error

	// PurgeAllVectorIndexes deletes every item the backend holds across all
	// collections and tenants, regardless of any scoping in s. Irreversible.
	PurgeAllVectorIndexes(ctx context.Context, s *Settings) error

	// ListChunks returns one page of stored chunks. Backends without the
	// extended feature set degrade to wrapping the saved hash list with
	// empty text and metadata.
	ListChunks(ctx context.Context, collectionID string, offset, limit int, s *Settings) (*ChunkPage, error)

	// GetChunk returns a single chunk by hash, or (nil, nil) when the chunk
	// is absent or the backend cannot address single chunks.
	GetChunk(ctx context.Context, collectionID, hash string, s *Settings) (*Chunk, error)

	// UpdateChunkText replaces a chunk's text. The stored embedding becomes
	// stale and is regenerated by the backend; the metadata bag is preserved.
	// Wraps ErrCapabilityUnavailable when no backend supports it.
	UpdateChunkText(ctx context.Context, collectionID, hash, text string, s *Settings) error

	// UpdateChunkMetadata replaces a chunk's metadata bag without touching
	// the text or triggering re-embedding.
	// Wraps ErrCapabilityUnavailable when no backend supports it.
	UpdateChunkMetadata(ctx context.Context, collectionID, hash string, meta map[string]any, s *Settings) error

	// GetStats returns the aggregate item count plus any backend-reported
	// statistics for the collection.
	GetStats(ctx context.Context, collectionID string, s *Settings) (*Stats, error)

	// DiscoverCollections enumerates every collection known to the backend,
	// or (nil, nil) when the backend cannot enumerate.
	DiscoverCollections(ctx context.Context, s *Settings) ([]string, error)
}

// Embedder converts text into dense vector embeddings. It is the boundary to
// the embedding-generation subsystem, which lives outside this layer; the CLI
// uses it to compute client-side vectors that adapters forward untouched.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
