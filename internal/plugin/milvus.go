package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vecthare/vecthare-go/internal/collection"
	"github.com/vecthare/vecthare-go/internal/provider"
	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// backendMilvus is the unified-API discriminator for the Milvus backend.
const backendMilvus = "milvus"

// Milvus implements vectorstore.Backend over the extension's unified API for
// the Milvus store. Like Qdrant it is multitenant: every request targets the
// shared physical collection with a (type, sourceId) filter decoded from the
// logical collection id. Unlike Qdrant it performs no dimensionality
// auto-detection — Milvus schema creation requires an explicit dimension or
// none at all (client-computed vectors).
type Milvus struct {
	// t is the shared transport used to build the API client at Initialize.
	t *transport.Client
	// client speaks the unified API; set at Initialize.
	client *Client
	// log is the structured logger for degraded-path warnings.
	log *slog.Logger
}

// NewMilvus constructs an uninitialized Milvus adapter. Initialize must
// succeed before any other method is called.
func NewMilvus(t *transport.Client, log *slog.Logger) *Milvus {
	return &Milvus{t: t, log: log}
}

// base builds the request fields shared by every Milvus call, with the
// tenant filter attached.
func (m *Milvus) base(collectionID string, s *vectorstore.Settings, isQuery bool) Request {
	ref := collection.Decode(collectionID)
	return Request{
		Backend:      backendMilvus,
		CollectionID: sharedCollection,
		Source:       s.Source,
		Model:        s.Model(),
		ExtraFields:  provider.Resolve(s, isQuery),
		Filters:      &Filters{Type: ref.Type, SourceID: ref.SourceID},
	}
}

// Initialize connects the extension to the Milvus store and ensures the
// shared collection schema exists.
func (m *Milvus) Initialize(ctx context.Context, s *vectorstore.Settings) error {
	m.client = NewClient(m.t, s.PluginURL)
	req := &InitRequest{
		Request:   Request{Backend: backendMilvus, CollectionID: sharedCollection, Source: s.Source, Model: s.Model()},
		Address:   s.MilvusAddress,
		User:      s.MilvusUser,
		Password:  s.MilvusPass,
		VectorDim: s.VectorDim,
	}
	if err := m.client.Init(ctx, req); err != nil {
		return fmt.Errorf("milvus: %w: %w", vectorstore.ErrBackendUnavailable, err)
	}
	return nil
}

// HealthCheck reports whether the extension can reach the Milvus store.
func (m *Milvus) HealthCheck(ctx context.Context) bool {
	return m.client.Health(ctx, backendMilvus)
}

// GetSavedHashes returns the hashes stored for the tenant behind the
// logical collection id.
func (m *Milvus) GetSavedHashes(ctx context.Context, collectionID string, s *vectorstore.Settings) ([]string, error) {
	req := m.base(collectionID, s, false)
	return m.client.Hashes(ctx, &req)
}

// InsertVectorItems upserts items by hash into the shared collection under
// the tenant filter, forwarding the full domain-metadata bag as payload
// metadata. An empty batch performs no network call.
func (m *Milvus) InsertVectorItems(ctx context.Context, collectionID string, items []vectorstore.VectorItem, s *vectorstore.Settings) error {
	if len(items) == 0 {
		return nil
	}
	req := &InsertRequest{Request: m.base(collectionID, s, false), Items: items}
	if err := m.client.Insert(ctx, req); err != nil {
		logInsertFailure(m.log, backendMilvus, collectionID, items, err)
		return err
	}
	return nil
}

// DeleteVectorItems removes items by hash; missing hashes are not an error.
func (m *Milvus) DeleteVectorItems(ctx context.Context, collectionID string, hashes []string, s *vectorstore.Settings) error {
	req := &DeleteRequest{Request: m.base(collectionID, s, false), Hashes: hashes}
	return m.client.Delete(ctx, req)
}

// query runs one tenant-scoped query with an explicit threshold.
func (m *Milvus) query(ctx context.Context, collectionID, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	req := &QueryRequest{
		Request:    m.base(collectionID, s, true),
		SearchText: text,
		TopK:       topK,
		Threshold:  threshold,
		Vector:     vector,
	}
	return m.client.Query(ctx, req)
}

// QueryCollection returns the topK best matches at or above the settings
// score threshold, scoped to the tenant behind the logical collection id.
func (m *Milvus) QueryCollection(ctx context.Context, collectionID, text string, topK int, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	return m.query(ctx, collectionID, text, topK, s.ScoreThreshold, s, vector)
}

// QueryMultipleCollections fans out one query per collection. A failed
// collection degrades to an empty result and never fails the others.
func (m *Milvus) QueryMultipleCollections(ctx context.Context, collectionIDs []string, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (map[string]*vectorstore.QueryResult, error) {
	return queryEach(ctx, m.log, collectionIDs, threshold, func(ctx context.Context, id string, th float64) (*vectorstore.QueryResult, error) {
		return m.query(ctx, id, text, topK, th, s, vector)
	}), nil
}

// PurgeVectorIndex removes only one tenant's data from the shared
// collection: the tenant filter travels with the purge.
func (m *Milvus) PurgeVectorIndex(ctx context.Context, collectionID string, s *vectorstore.Settings) error {
	req := m.base(collectionID, s, false)
	return m.client.Purge(ctx, &req)
}

// PurgeAllVectorIndexes deletes the entire shared collection contents across
// all tenants. No filter = delete everything, deliberately.
func (m *Milvus) PurgeAllVectorIndexes(ctx context.Context, s *vectorstore.Settings) error {
	return m.client.PurgeAll(ctx, backendMilvus)
}

// ListChunks returns one page of the tenant's chunks.
func (m *Milvus) ListChunks(ctx context.Context, collectionID string, offset, limit int, s *vectorstore.Settings) (*vectorstore.ChunkPage, error) {
	ref := collection.Decode(collectionID)
	return m.client.ListChunks(ctx, backendMilvus, sharedCollection, offset, limit, &Filters{Type: ref.Type, SourceID: ref.SourceID})
}

// GetChunk returns a single chunk by hash, or (nil, nil) when absent.
func (m *Milvus) GetChunk(ctx context.Context, collectionID, hash string, s *vectorstore.Settings) (*vectorstore.Chunk, error) {
	ref := collection.Decode(collectionID)
	return m.client.GetChunk(ctx, backendMilvus, sharedCollection, hash, &Filters{Type: ref.Type, SourceID: ref.SourceID})
}

// UpdateChunkText replaces a chunk's text; the extension re-embeds it.
func (m *Milvus) UpdateChunkText(ctx context.Context, collectionID, hash, text string, s *vectorstore.Settings) error {
	req := &UpdateTextRequest{Request: m.base(collectionID, s, false), Text: text}
	return m.client.UpdateChunkText(ctx, hash, req)
}

// UpdateChunkMetadata replaces a chunk's metadata without re-embedding.
func (m *Milvus) UpdateChunkMetadata(ctx context.Context, collectionID, hash string, meta map[string]any, s *vectorstore.Settings) error {
	req := &UpdateMetaRequest{Request: m.base(collectionID, s, false), Metadata: meta}
	return m.client.UpdateChunkMetadata(ctx, hash, req)
}

// GetStats returns the tenant's aggregate statistics.
func (m *Milvus) GetStats(ctx context.Context, collectionID string, s *vectorstore.Settings) (*vectorstore.Stats, error) {
	ref := collection.Decode(collectionID)
	return m.client.Stats(ctx, backendMilvus, sharedCollection, &Filters{Type: ref.Type, SourceID: ref.SourceID})
}

// DiscoverCollections enumerates the logical collections present in the
// shared physical collection, as reported by the extension.
func (m *Milvus) DiscoverCollections(ctx context.Context, s *vectorstore.Settings) ([]string, error) {
	return m.client.Collections(ctx, backendMilvus)
}
