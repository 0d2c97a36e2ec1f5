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

// backendQdrant is the unified-API discriminator for the Qdrant backend.
const backendQdrant = "qdrant"

// sharedCollection is the fixed physical collection every multitenant
// backend routes logical collections through. Isolation is enforced entirely
// by the tenant filter the store applies server-side, not by separate
// physical storage.
const sharedCollection = "vecthare"

// dimensionProbeText is the text embedded once at Initialize to measure the
// provider's embedding dimensionality when none is configured.
const dimensionProbeText = "dimension probe"

// Qdrant implements vectorstore.Backend over the extension's unified API for
// the Qdrant store. It is multitenant: every request targets the shared
// physical collection with a (type, sourceId) filter decoded from the
// logical collection id.
type Qdrant struct {
	// t is the shared transport used to build the API client at Initialize.
	t *transport.Client
	// client speaks the unified API; set at Initialize.
	client *Client
	// log is the structured logger for degraded-path warnings.
	log *slog.Logger
}

// NewQdrant constructs an uninitialized Qdrant adapter. Initialize must
// succeed before any other method is called.
func NewQdrant(t *transport.Client, log *slog.Logger) *Qdrant {
	return &Qdrant{t: t, log: log}
}

// scope maps a logical collection id onto the shared physical collection
// plus its tenant filter.
func qdrantScope(collectionID string) (string, *Filters) {
	ref := collection.Decode(collectionID)
	return sharedCollection, &Filters{Type: ref.Type, SourceID: ref.SourceID}
}

// base builds the request fields shared by every Qdrant call, with the
// tenant filter attached.
func (q *Qdrant) base(collectionID string, s *vectorstore.Settings, isQuery bool) Request {
	physical, filters := qdrantScope(collectionID)
	return Request{
		Backend:      backendQdrant,
		CollectionID: physical,
		Source:       s.Source,
		Model:        s.Model(),
		ExtraFields:  provider.Resolve(s, isQuery),
		Filters:      filters,
	}
}

// Initialize connects the extension to the Qdrant store and ensures the
// shared collection exists. When no vector dimensionality is configured it
// requests a single test embedding and uses its length; detection failure is
// non-fatal and leaves the dimensionality unset.
func (q *Qdrant) Initialize(ctx context.Context, s *vectorstore.Settings) error {
	q.client = NewClient(q.t, s.PluginURL)

	dim := s.VectorDim
	if dim == 0 {
		vec, err := q.client.Embed(ctx, &EmbedRequest{
			Request: Request{
				Backend:     backendQdrant,
				Source:      s.Source,
				Model:       s.Model(),
				ExtraFields: provider.Resolve(s, true),
			},
			Text: dimensionProbeText,
		})
		if err != nil {
			q.log.Debug("qdrant: dimension auto-detection failed, vectors must be client-computed",
				slog.Any("error", err),
			)
		} else {
			dim = len(vec)
		}
	}

	req := &InitRequest{
		Request:   Request{Backend: backendQdrant, CollectionID: sharedCollection, Source: s.Source, Model: s.Model()},
		URL:       s.QdrantURL,
		APIKey:    s.QdrantAPIKey,
		VectorDim: dim,
	}
	if err := q.client.Init(ctx, req); err != nil {
		return fmt.Errorf("qdrant: %w: %w", vectorstore.ErrBackendUnavailable, err)
	}
	return nil
}

// HealthCheck reports whether the extension can reach the Qdrant store.
func (q *Qdrant) HealthCheck(ctx context.Context) bool {
	return q.client.Health(ctx, backendQdrant)
}

// GetSavedHashes returns the hashes stored for the tenant behind the
// logical collection id.
func (q *Qdrant) GetSavedHashes(ctx context.Context, collectionID string, s *vectorstore.Settings) ([]string, error) {
	req := q.base(collectionID, s, false)
	return q.client.Hashes(ctx, &req)
}

// InsertVectorItems upserts items by hash into the shared collection under
// the tenant filter. The full domain-metadata bag travels as payload
// metadata — Qdrant has no native schema for those fields. An empty batch
// performs no network call.
func (q *Qdrant) InsertVectorItems(ctx context.Context, collectionID string, items []vectorstore.VectorItem, s *vectorstore.Settings) error {
	if len(items) == 0 {
		return nil
	}
	req := &InsertRequest{Request: q.base(collectionID, s, false), Items: items}
	if err := q.client.Insert(ctx, req); err != nil {
		logInsertFailure(q.log, backendQdrant, collectionID, items, err)
		return err
	}
	return nil
}

// DeleteVectorItems removes items by hash; missing hashes are not an error.
func (q *Qdrant) DeleteVectorItems(ctx context.Context, collectionID string, hashes []string, s *vectorstore.Settings) error {
	req := &DeleteRequest{Request: q.base(collectionID, s, false), Hashes: hashes}
	return q.client.Delete(ctx, req)
}

// query runs one tenant-scoped query with an explicit threshold.
func (q *Qdrant) query(ctx context.Context, collectionID, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	req := &QueryRequest{
		Request:    q.base(collectionID, s, true),
		SearchText: text,
		TopK:       topK,
		Threshold:  threshold,
		Vector:     vector,
	}
	return q.client.Query(ctx, req)
}

// QueryCollection returns the topK best matches at or above the settings
// score threshold, scoped to the tenant behind the logical collection id.
func (q *Qdrant) QueryCollection(ctx context.Context, collectionID, text string, topK int, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	return q.query(ctx, collectionID, text, topK, s.ScoreThreshold, s, vector)
}

// QueryMultipleCollections fans out one query per collection. A failed
// collection degrades to an empty result and never fails the others.
func (q *Qdrant) QueryMultipleCollections(ctx context.Context, collectionIDs []string, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (map[string]*vectorstore.QueryResult, error) {
	return queryEach(ctx, q.log, collectionIDs, threshold, func(ctx context.Context, id string, th float64) (*vectorstore.QueryResult, error) {
		return q.query(ctx, id, text, topK, th, s, vector)
	}), nil
}

// PurgeVectorIndex removes only one tenant's data from the shared
// collection: the tenant filter travels with the purge.
func (q *Qdrant) PurgeVectorIndex(ctx context.Context, collectionID string, s *vectorstore.Settings) error {
	req := q.base(collectionID, s, false)
	return q.client.Purge(ctx, &req)
}

// PurgeAllVectorIndexes deletes the entire shared collection contents across
// all tenants. No filter = delete everything, deliberately.
func (q *Qdrant) PurgeAllVectorIndexes(ctx context.Context, s *vectorstore.Settings) error {
	return q.client.PurgeAll(ctx, backendQdrant)
}

// ListChunks returns one page of the tenant's chunks.
func (q *Qdrant) ListChunks(ctx context.Context, collectionID string, offset, limit int, s *vectorstore.Settings) (*vectorstore.ChunkPage, error) {
	physical, filters := qdrantScope(collectionID)
	return q.client.ListChunks(ctx, backendQdrant, physical, offset, limit, filters)
}

// GetChunk returns a single chunk by hash, or (nil, nil) when absent.
func (q *Qdrant) GetChunk(ctx context.Context, collectionID, hash string, s *vectorstore.Settings) (*vectorstore.Chunk, error) {
	physical, filters := qdrantScope(collectionID)
	return q.client.GetChunk(ctx, backendQdrant, physical, hash, filters)
}

// UpdateChunkText replaces a chunk's text; the extension re-embeds it.
func (q *Qdrant) UpdateChunkText(ctx context.Context, collectionID, hash, text string, s *vectorstore.Settings) error {
	req := &UpdateTextRequest{Request: q.base(collectionID, s, false), Text: text}
	return q.client.UpdateChunkText(ctx, hash, req)
}

// UpdateChunkMetadata replaces a chunk's metadata without re-embedding.
func (q *Qdrant) UpdateChunkMetadata(ctx context.Context, collectionID, hash string, meta map[string]any, s *vectorstore.Settings) error {
	req := &UpdateMetaRequest{Request: q.base(collectionID, s, false), Metadata: meta}
	return q.client.UpdateChunkMetadata(ctx, hash, req)
}

// GetStats returns the tenant's aggregate statistics.
func (q *Qdrant) GetStats(ctx context.Context, collectionID string, s *vectorstore.Settings) (*vectorstore.Stats, error) {
	physical, filters := qdrantScope(collectionID)
	return q.client.Stats(ctx, backendQdrant, physical, filters)
}

// DiscoverCollections enumerates the logical collections present in the
// shared physical collection, as reported by the extension.
func (q *Qdrant) DiscoverCollections(ctx context.Context, s *vectorstore.Settings) ([]string, error) {
	return q.client.Collections(ctx, backendQdrant)
}
