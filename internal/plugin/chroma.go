package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vecthare/vecthare-go/internal/provider"
	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// backendChroma is the unified-API discriminator for the Chroma backend.
const backendChroma = "chroma"

// Chroma implements vectorstore.Backend over the extension's unified API for
// the Chroma store. Chroma is single-tenant: the logical collection id passes
// through unchanged because the store assigns one physical collection per
// logical collection.
type Chroma struct {
	// t is the shared transport used to build the API client at Initialize.
	t *transport.Client
	// client speaks the unified API; set at Initialize.
	client *Client
	// log is the structured logger for degraded-path warnings.
	log *slog.Logger
}

// NewChroma constructs an uninitialized Chroma adapter. Initialize must
// succeed before any other method is called.
func NewChroma(t *transport.Client, log *slog.Logger) *Chroma {
	return &Chroma{t: t, log: log}
}

// base builds the request fields shared by every Chroma call.
func (c *Chroma) base(collectionID string, s *vectorstore.Settings, isQuery bool) Request {
	return Request{
		Backend:      backendChroma,
		CollectionID: collectionID,
		Source:       s.Source,
		Model:        s.Model(),
		ExtraFields:  provider.Resolve(s, isQuery),
	}
}

// Initialize connects the extension to the Chroma store. Collections are
// created lazily on first insert, so only the connection URL travels here.
func (c *Chroma) Initialize(ctx context.Context, s *vectorstore.Settings) error {
	c.client = NewClient(c.t, s.PluginURL)
	req := &InitRequest{
		Request: Request{Backend: backendChroma, Source: s.Source, Model: s.Model()},
		URL:     s.ChromaURL,
	}
	if err := c.client.Init(ctx, req); err != nil {
		return fmt.Errorf("chroma: %w: %w", vectorstore.ErrBackendUnavailable, err)
	}
	return nil
}

// HealthCheck reports whether the extension can reach the Chroma store.
func (c *Chroma) HealthCheck(ctx context.Context) bool {
	return c.client.Health(ctx, backendChroma)
}

// GetSavedHashes returns the hashes stored for the collection. A collection
// that was never created yields an empty set server-side.
func (c *Chroma) GetSavedHashes(ctx context.Context, collectionID string, s *vectorstore.Settings) ([]string, error) {
	req := c.base(collectionID, s, false)
	return c.client.Hashes(ctx, &req)
}

// InsertVectorItems upserts items by hash. An empty batch performs no
// network call.
func (c *Chroma) InsertVectorItems(ctx context.Context, collectionID string, items []vectorstore.VectorItem, s *vectorstore.Settings) error {
	if len(items) == 0 {
		return nil
	}
	req := &InsertRequest{Request: c.base(collectionID, s, false), Items: items}
	if err := c.client.Insert(ctx, req); err != nil {
		logInsertFailure(c.log, backendChroma, collectionID, items, err)
		return err
	}
	return nil
}

// DeleteVectorItems removes items by hash; missing hashes are not an error.
func (c *Chroma) DeleteVectorItems(ctx context.Context, collectionID string, hashes []string, s *vectorstore.Settings) error {
	req := &DeleteRequest{Request: c.base(collectionID, s, false), Hashes: hashes}
	return c.client.Delete(ctx, req)
}

// query runs one collection query with an explicit threshold.
func (c *Chroma) query(ctx context.Context, collectionID, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	req := &QueryRequest{
		Request:    c.base(collectionID, s, true),
		SearchText: text,
		TopK:       topK,
		Threshold:  threshold,
		Vector:     vector,
	}
	return c.client.Query(ctx, req)
}

// QueryCollection returns the topK best matches at or above the settings
// score threshold, scoped to one collection.
func (c *Chroma) QueryCollection(ctx context.Context, collectionID, text string, topK int, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	return c.query(ctx, collectionID, text, topK, s.ScoreThreshold, s, vector)
}

// QueryMultipleCollections fans out one query per collection. A failed
// collection degrades to an empty result and never fails the others.
func (c *Chroma) QueryMultipleCollections(ctx context.Context, collectionIDs []string, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (map[string]*vectorstore.QueryResult, error) {
	return queryEach(ctx, c.log, collectionIDs, threshold, func(ctx context.Context, id string, th float64) (*vectorstore.QueryResult, error) {
		return c.query(ctx, id, text, topK, th, s, vector)
	}), nil
}

// PurgeVectorIndex deletes every item in one collection.
func (c *Chroma) PurgeVectorIndex(ctx context.Context, collectionID string, s *vectorstore.Settings) error {
	req := c.base(collectionID, s, false)
	return c.client.Purge(ctx, &req)
}

// PurgeAllVectorIndexes enumerates every collection the store knows and
// purges each one individually — Chroma exposes no global-purge primitive.
// A failure purging one collection is logged and does not abort the rest.
func (c *Chroma) PurgeAllVectorIndexes(ctx context.Context, s *vectorstore.Settings) error {
	collections, err := c.client.Collections(ctx, backendChroma)
	if err != nil {
		return fmt.Errorf("chroma: enumerating collections for purge-all: %w", err)
	}
	for _, id := range collections {
		req := c.base(id, s, false)
		if err := c.client.Purge(ctx, &req); err != nil {
			c.log.Warn("purge-all: collection purge failed, continuing",
				slog.String("collection", id),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// ListChunks returns one page of stored chunks.
func (c *Chroma) ListChunks(ctx context.Context, collectionID string, offset, limit int, s *vectorstore.Settings) (*vectorstore.ChunkPage, error) {
	return c.client.ListChunks(ctx, backendChroma, collectionID, offset, limit, nil)
}

// GetChunk returns a single chunk by hash, or (nil, nil) when absent.
func (c *Chroma) GetChunk(ctx context.Context, collectionID, hash string, s *vectorstore.Settings) (*vectorstore.Chunk, error) {
	return c.client.GetChunk(ctx, backendChroma, collectionID, hash, nil)
}

// UpdateChunkText replaces a chunk's text; the extension re-embeds it.
func (c *Chroma) UpdateChunkText(ctx context.Context, collectionID, hash, text string, s *vectorstore.Settings) error {
	req := &UpdateTextRequest{Request: c.base(collectionID, s, false), Text: text}
	return c.client.UpdateChunkText(ctx, hash, req)
}

// UpdateChunkMetadata replaces a chunk's metadata without re-embedding.
func (c *Chroma) UpdateChunkMetadata(ctx context.Context, collectionID, hash string, meta map[string]any, s *vectorstore.Settings) error {
	req := &UpdateMetaRequest{Request: c.base(collectionID, s, false), Metadata: meta}
	return c.client.UpdateChunkMetadata(ctx, hash, req)
}

// GetStats returns the collection's aggregate statistics.
func (c *Chroma) GetStats(ctx context.Context, collectionID string, s *vectorstore.Settings) (*vectorstore.Stats, error) {
	return c.client.Stats(ctx, backendChroma, collectionID, nil)
}

// DiscoverCollections enumerates every collection the store holds.
func (c *Chroma) DiscoverCollections(ctx context.Context, s *vectorstore.Settings) ([]string, error) {
	return c.client.Collections(ctx, backendChroma)
}
