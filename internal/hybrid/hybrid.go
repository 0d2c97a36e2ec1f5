// Package hybrid implements the native vector backend: core operations go
// straight to the application's own vector API, and the extended feature set
// (chunk editing, statistics, discovery) is served by the VecHare extension
// when one is reachable. Extension absence is a degraded mode, never an
// error; core operations keep working either way.
package hybrid

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vecthare/vecthare-go/internal/plugin"
	"github.com/vecthare/vecthare-go/internal/provider"
	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// backendVectra is the discriminator the extension uses for the native store.
const backendVectra = "vectra"

// nativePrefix is the path prefix of the native vector API.
const nativePrefix = "/api/vector"

// probeCollection is the collection id used for liveness probes. Listing a
// collection that does not exist is a valid, healthy response.
const probeCollection = "vh:chat:health-probe"

// Store implements vectorstore.Backend against the native vector API, with
// optional extension-backed extended operations.
type Store struct {
	// t is the shared instrumented HTTP client.
	t *transport.Client
	// ext speaks the extension's unified API; nil until Initialize and left
	// nil when no extension is reachable.
	ext *plugin.Client
	// nativeURL is the native API host, captured at Initialize.
	nativeURL string
	// extensions reports whether the extension answered its health probe
	// and accepted initialization.
	extensions bool
	// log is the structured logger for degraded-path warnings.
	log *slog.Logger
}

// New constructs an uninitialized hybrid Store. Initialize must succeed
// before any other method is called.
func New(t *transport.Client, log *slog.Logger) *Store {
	return &Store{t: t, log: log}
}

// nativeRequest carries the fields shared by every native API call.
type nativeRequest struct {
	// CollectionID scopes the call to one collection.
	CollectionID string `json:"collectionId,omitempty"`
	// Source and Model select the embedding provider server-side.
	Source string `json:"source,omitempty"`
	Model  string `json:"model,omitempty"`
	// Provider-specific extra fields are flattened into the body.
	provider.ExtraFields
}

// nativeItem is a chunk as the native insert endpoint expects it: embeddings
// travel separately, keyed by text, never inline on the item.
type nativeItem struct {
	Hash     string         `json:"hash"`
	Text     string         `json:"text"`
	Index    int            `json:"index"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type insertRequest struct {
	nativeRequest
	Items []nativeItem `json:"items"`
	// Embeddings maps chunk text to a pre-computed vector. Present only
	// when the caller embedded client-side; the native store embeds any
	// text without an entry itself.
	Embeddings map[string][]float32 `json:"embeddings,omitempty"`
}

type deleteRequest struct {
	nativeRequest
	Hashes []string `json:"hashes"`
}

type queryRequest struct {
	nativeRequest
	SearchText string    `json:"searchText"`
	TopK       int       `json:"topK"`
	Threshold  float64   `json:"threshold"`
	Vector     []float32 `json:"vector,omitempty"`
}

type queryMultiRequest struct {
	// CollectionIDs replaces the single collection scope; one native call
	// covers every collection.
	CollectionIDs []string `json:"collectionIds"`
	Source        string   `json:"source,omitempty"`
	Model         string   `json:"model,omitempty"`
	provider.ExtraFields
	SearchText string    `json:"searchText"`
	TopK       int       `json:"topK"`
	Threshold  float64   `json:"threshold"`
	Vector     []float32 `json:"vector,omitempty"`
}

// queryResponse is the native query result shape: hashes and metadata are
// parallel arrays zipped positionally.
type queryResponse struct {
	Hashes   []string         `json:"hashes"`
	Metadata []map[string]any `json:"metadata"`
}

// toResult zips the response into the contract's result shape, padding
// metadata when the native store returned fewer entries than hashes.
func (r *queryResponse) toResult() *vectorstore.QueryResult {
	out := vectorstore.EmptyResult()
	out.Hashes = append(out.Hashes, r.Hashes...)
	for i := range out.Hashes {
		if i < len(r.Metadata) && r.Metadata[i] != nil {
			out.Metadata = append(out.Metadata, r.Metadata[i])
		} else {
			out.Metadata = append(out.Metadata, map[string]any{})
		}
	}
	return out
}

// base builds the shared native request fields.
func (h *Store) base(collectionID string, s *vectorstore.Settings, isQuery bool) nativeRequest {
	return nativeRequest{
		CollectionID: collectionID,
		Source:       s.Source,
		Model:        s.Model(),
		ExtraFields:  provider.Resolve(s, isQuery),
	}
}

// extBase builds the shared unified-API request fields for extension calls.
// The hybrid never attaches a tenant filter: the native store keys physical
// collections directly by the logical id.
func (h *Store) extBase(collectionID string, s *vectorstore.Settings, isQuery bool) plugin.Request {
	return plugin.Request{
		Backend:      backendVectra,
		CollectionID: collectionID,
		Source:       s.Source,
		Model:        s.Model(),
		ExtraFields:  provider.Resolve(s, isQuery),
	}
}

// native POSTs one native API call and decodes a 2xx body into out.
func (h *Store) native(ctx context.Context, op, collectionID, path string, body, out any) error {
	resp, err := h.t.Do(ctx, transport.Call{
		Backend: backendVectra,
		Op:      op,
		Method:  http.MethodPost,
		URL:     h.nativeURL + nativePrefix + path,
		Body:    body,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return vectorstore.NewRemoteError(backendVectra, op, collectionID, resp.Status, resp.Body)
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return fmt.Errorf("vectra: %s: %w", op, err)
		}
	}
	return nil
}

// Initialize verifies the native API is reachable, then probes for the
// extension. An unreachable native API fails initialization; an unreachable
// extension only disables the extended feature set.
func (h *Store) Initialize(ctx context.Context, s *vectorstore.Settings) error {
	h.nativeURL = strings.TrimRight(s.NativeURL, "/")

	// Any HTTP response at all, including a 500 for a collection that does
	// not exist yet, proves the native store is up.
	probe := h.base(probeCollection, s, false)
	if _, err := h.t.Do(ctx, transport.Call{
		Backend: backendVectra,
		Op:      "list",
		Method:  http.MethodPost,
		URL:     h.nativeURL + nativePrefix + "/list",
		Body:    &probe,
	}); err != nil {
		return fmt.Errorf("vectra: %w: %w", vectorstore.ErrBackendUnavailable, err)
	}

	ext := plugin.NewClient(h.t, s.PluginURL)
	if !ext.Health(ctx, backendVectra) {
		h.log.Debug("vectra: extension unreachable, running without extended operations")
		return nil
	}
	req := &plugin.InitRequest{
		Request:   plugin.Request{Backend: backendVectra, Source: s.Source, Model: s.Model()},
		VectorDim: s.VectorDim,
	}
	if err := ext.Init(ctx, req); err != nil {
		h.log.Warn("vectra: extension init failed, running without extended operations",
			slog.Any("error", err),
		)
		return nil
	}
	h.ext = ext
	h.extensions = true
	return nil
}

// HealthCheck probes the native list endpoint. Any HTTP response is healthy;
// only a transport failure is not.
func (h *Store) HealthCheck(ctx context.Context) bool {
	probe := nativeRequest{CollectionID: probeCollection}
	_, err := h.t.Do(ctx, transport.Call{
		Backend: backendVectra,
		Op:      "list",
		Method:  http.MethodPost,
		URL:     h.nativeURL + nativePrefix + "/list",
		Body:    &probe,
	})
	return err == nil
}

// GetSavedHashes lists the stored hashes for a collection. The native store
// answers 500 for a collection that has never been created; that is the
// empty-collection case, not a failure.
func (h *Store) GetSavedHashes(ctx context.Context, collectionID string, s *vectorstore.Settings) ([]string, error) {
	req := h.base(collectionID, s, false)
	resp, err := h.t.Do(ctx, transport.Call{
		Backend: backendVectra,
		Op:      "list",
		Method:  http.MethodPost,
		URL:     h.nativeURL + nativePrefix + "/list",
		Body:    &req,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusInternalServerError {
		return []string{}, nil
	}
	if !resp.OK() {
		return nil, vectorstore.NewRemoteError(backendVectra, "list", collectionID, resp.Status, resp.Body)
	}
	var hashes []string
	if err := resp.Decode(&hashes); err != nil {
		return nil, fmt.Errorf("vectra: list: %w", err)
	}
	if hashes == nil {
		hashes = []string{}
	}
	return hashes, nil
}

// InsertVectorItems upserts items by hash. Pre-computed vectors travel in a
// separate text-keyed embeddings map; the native store embeds the rest
// server-side. An empty batch performs no network call.
func (h *Store) InsertVectorItems(ctx context.Context, collectionID string, items []vectorstore.VectorItem, s *vectorstore.Settings) error {
	if len(items) == 0 {
		return nil
	}
	req := insertRequest{
		nativeRequest: h.base(collectionID, s, false),
		Items:         make([]nativeItem, 0, len(items)),
	}
	for _, it := range items {
		req.Items = append(req.Items, nativeItem{
			Hash:     it.Hash,
			Text:     it.Text,
			Index:    it.Index,
			Metadata: it.Metadata,
		})
		if it.Vector != nil {
			if req.Embeddings == nil {
				req.Embeddings = make(map[string][]float32)
			}
			req.Embeddings[it.Text] = it.Vector
		}
	}
	if err := h.native(ctx, "insert", collectionID, "/insert", &req, nil); err != nil {
		count, total, max := vectorstore.ChunkSizeStats(items)
		h.log.Warn("insert failed",
			slog.String("backend", backendVectra),
			slog.String("collection", collectionID),
			slog.Int("chunks", count),
			slog.Int("total_bytes", total),
			slog.Int("max_chunk_bytes", max),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// DeleteVectorItems removes items by hash.
func (h *Store) DeleteVectorItems(ctx context.Context, collectionID string, hashes []string, s *vectorstore.Settings) error {
	req := deleteRequest{nativeRequest: h.base(collectionID, s, false), Hashes: hashes}
	return h.native(ctx, "delete", collectionID, "/delete", &req, nil)
}

// QueryCollection runs one similarity query against a single collection.
func (h *Store) QueryCollection(ctx context.Context, collectionID, text string, topK int, s *vectorstore.Settings, vector []float32) (*vectorstore.QueryResult, error) {
	req := queryRequest{
		nativeRequest: h.base(collectionID, s, true),
		SearchText:    text,
		TopK:          topK,
		Threshold:     s.ScoreThreshold,
		Vector:        vector,
	}
	var out queryResponse
	if err := h.native(ctx, "query", collectionID, "/query", &req, &out); err != nil {
		return nil, err
	}
	return out.toResult(), nil
}

// QueryMultipleCollections runs one native call covering every collection id
// and returns a result per id. Failure degrades every entry to an empty
// result with a warning instead of failing the call.
func (h *Store) QueryMultipleCollections(ctx context.Context, collectionIDs []string, text string, topK int, threshold float64, s *vectorstore.Settings, vector []float32) (map[string]*vectorstore.QueryResult, error) {
	req := queryMultiRequest{
		CollectionIDs: collectionIDs,
		Source:        s.Source,
		Model:         s.Model(),
		ExtraFields:   provider.Resolve(s, true),
		SearchText:    text,
		TopK:          topK,
		Threshold:     threshold,
		Vector:        vector,
	}
	var out map[string]queryResponse
	results := make(map[string]*vectorstore.QueryResult, len(collectionIDs))
	if err := h.native(ctx, "query_multi", "", "/query-multi", &req, &out); err != nil {
		h.log.Warn("multi-collection query degraded to empty results",
			slog.Int("collections", len(collectionIDs)),
			slog.Any("error", err),
		)
		for _, id := range collectionIDs {
			results[id] = vectorstore.EmptyResult()
		}
		return results, nil
	}
	for _, id := range collectionIDs {
		if r, ok := out[id]; ok {
			results[id] = r.toResult()
		} else {
			results[id] = vectorstore.EmptyResult()
		}
	}
	return results, nil
}

// PurgeVectorIndex deletes every item in one collection.
func (h *Store) PurgeVectorIndex(ctx context.Context, collectionID string, s *vectorstore.Settings) error {
	req := h.base(collectionID, s, false)
	return h.native(ctx, "purge", collectionID, "/purge", &req, nil)
}

// PurgeAllVectorIndexes deletes every collection the native store holds.
func (h *Store) PurgeAllVectorIndexes(ctx context.Context, s *vectorstore.Settings) error {
	req := h.base("", s, false)
	return h.native(ctx, "purge_all", "", "/purge-all", &req, nil)
}

// ListChunks pages through stored chunks. Without the extension the page is
// synthesized from the hash list: hashes with empty text and metadata.
func (h *Store) ListChunks(ctx context.Context, collectionID string, offset, limit int, s *vectorstore.Settings) (*vectorstore.ChunkPage, error) {
	if h.extensions {
		return h.ext.ListChunks(ctx, backendVectra, collectionID, offset, limit, nil)
	}
	hashes, err := h.GetSavedHashes(ctx, collectionID, s)
	if err != nil {
		return nil, err
	}
	page := &vectorstore.ChunkPage{
		Items:  []vectorstore.Chunk{},
		Total:  len(hashes),
		Offset: offset,
		Limit:  limit,
	}
	if offset >= len(hashes) {
		return page, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(hashes) {
		end = len(hashes)
	}
	for _, hash := range hashes[offset:end] {
		page.Items = append(page.Items, vectorstore.Chunk{Hash: hash, Metadata: map[string]any{}})
	}
	return page, nil
}

// GetChunk returns one chunk by hash, or (nil, nil) without the extension:
// the native store cannot address single chunks.
func (h *Store) GetChunk(ctx context.Context, collectionID, hash string, s *vectorstore.Settings) (*vectorstore.Chunk, error) {
	if !h.extensions {
		return nil, nil
	}
	return h.ext.GetChunk(ctx, backendVectra, collectionID, hash, nil)
}

// UpdateChunkText replaces a chunk's text via the extension.
func (h *Store) UpdateChunkText(ctx context.Context, collectionID, hash, text string, s *vectorstore.Settings) error {
	if !h.extensions {
		return fmt.Errorf("vectra: chunk text editing: %w", vectorstore.ErrCapabilityUnavailable)
	}
	req := &plugin.UpdateTextRequest{Request: h.extBase(collectionID, s, false), Text: text}
	return h.ext.UpdateChunkText(ctx, hash, req)
}

// UpdateChunkMetadata replaces a chunk's metadata bag via the extension.
func (h *Store) UpdateChunkMetadata(ctx context.Context, collectionID, hash string, meta map[string]any, s *vectorstore.Settings) error {
	if !h.extensions {
		return fmt.Errorf("vectra: chunk metadata editing: %w", vectorstore.ErrCapabilityUnavailable)
	}
	req := &plugin.UpdateMetaRequest{Request: h.extBase(collectionID, s, false), Metadata: meta}
	return h.ext.UpdateChunkMetadata(ctx, hash, req)
}

// GetStats reports collection statistics. Without the extension only the
// item count, derived from the hash list, is available.
func (h *Store) GetStats(ctx context.Context, collectionID string, s *vectorstore.Settings) (*vectorstore.Stats, error) {
	if h.extensions {
		return h.ext.Stats(ctx, backendVectra, collectionID, nil)
	}
	hashes, err := h.GetSavedHashes(ctx, collectionID, s)
	if err != nil {
		return nil, err
	}
	return &vectorstore.Stats{Count: len(hashes), Backend: backendVectra}, nil
}

// DiscoverCollections enumerates collections via the extension, or (nil, nil)
// without one: the native API has no enumeration endpoint.
func (h *Store) DiscoverCollections(ctx context.Context, s *vectorstore.Settings) ([]string, error) {
	if !h.extensions {
		return nil, nil
	}
	return h.ext.Collections(ctx, backendVectra)
}
