// Package plugin contains the client for the VectHare extension's unified
// vector API and the three external-store adapters built on it (Chroma,
// Qdrant, Milvus). Every call carries a backend discriminator plus the same
// collectionId/source/model fields; multitenant backends additionally attach
// a filters object derived from the collection identifier codec.
package plugin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vecthare/vecthare-go/internal/provider"
	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// apiPrefix is the fixed path prefix of the extension's unified API.
const apiPrefix = "/api/plugins/vecthare"

// Filters is the tenant filter attached to every multitenant request. The
// backend applies it server-side; logical isolation relies entirely on it.
type Filters struct {
	// Type is the tenant type (chat, file, world, ...).
	Type string `json:"type"`
	// SourceID identifies the tenant within its type.
	SourceID string `json:"sourceId"`
}

// Request carries the fields present on every unified-API request body.
type Request struct {
	// Backend is the backend discriminator ("chroma", "qdrant", "milvus",
	// or "vectra" for the hybrid's extension calls).
	Backend string `json:"backend"`
	// CollectionID is the physical collection the call is scoped to.
	CollectionID string `json:"collectionId,omitempty"`
	// Source is the embedding-provider identifier.
	Source string `json:"source,omitempty"`
	// Model is the provider-specific model field value.
	Model string `json:"model,omitempty"`
	// Provider-specific extra fields are flattened into the body.
	provider.ExtraFields
	// Filters is the tenant filter; nil on single-tenant backends.
	Filters *Filters `json:"filters,omitempty"`
}

// InitRequest is the body of POST /init: backend connection parameters the
// extension needs to reach the underlying store, consumed once per process.
type InitRequest struct {
	Request
	// URL is the store endpoint for URL-addressed backends (Chroma, Qdrant).
	URL string `json:"url,omitempty"`
	// APIKey authenticates against the store, where applicable.
	APIKey string `json:"apiKey,omitempty"`
	// Address is the host:port address for Milvus.
	Address string `json:"address,omitempty"`
	// User and Password authenticate against Milvus.
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	// VectorDim is the embedding dimensionality for schema creation. Zero
	// means unknown: the backend then assumes client-computed vectors.
	VectorDim int `json:"vectorDim,omitempty"`
}

// InsertRequest is the body of POST /insert.
type InsertRequest struct {
	Request
	// Items are the chunks to upsert, keyed by hash server-side.
	Items []vectorstore.VectorItem `json:"items"`
}

// DeleteRequest is the body of POST /delete.
type DeleteRequest struct {
	Request
	// Hashes are the chunk identities to remove.
	Hashes []string `json:"hashes"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Request
	// SearchText is embedded server-side unless Vector is supplied.
	SearchText string `json:"searchText"`
	// TopK caps the result count.
	TopK int `json:"topK"`
	// Threshold is the minimum relevance score.
	Threshold float64 `json:"threshold"`
	// Vector is the optional pre-computed query embedding.
	Vector []float32 `json:"vector,omitempty"`
}

// UpdateTextRequest is the body of PATCH /chunks/{hash}/text.
type UpdateTextRequest struct {
	Request
	// Text is the replacement chunk text; the stored embedding is
	// regenerated server-side.
	Text string `json:"text"`
}

// UpdateMetaRequest is the body of PATCH /chunks/{hash}/metadata.
type UpdateMetaRequest struct {
	Request
	// Metadata replaces the chunk's metadata bag without re-embedding.
	Metadata map[string]any `json:"metadata"`
}

// EmbedRequest is the body of POST /embed, used for single test embeddings
// during dimensionality auto-detection.
type EmbedRequest struct {
	Request
	// Text is the probe text to embed.
	Text string `json:"text"`
}

// Client speaks the extension's unified API over the shared transport.
// It is safe for concurrent use.
type Client struct {
	// t is the shared instrumented HTTP client.
	t *transport.Client
	// base is the extension host URL without the API prefix.
	base string
}

// NewClient constructs a Client for the extension at baseURL
// (e.g. "http://localhost:8000").
func NewClient(t *transport.Client, baseURL string) *Client {
	return &Client{t: t, base: strings.TrimRight(baseURL, "/")}
}

// url builds the full URL for an API path under the fixed prefix.
func (c *Client) url(path string) string {
	return c.base + apiPrefix + path
}

// call executes req and maps any non-2xx response to a RemoteError carrying
// backend and collection context. out, when non-nil, receives the decoded
// success body.
func (c *Client) call(ctx context.Context, backend, op, collection string, call transport.Call, out any) error {
	resp, err := c.t.Do(ctx, call)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return vectorstore.NewRemoteError(backend, op, collection, resp.Status, resp.Body)
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return fmt.Errorf("%s: %s: %w", backend, op, err)
		}
	}
	return nil
}

// Health probes GET /health for the given backend. It never returns an
// error; any transport failure or non-success status is simply unhealthy.
func (c *Client) Health(ctx context.Context, backend string) bool {
	resp, err := c.t.Do(ctx, transport.Call{
		Backend: backend,
		Op:      "health",
		Method:  http.MethodGet,
		URL:     c.url("/health?backend=" + url.QueryEscape(backend)),
	})
	return err == nil && resp.OK()
}

// Init sends the one-time backend initialization call.
func (c *Client) Init(ctx context.Context, req *InitRequest) error {
	return c.call(ctx, req.Backend, "init", "", transport.Call{
		Backend: req.Backend,
		Op:      "init",
		Method:  http.MethodPost,
		URL:     c.url("/init"),
		Body:    req,
	}, nil)
}

// Hashes fetches the stored hash set via POST /hashes.
func (c *Client) Hashes(ctx context.Context, req *Request) ([]string, error) {
	var out struct {
		Hashes []string `json:"hashes"`
	}
	err := c.call(ctx, req.Backend, "hashes", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "hashes",
		Method:  http.MethodPost,
		URL:     c.url("/hashes"),
		Body:    req,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Hashes == nil {
		out.Hashes = []string{}
	}
	return out.Hashes, nil
}

// Insert upserts a batch of items via POST /insert.
func (c *Client) Insert(ctx context.Context, req *InsertRequest) error {
	return c.call(ctx, req.Backend, "insert", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "insert",
		Method:  http.MethodPost,
		URL:     c.url("/insert"),
		Body:    req,
	}, nil)
}

// Delete removes items by hash via POST /delete.
func (c *Client) Delete(ctx context.Context, req *DeleteRequest) error {
	return c.call(ctx, req.Backend, "delete", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "delete",
		Method:  http.MethodPost,
		URL:     c.url("/delete"),
		Body:    req,
	}, nil)
}

// Query runs one similarity query via POST /query and normalizes the
// response into the contract's fixed result shape.
func (c *Client) Query(ctx context.Context, req *QueryRequest) (*vectorstore.QueryResult, error) {
	var out vectorstore.QueryResult
	err := c.call(ctx, req.Backend, "query", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "query",
		Method:  http.MethodPost,
		URL:     c.url("/query"),
		Body:    req,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Hashes == nil {
		out.Hashes = []string{}
	}
	if out.Metadata == nil {
		out.Metadata = []map[string]any{}
	}
	return &out, nil
}

// Purge deletes the items the request scopes to via POST /purge. With a
// tenant filter only that tenant's data is removed; without one, the whole
// physical collection.
func (c *Client) Purge(ctx context.Context, req *Request) error {
	return c.call(ctx, req.Backend, "purge", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "purge",
		Method:  http.MethodPost,
		URL:     c.url("/purge"),
		Body:    req,
	}, nil)
}

// PurgeAll deletes everything the backend holds via POST /purge-all.
// No filter is attached: the operation crosses every tenant.
func (c *Client) PurgeAll(ctx context.Context, backend string) error {
	req := &Request{Backend: backend}
	return c.call(ctx, backend, "purge-all", "", transport.Call{
		Backend: backend,
		Op:      "purge-all",
		Method:  http.MethodPost,
		URL:     c.url("/purge-all"),
		Body:    req,
	}, nil)
}

// tenantParams encodes the filter pair as query parameters for GET requests.
func tenantParams(v url.Values, filters *Filters) {
	if filters == nil {
		return
	}
	v.Set("type", filters.Type)
	v.Set("sourceId", filters.SourceID)
}

// ListChunks fetches one page of chunks via GET /chunks.
func (c *Client) ListChunks(ctx context.Context, backend, collectionID string, offset, limit int, filters *Filters) (*vectorstore.ChunkPage, error) {
	v := url.Values{}
	v.Set("backend", backend)
	v.Set("collectionId", collectionID)
	v.Set("offset", strconv.Itoa(offset))
	v.Set("limit", strconv.Itoa(limit))
	tenantParams(v, filters)

	var out vectorstore.ChunkPage
	err := c.call(ctx, backend, "chunks", collectionID, transport.Call{
		Backend: backend,
		Op:      "chunks",
		Method:  http.MethodGet,
		URL:     c.url("/chunks?" + v.Encode()),
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Offset = offset
	out.Limit = limit
	return &out, nil
}

// GetChunk fetches a single chunk by hash via GET /chunks/{hash}. A 404 from
// the extension means the chunk is absent and yields (nil, nil).
func (c *Client) GetChunk(ctx context.Context, backend, collectionID, hash string, filters *Filters) (*vectorstore.Chunk, error) {
	v := url.Values{}
	v.Set("backend", backend)
	v.Set("collectionId", collectionID)
	tenantParams(v, filters)

	resp, err := c.t.Do(ctx, transport.Call{
		Backend: backend,
		Op:      "chunk_get",
		Method:  http.MethodGet,
		URL:     c.url("/chunks/" + url.PathEscape(hash) + "?" + v.Encode()),
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusNotFound {
		return nil, nil
	}
	if !resp.OK() {
		return nil, vectorstore.NewRemoteError(backend, "chunk_get", collectionID, resp.Status, resp.Body)
	}

	var out vectorstore.Chunk
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: chunk_get: %w", backend, err)
	}
	return &out, nil
}

// UpdateChunkText replaces a chunk's text via PATCH /chunks/{hash}/text.
func (c *Client) UpdateChunkText(ctx context.Context, hash string, req *UpdateTextRequest) error {
	return c.call(ctx, req.Backend, "chunk_text", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "chunk_text",
		Method:  http.MethodPatch,
		URL:     c.url("/chunks/" + url.PathEscape(hash) + "/text"),
		Body:    req,
	}, nil)
}

// UpdateChunkMetadata replaces a chunk's metadata bag via
// PATCH /chunks/{hash}/metadata.
func (c *Client) UpdateChunkMetadata(ctx context.Context, hash string, req *UpdateMetaRequest) error {
	return c.call(ctx, req.Backend, "chunk_metadata", req.CollectionID, transport.Call{
		Backend: req.Backend,
		Op:      "chunk_metadata",
		Method:  http.MethodPatch,
		URL:     c.url("/chunks/" + url.PathEscape(hash) + "/metadata"),
		Body:    req,
	}, nil)
}

// Stats fetches aggregate collection statistics via GET /stats.
func (c *Client) Stats(ctx context.Context, backend, collectionID string, filters *Filters) (*vectorstore.Stats, error) {
	v := url.Values{}
	v.Set("backend", backend)
	v.Set("collectionId", collectionID)
	tenantParams(v, filters)

	var out struct {
		Count int            `json:"count"`
		Stats map[string]any `json:"stats"`
	}
	err := c.call(ctx, backend, "stats", collectionID, transport.Call{
		Backend: backend,
		Op:      "stats",
		Method:  http.MethodGet,
		URL:     c.url("/stats?" + v.Encode()),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &vectorstore.Stats{Count: out.Count, Backend: backend, Extra: out.Stats}, nil
}

// Collections enumerates the collections the backend knows via
// GET /collections.
func (c *Client) Collections(ctx context.Context, backend string) ([]string, error) {
	var out struct {
		Collections []string `json:"collections"`
	}
	err := c.call(ctx, backend, "collections", "", transport.Call{
		Backend: backend,
		Op:      "collections",
		Method:  http.MethodGet,
		URL:     c.url("/collections?backend=" + url.QueryEscape(backend)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Collections, nil
}

// Embed requests a single test embedding via POST /embed. Used only by
// dimensionality auto-detection.
func (c *Client) Embed(ctx context.Context, req *EmbedRequest) ([]float32, error) {
	var out struct {
		Vector []float32 `json:"vector"`
	}
	err := c.call(ctx, req.Backend, "embed", "", transport.Call{
		Backend: req.Backend,
		Op:      "embed",
		Method:  http.MethodPost,
		URL:     c.url("/embed"),
		Body:    req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Vector, nil
}
