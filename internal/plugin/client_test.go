package plugin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// A 404 on the single-chunk endpoint means the chunk is absent, not an error.
func TestClient_GetChunkAbsentYieldsNilNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(transport.New(nil), srv.URL)
	chunk, err := c.GetChunk(context.Background(), "chroma", "vh:chat:abc", "h1", nil)
	if chunk != nil || err != nil {
		t.Errorf("GetChunk = (%v, %v), want (nil, nil)", chunk, err)
	}
}

// Chunk endpoints address the chunk by URL-encoded hash.
func TestClient_ChunkHashIsURLEscaped(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"hash":"a/b+c","text":"x","index":0,"metadata":{}}`))
	}))
	defer srv.Close()

	c := NewClient(transport.New(nil), srv.URL)
	if _, err := c.GetChunk(context.Background(), "chroma", "vh:chat:abc", "a/b+c", nil); err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if !strings.Contains(gotPath, "/chunks/a%2Fb+c") {
		t.Errorf("path = %q, want escaped hash segment", gotPath)
	}
}

// Non-success responses surface as a RemoteError carrying status, body, and
// backend/collection context.
func TestClient_RemoteErrorCarriesContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index is locked", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(transport.New(nil), srv.URL)
	req := &Request{Backend: "qdrant", CollectionID: "vecthare"}
	_, err := c.Hashes(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}

	var remote *vectorstore.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %T, want *RemoteError", err)
	}
	if remote.Status != http.StatusConflict {
		t.Errorf("Status = %d", remote.Status)
	}
	if remote.Backend != "qdrant" || remote.Collection != "vecthare" {
		t.Errorf("context = %q/%q", remote.Backend, remote.Collection)
	}
	if !strings.Contains(remote.Error(), "index is locked") {
		t.Errorf("Error() = %q, want response body included", remote.Error())
	}
	if !strings.Contains(remote.Error(), "409") {
		t.Errorf("Error() = %q, want status code included", remote.Error())
	}
}

// Cohere distinguishes query embeddings from document embeddings: the
// resolver's input_type field must land flattened in the request body.
func TestClient_ProviderFieldsFlattenedIntoBody(t *testing.T) {
	t.Parallel()

	var queryBody, insertBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plugins/vecthare/init":
			w.WriteHeader(http.StatusOK)
		case "/api/plugins/vecthare/query":
			queryBody = decodeBody(t, r)
			w.Write([]byte(`{"hashes":[],"metadata":[]}`))
		case "/api/plugins/vecthare/insert":
			insertBody = decodeBody(t, r)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	q := NewQdrant(transport.New(nil), testLogger())
	s := &vectorstore.Settings{
		Source:      "cohere",
		CohereModel: "embed-english-v3.0",
		PluginURL:   srv.URL,
		VectorDim:   1024,
	}
	if err := q.Initialize(context.Background(), s); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ctx := context.Background()
	if _, err := q.QueryCollection(ctx, "vh:chat:abc", "hello", 3, s, nil); err != nil {
		t.Fatalf("QueryCollection: %v", err)
	}
	items := []vectorstore.VectorItem{{Hash: "h1", Text: "doc"}}
	if err := q.InsertVectorItems(ctx, "vh:chat:abc", items, s); err != nil {
		t.Fatalf("InsertVectorItems: %v", err)
	}

	if queryBody["input_type"] != "search_query" {
		t.Errorf("query input_type = %v", queryBody["input_type"])
	}
	if insertBody["input_type"] != "search_document" {
		t.Errorf("insert input_type = %v", insertBody["input_type"])
	}
	if queryBody["model"] != "embed-english-v3.0" {
		t.Errorf("model = %v", queryBody["model"])
	}
}

// Query responses with null arrays normalize to empty, non-nil slices.
func TestClient_QueryNormalizesNullArrays(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hashes":null,"metadata":null}`))
	}))
	defer srv.Close()

	c := NewClient(transport.New(nil), srv.URL)
	res, err := c.Query(context.Background(), &QueryRequest{Request: Request{Backend: "qdrant"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Hashes == nil || res.Metadata == nil {
		t.Errorf("result = %+v, want non-nil empty slices", res)
	}
}

// Stats responses map the backend-reported extras alongside the count.
func TestClient_StatsMapsExtras(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":42,"stats":{"segments":3}}`))
	}))
	defer srv.Close()

	c := NewClient(transport.New(nil), srv.URL)
	stats, err := c.Stats(context.Background(), "milvus", "vecthare", nil)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Count != 42 || stats.Backend != "milvus" {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Extra["segments"] != float64(3) {
		t.Errorf("Extra = %v", stats.Extra)
	}
}
