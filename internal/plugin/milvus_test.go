package plugin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vecthare/vecthare-go/internal/transport"
	"github.com/vecthare/vecthare-go/internal/vectorstore"
)

// initMilvus builds and initializes a Milvus adapter against srv.
func initMilvus(t *testing.T, srv *httptest.Server) (*Milvus, *vectorstore.Settings) {
	t.Helper()
	m := NewMilvus(transport.New(nil), testLogger())
	s := &vectorstore.Settings{
		Source:        "transformers",
		PluginURL:     srv.URL,
		MilvusAddress: "milvus.internal:19530",
		MilvusUser:    "root",
		MilvusPass:    "secret",
		VectorDim:     384,
	}
	if err := m.Initialize(context.Background(), s); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return m, s
}

// Initialize forwards the Milvus connection parameters the extension needs.
func TestMilvus_InitializeSendsConnectionParams(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/plugins/vecthare/init" {
			got = decodeBody(t, r)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	initMilvus(t, srv)

	if got["backend"] != "milvus" {
		t.Errorf("backend = %v", got["backend"])
	}
	if got["address"] != "milvus.internal:19530" || got["user"] != "root" || got["password"] != "secret" {
		t.Errorf("connection params = %v", got)
	}
	if got["vectorDim"] != float64(384) {
		t.Errorf("vectorDim = %v", got["vectorDim"])
	}
}

// Milvus shares the multitenant pattern: shared physical collection plus a
// codec-derived tenant filter on every call.
func TestMilvus_RequestsCarryTenantFilter(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plugins/vecthare/init":
			w.WriteHeader(http.StatusOK)
		case "/api/plugins/vecthare/query":
			got = decodeBody(t, r)
			w.Write([]byte(`{"hashes":[],"metadata":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, s := initMilvus(t, srv)
	if _, err := m.QueryCollection(context.Background(), "vh:world:midgard", "hello", 5, s, nil); err != nil {
		t.Fatalf("QueryCollection: %v", err)
	}

	if got["collectionId"] != "vecthare" {
		t.Errorf("collectionId = %v, want shared collection", got["collectionId"])
	}
	filters, _ := got["filters"].(map[string]any)
	if filters == nil || filters["type"] != "world" || filters["sourceId"] != "midgard" {
		t.Errorf("filters = %v", got["filters"])
	}
}

// An id matching neither encoding falls back to the chat tenant type with the
// whole input as source id — decode never rejects.
func TestMilvus_FallbackDecodeForOpaqueID(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plugins/vecthare/init":
			w.WriteHeader(http.StatusOK)
		case "/api/plugins/vecthare/delete":
			got = decodeBody(t, r)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, s := initMilvus(t, srv)
	if err := m.DeleteVectorItems(context.Background(), "garbage", []string{"h1"}, s); err != nil {
		t.Fatalf("DeleteVectorItems: %v", err)
	}

	filters, _ := got["filters"].(map[string]any)
	if filters == nil || filters["type"] != "chat" || filters["sourceId"] != "garbage" {
		t.Errorf("filters = %v", got["filters"])
	}
}

// Purge-all omits the tenant filter: the whole shared collection goes.
func TestMilvus_PurgeAllOmitsFilter(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plugins/vecthare/init":
			w.WriteHeader(http.StatusOK)
		case "/api/plugins/vecthare/purge-all":
			got = decodeBody(t, r)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, s := initMilvus(t, srv)
	if err := m.PurgeAllVectorIndexes(context.Background(), s); err != nil {
		t.Fatalf("PurgeAllVectorIndexes: %v", err)
	}
	if _, ok := got["filters"]; ok {
		t.Errorf("purge-all carries a filter: %v", got["filters"])
	}
}
