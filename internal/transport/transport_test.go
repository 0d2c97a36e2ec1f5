package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDo_InjectsHeadersAndEncodesBody(t *testing.T) {
	t.Parallel()

	var gotAuth, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(&Config{Headers: map[string]string{"Authorization": "Bearer tok"}})
	resp, err := c.Do(context.Background(), Call{
		Backend: "vectra",
		Op:      "insert",
		Method:  http.MethodPost,
		URL:     srv.URL,
		Body:    map[string]string{"collectionId": "vh:chat:1"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["collectionId"] != "vh:chat:1" {
		t.Errorf("body = %v", gotBody)
	}
	if !resp.OK() {
		t.Errorf("expected 2xx, got %d", resp.Status)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if err := resp.Decode(&out); err != nil || !out.OK {
		t.Errorf("Decode: out=%+v err=%v", out, err)
	}
}

// Non-2xx responses are returned to the adapter, not turned into errors —
// some backends assign meaning to specific failure statuses.
func TestDo_ReturnsNonSuccessStatusWithoutError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection missing", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(nil)
	resp, err := c.Do(context.Background(), Call{Method: http.MethodPost, URL: srv.URL})
	if err != nil {
		t.Fatalf("Do returned error for HTTP 500: %v", err)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", resp.Status)
	}
	if resp.OK() {
		t.Error("OK() should be false for 500")
	}
}

func TestDo_NetworkErrorSurfaces(t *testing.T) {
	t.Parallel()

	c := New(nil)
	_, err := c.Do(context.Background(), Call{Method: http.MethodGet, URL: "http://127.0.0.1:1/unreachable"})
	if err == nil {
		t.Fatal("expected transport error for unreachable host")
	}
}
