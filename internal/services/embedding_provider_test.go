package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func providerForServer(t *testing.T, url string) *httpEmbeddingProvider {
	t.Helper()
	return &httpEmbeddingProvider{
		log:        testLogger(t),
		baseURL:    url,
		model:      "test-model",
		dim:        3,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestHTTPEmbeddingProviderEmbed(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		// Out-of-order indices must be reordered by the client.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{4, 5, 6}},
				{"index": 0, "embedding": []float32{1, 2, 3}},
			},
		})
	}))
	defer srv.Close()

	p := providerForServer(t, srv.URL)
	vectors, err := p.Embed(context.Background(), []string{"uno", "dos"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/embeddings" {
		t.Fatalf("expected /embeddings, got %s", gotPath)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][0] != 4 {
		t.Fatalf("vectors must be ordered by index: %v", vectors)
	}
}

func TestHTTPEmbeddingProviderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{1, 2, 3}}},
		})
	}))
	defer srv.Close()

	p := providerForServer(t, srv.URL)
	if _, err := p.Embed(context.Background(), []string{"uno", "dos"}); err == nil {
		t.Fatalf("expected count mismatch error")
	}
}

func TestHTTPEmbeddingProviderDimMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{1, 2}}},
		})
	}))
	defer srv.Close()

	p := providerForServer(t, srv.URL)
	if _, err := p.Embed(context.Background(), []string{"uno"}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestHTTPEmbeddingProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := providerForServer(t, srv.URL)
	if _, err := p.Embed(context.Background(), []string{"uno"}); err == nil {
		t.Fatalf("expected http error")
	}
}

func TestHTTPEmbeddingProviderEmptyInput(t *testing.T) {
	p := providerForServer(t, "http://localhost:1")
	vectors, err := p.Embed(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("empty input must be a no-op, got %v %v", vectors, err)
	}
}
