package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/utils"
)

// EmbeddingProvider turns texts into fixed-dimension vectors. Implementations
// must return one vector per input, in order.
type EmbeddingProvider interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	Dim() int
}

type httpEmbeddingProvider struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	dim        int
	httpClient *http.Client
}

// NewHTTPEmbeddingProvider talks to any OpenAI-compatible /embeddings
// endpoint (TEI, Ollama, OpenAI itself). EMBEDDINGS_BASE_URL is required;
// the vector dimension defaults to 384 to match the multilingual MiniLM
// models used for sermon transcripts.
func NewHTTPEmbeddingProvider(log *logger.Logger) (EmbeddingProvider, error) {
	provLog := log.With("service", "EmbeddingProvider")
	baseURL := utils.GetEnv("EMBEDDINGS_BASE_URL", "", provLog)
	if baseURL == "" {
		return nil, fmt.Errorf("missing EMBEDDINGS_BASE_URL")
	}
	dim := utils.GetEnvAsInt("EMBEDDING_DIM", 384, provLog)
	if dim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	timeoutSec := utils.GetEnvAsInt("EMBEDDINGS_TIMEOUT_SECONDS", 120, provLog)
	return &httpEmbeddingProvider{
		log:        provLog,
		baseURL:    baseURL,
		apiKey:     utils.GetEnv("EMBEDDINGS_API_KEY", "", nil),
		model:      utils.GetEnv("EMBEDDINGS_MODEL", "paraphrase-multilingual-MiniLM-L12-v2", provLog),
		dim:        dim,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (p *httpEmbeddingProvider) Dim() int { return p.dim }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingDatum struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingDatum `json:"data"`
}

func (p *httpEmbeddingProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embeddingRequest{Model: p.model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("encode embeddings request: %w", err)
	}

	endpoint := p.baseURL
	if endpoint[len(endpoint)-1] == '/' {
		endpoint = endpoint[:len(endpoint)-1]
	}
	endpoint += "/embeddings"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embeddings response: %w", err)
	}
	if resp.StatusCode >= 300 {
		snippet := raw
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return nil, fmt.Errorf("embeddings http error %d: %s", resp.StatusCode, snippet)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(parsed.Data), len(inputs))
	}

	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	vectors := make([][]float32, len(parsed.Data))
	for i, datum := range parsed.Data {
		if len(datum.Embedding) != p.dim {
			return nil, fmt.Errorf("embedding dimension %d does not match configured %d", len(datum.Embedding), p.dim)
		}
		vectors[i] = datum.Embedding
	}
	return vectors, nil
}
