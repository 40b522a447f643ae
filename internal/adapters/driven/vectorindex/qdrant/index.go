// Package qdrant provides a driven.ChunkIndex backed by a Qdrant
// collection over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.ChunkIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultTimeout = 15 * time.Second
	scrollPageSize = 256
)

// pointNamespace derives stable point IDs from chunk IDs.
var pointNamespace = uuid.MustParse("6f1c1f57-3b8e-4c55-9d55-5a8f0b1d2e40")

// errCollectionMissing is returned by requests against a collection that
// has not been created yet.
var errCollectionMissing = errors.New("qdrant: collection does not exist")

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Index stores chunk text and metadata as point payloads. Vectors come
// from the embedding service; the collection is created on first write
// with cosine distance.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	embedder   driven.EmbeddingService

	mu    sync.Mutex
	ready bool
}

type payload struct {
	ChunkID     string               `json:"chunk_id"`
	Text        string               `json:"text"`
	Metadata    domain.ChunkMetadata `json:"metadata"`
	ContentHash string               `json:"content_hash"`
	Seq         int64                `json:"seq"`
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector,omitempty"`
	Payload payload   `json:"payload"`
}

// NewIndex creates an index. An embedding service is required.
func NewIndex(cfg Config, embedder driven.EmbeddingService) (*Index, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if cfg.URL == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant url and collection are required", domain.ErrConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
		embedder:   embedder,
	}, nil
}

// AddChunks embeds chunks and upserts them as points.
func (x *Index) AddChunks(ctx context.Context, chunks []domain.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := x.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	base := time.Now().UnixNano()
	points := make([]point, len(chunks))
	for i, c := range chunks {
		points[i] = point{
			ID:     pointID(c.ID),
			Vector: vectors[i],
			Payload: payload{
				ChunkID:     c.ID,
				Text:        c.Text,
				Metadata:    c.Metadata,
				ContentHash: c.ContentHash,
				Seq:         base + int64(i),
			},
		}
	}

	body := map[string]any{"points": points}
	if err := x.do(ctx, http.MethodPut, x.collectionPath()+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}
	return nil
}

// SimilaritySearch returns the k nearest chunks by cosine score.
func (x *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	err = x.do(ctx, http.MethodPost, x.collectionPath()+"/points/search", req, &resp)
	if errors.Is(err, errCollectionMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.ScoredChunk{Chunk: r.Payload.chunk(), Score: r.Score})
	}
	return results, nil
}

// ListAll scrolls the whole collection and returns chunks in insertion order.
func (x *Index) ListAll(ctx context.Context) ([]domain.IndexedChunk, error) {
	var all []payload
	var offset any
	for {
		req := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload payload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		err := x.do(ctx, http.MethodPost, x.collectionPath()+"/points/scroll", req, &resp)
		if errors.Is(err, errCollectionMissing) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("scrolling points: %w", err)
		}
		for _, p := range resp.Result.Points {
			all = append(all, p.Payload)
		}
		if resp.Result.NextPageOffset == nil {
			break
		}
		offset = resp.Result.NextPageOffset
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })
	out := make([]domain.IndexedChunk, len(all))
	for i, p := range all {
		out[i] = p.chunk()
	}
	return out, nil
}

// Close is a no-op; the embedding service is owned by the caller.
func (x *Index) Close() error {
	return nil
}

func (p payload) chunk() domain.IndexedChunk {
	return domain.IndexedChunk{ID: p.ChunkID, Text: p.Text, Metadata: p.Metadata, ContentHash: p.ContentHash}
}

// ensureCollection creates the collection when it does not exist.
func (x *Index) ensureCollection(ctx context.Context, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ready {
		return nil
	}

	err := x.do(ctx, http.MethodGet, x.collectionPath(), nil, nil)
	if errors.Is(err, errCollectionMissing) {
		body := map[string]any{
			"vectors": map[string]any{"size": dimension, "distance": "Cosine"},
		}
		err = x.do(ctx, http.MethodPut, x.collectionPath(), body, nil)
	}
	if err != nil {
		return fmt.Errorf("ensuring collection %s: %w", x.collection, err)
	}
	x.ready = true
	return nil
}

func (x *Index) collectionPath() string {
	return x.url + "/collections/" + x.collection
}

func (x *Index) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errCollectionMissing
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, url, resp.StatusCode, string(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}
