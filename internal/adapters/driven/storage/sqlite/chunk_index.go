package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/textmatch"
)

// chunkIndex implements driven.ChunkIndex over the chunks table.
// Search is brute force; the catalog of a single shop stays small.
type chunkIndex struct {
	store    *Store
	embedder driven.EmbeddingService
}

var _ driven.ChunkIndex = (*chunkIndex)(nil)

type storedChunk struct {
	chunk     domain.IndexedChunk
	embedding []float32
}

// AddChunks stores chunks, embedding them first when an embedder is set.
func (c *chunkIndex) AddChunks(ctx context.Context, chunks []domain.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var vectors [][]float32
	if c.embedder != nil {
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		var err error
		vectors, err = c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
		}
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, text, metadata, content_hash, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range chunks {
		metadataJSON, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		var blob []byte
		if vectors != nil {
			blob = float32SliceToBytes(vectors[i])
		}
		if _, err := stmt.ExecContext(ctx, ch.ID, ch.Text, string(metadataJSON), ch.ContentHash, blob); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk insert: %w", err)
	}
	return nil
}

// SimilaritySearch returns the k best chunks. Scores are cosine similarity
// when embeddings are available and scaled token-set similarity otherwise,
// both in 0-1.
func (c *chunkIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	stored, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}

	if c.embedder != nil {
		queryVec, err := c.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		return rankByCosine(queryVec, stored, k), nil
	}

	texts := make([]string, len(stored))
	for i, s := range stored {
		texts[i] = s.chunk.Text
	}
	ranked := textmatch.Rank(query, texts, k)
	results := make([]domain.ScoredChunk, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, domain.ScoredChunk{Chunk: stored[r.Index].chunk, Score: r.Score / 100})
	}
	return results, nil
}

// ListAll returns every chunk in insertion order.
func (c *chunkIndex) ListAll(ctx context.Context) ([]domain.IndexedChunk, error) {
	stored, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.IndexedChunk, len(stored))
	for i, s := range stored {
		out[i] = s.chunk
	}
	return out, nil
}

// Close is a no-op; the owning Store closes the database.
func (c *chunkIndex) Close() error {
	return nil
}

func (c *chunkIndex) load(ctx context.Context) ([]storedChunk, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, text, metadata, content_hash, embedding
		FROM chunks
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []storedChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var s storedChunk
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&s.chunk.ID, &s.chunk.Text, &metadataJSON, &s.chunk.ContentHash, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &s.chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
		}
		s.embedding = bytesToFloat32Slice(blob)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return out, nil
}

// rankByCosine scores chunks against query. Chunks stored without an
// embedding score zero.
func rankByCosine(query []float32, stored []storedChunk, k int) []domain.ScoredChunk {
	results := make([]domain.ScoredChunk, len(stored))
	for i, s := range stored {
		results[i] = domain.ScoredChunk{Chunk: s.chunk, Score: cosine(query, s.embedding)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
