package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := embedResponse{}
		for i := range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{float32(i), 1, 0})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "custom-embed"})
	assert.Zero(t, svc.Dimensions())

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 1, 0}, vectors[1])
	assert.Equal(t, 3, svc.Dimensions())

	single, err := svc.Embed(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, single)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer srv.Close()

	_, err := NewEmbeddingService(Config{BaseURL: srv.URL}).EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestKnownModelDimensions(t *testing.T) {
	assert.Equal(t, 768, NewEmbeddingService(Config{}).Dimensions())
}
