package domain

// ChunkType distinguishes product chunks from informational ones.
type ChunkType string

// Chunk types.
const (
	ChunkTypeProduct ChunkType = "product"
	ChunkTypeGeneral ChunkType = "general"
)

// ChunkMetadata travels with every chunk and must round-trip exactly
// through any ChunkIndex implementation.
type ChunkMetadata struct {
	Type     ChunkType `json:"type"`
	Name     string    `json:"name,omitempty"`
	Category string    `json:"category,omitempty"`
	Price    string    `json:"price,omitempty"`
	URL      string    `json:"url,omitempty"`
	Label    string    `json:"label,omitempty"`

	// Position is the chunk's ordinal within its record.
	Position int `json:"position"`

	// RecordHash is the hash of the whole record the chunk came from.
	RecordHash string `json:"record_hash,omitempty"`
}

// IndexedChunk is a unit stored in the chunk index. ContentHash is the
// digest of Text. The index never holds two versions of a record with the
// same Metadata.RecordHash.
type IndexedChunk struct {
	ID          string        `json:"id"`
	Text        string        `json:"text"`
	Metadata    ChunkMetadata `json:"metadata"`
	ContentHash string        `json:"content_hash"`
}

// IsProduct reports whether the chunk describes a product.
func (c IndexedChunk) IsProduct() bool {
	return c.Metadata.Type == ChunkTypeProduct
}

// ScoredChunk pairs a chunk with a similarity score.
// Higher is more similar; the scale depends on the index.
type ScoredChunk struct {
	Chunk IndexedChunk
	Score float64
}
