package embedding

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// EmbeddingResponse wraps a generated vector.
type EmbeddingResponse struct {
	Embedding EmbeddingValues
}

// EmbeddingValues holds the raw vector values.
type EmbeddingValues struct {
	Values []float32
}
