package pgvector

import (
	"context"
	"fmt"

	"ai-advisor-be/pkg/store"
	"ai-advisor-be/pkg/vectorindex"

	"github.com/google/uuid"
	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// KnowledgeEmbedding is the pgvector-backed row for one knowledge-base document.
type KnowledgeEmbedding struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string         `gorm:"type:text"`
	Content        string         `gorm:"type:text"`
	Source         string         `gorm:"type:text;index"`
	Topic          string         `gorm:"type:text"`
	KnowledgeLevel string         `gorm:"type:text"`
	EmbeddingValue pgv.Vector     `gorm:"type:vector(1536)"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (KnowledgeEmbedding) TableName() string {
	return "knowledge_embeddings"
}

// Index implements vectorindex.Index on Postgres with the pgvector extension.
type Index struct {
	db *gorm.DB
}

var _ vectorindex.Index = &Index{}

func NewIndex(db *gorm.DB) *Index {
	return &Index{db: db}
}

// Search returns the topK nearest documents by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity.
func (idx *Index) Search(ctx context.Context, vector []float32, topK int) ([]store.Document, error) {
	if topK <= 0 {
		topK = 10
	}

	type row struct {
		KnowledgeEmbedding
		Similarity float64
	}
	var rows []row

	queryVector := pgv.NewVector(vector)

	err := idx.db.WithContext(ctx).
		Table("knowledge_embeddings").
		Select("knowledge_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Order("similarity DESC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs := make([]store.Document, len(rows))
	for i, r := range rows {
		docs[i] = store.Document{
			ID:      r.Id.String(),
			Title:   r.Title,
			Content: r.Content,
			Source:  r.Source,
			Score:   r.Similarity,
			Metadata: map[string]string{
				"topic":           r.Topic,
				"knowledge_level": r.KnowledgeLevel,
			},
		}
	}
	return docs, nil
}

// Upsert inserts or replaces a document row keyed by id.
func (idx *Index) Upsert(ctx context.Context, id string, vector []float32, payload vectorindex.DocumentPayload) error {
	rowId, err := uuid.Parse(id)
	if err != nil {
		// Composite ids like "<article>-<chunk>" map to a deterministic
		// UUID so re-ingesting replaces rows instead of duplicating them.
		rowId = uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
	}

	row := KnowledgeEmbedding{
		Id:             rowId,
		Title:          payload.Title,
		Content:        payload.Content,
		Source:         payload.Source,
		Topic:          payload.Topic,
		KnowledgeLevel: payload.KnowledgeLevel,
		EmbeddingValue: pgv.NewVector(vector),
	}

	return idx.db.WithContext(ctx).Save(&row).Error
}
