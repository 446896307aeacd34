package dto

// IngestKnowledgeRequest submits one knowledge-base article for
// chunking and embedding.
type IngestKnowledgeRequest struct {
	Title          string `json:"title" validate:"required,max=300"`
	Content        string `json:"content" validate:"required"`
	Source         string `json:"source" validate:"required,max=300"`
	Topic          string `json:"topic,omitempty"`
	KnowledgeLevel string `json:"knowledge_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type IngestKnowledgeResponse struct {
	ArticleId string `json:"article_id"`
}

// PublishKnowledgeArticleMessage is the in-process queue payload for
// the ingestion consumer.
type PublishKnowledgeArticleMessage struct {
	ArticleId      string `json:"article_id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Source         string `json:"source"`
	Topic          string `json:"topic"`
	KnowledgeLevel string `json:"knowledge_level"`
}
