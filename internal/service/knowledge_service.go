package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-advisor-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IKnowledgeService interface {
	Ingest(ctx context.Context, req *dto.IngestKnowledgeRequest) (*dto.IngestKnowledgeResponse, error)
}

// knowledgeService accepts knowledge-base articles and queues them for
// asynchronous chunking and embedding. The HTTP request returns as soon
// as the article is on the queue.
type knowledgeService struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewKnowledgeService(pubSub *gochannel.GoChannel, topicName string) IKnowledgeService {
	return &knowledgeService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (ks *knowledgeService) Ingest(ctx context.Context, req *dto.IngestKnowledgeRequest) (*dto.IngestKnowledgeResponse, error) {
	articleId := uuid.New().String()

	payload := dto.PublishKnowledgeArticleMessage{
		ArticleId:      articleId,
		Title:          req.Title,
		Content:        req.Content,
		Source:         req.Source,
		Topic:          req.Topic,
		KnowledgeLevel: req.KnowledgeLevel,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermillUUID(), data)
	if err := ks.pubSub.Publish(ks.topicName, msg); err != nil {
		return nil, err
	}

	log.Printf("[KNOWLEDGE] Queued article %s (%q) for embedding", articleId, req.Title)
	return &dto.IngestKnowledgeResponse{ArticleId: articleId}, nil
}

func watermillUUID() string {
	return uuid.New().String()
}
