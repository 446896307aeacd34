package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-advisor-be/internal/dto"
	"ai-advisor-be/pkg/embedding"
	"ai-advisor-be/pkg/utils"
	"ai-advisor-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the knowledge-article queue: each article is
// chunked, embedded and upserted into the vector index.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	embeddingProvider embedding.EmbeddingProvider
	index             vectorindex.Index
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingProvider embedding.EmbeddingProvider,
	index vectorindex.Index,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		embeddingProvider: embeddingProvider,
		index:             index,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishKnowledgeArticleMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal article message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Embedding article %s (%q)", payload.ArticleId, payload.Title)

	// ChunkSize: 1500 chars (approx 375 tokens), overlap 200 chars.
	chunks := utils.SplitText(payload.Content, 1500, 200)
	log.Printf("[INFO] Article %s split into %d chunks", payload.ArticleId, len(chunks))

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Embedding failed for chunk %d of article %s: %v", i, payload.ArticleId, err)
			msg.Nack() // retriable
			return
		}

		chunkId := fmt.Sprintf("%s-%d", payload.ArticleId, i)
		err = cs.index.Upsert(ctx, chunkId, res.Embedding.Values, vectorindex.DocumentPayload{
			Title:          payload.Title,
			Content:        chunk,
			Source:         payload.Source,
			Topic:          payload.Topic,
			KnowledgeLevel: payload.KnowledgeLevel,
		})
		if err != nil {
			log.Printf("[ERROR] Index upsert failed for chunk %s: %v", chunkId, err)
			msg.Nack()
			return
		}
	}

	log.Printf("[SUCCESS] Article %s indexed: %d chunks", payload.ArticleId, len(chunks))
	msg.Ack()
}
