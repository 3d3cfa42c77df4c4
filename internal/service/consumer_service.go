package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/entity"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/internal/repository/contract"
	"cardiac-assistant-be/pkg/embedding"
	"cardiac-assistant-be/pkg/events"
	"cardiac-assistant-be/pkg/rag/executor"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// maxIndexAttempts bounds redelivery of one message before it is dropped.
const maxIndexAttempts = 3

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	documentRepo      contract.ClinicalDocumentRepository
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    executor.EventPublisher
	logger            logger.ILogger

	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	documentRepo contract.ClinicalDocumentRepository,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher executor.EventPublisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		documentRepo:      documentRepo,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            logger,
		attempts:          make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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
	var payload dto.IndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal index message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	id, err := uuid.Parse(payload.Id)
	if err != nil {
		id = uuid.New()
	}

	res, err := cs.embeddingProvider.Generate(ctx, payload.Text, embedding.TaskRetrievalDocument)
	if err != nil {
		cs.retryOrDrop(msg, "Failed to embed document", payload, err)
		return
	}

	doc := &entity.ClinicalDocument{
		Id:             id,
		Collection:     payload.Collection,
		Document:       payload.Text,
		Metadata:       payload.Metadata,
		EmbeddingValue: res.Embedding.Values,
		CreatedAt:      time.Now(),
	}
	if err := cs.documentRepo.Create(ctx, doc); err != nil {
		cs.retryOrDrop(msg, "Failed to store document", payload, err)
		return
	}

	cs.forget(msg.UUID)
	cs.logger.Info("Consumer", "Document indexed", map[string]interface{}{
		"document_id": doc.Id.String(),
		"collection":  doc.Collection,
		"dimensions":  len(doc.EmbeddingValue),
	})

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewDocumentIndexed(doc.Id.String(), doc.Collection)); err != nil {
			cs.logger.Warn("Consumer", "Failed to publish indexed event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	msg.Ack()
}

// retryOrDrop nacks for redelivery until maxIndexAttempts is reached.
func (cs *consumerService) retryOrDrop(msg *message.Message, reason string, payload dto.IndexDocumentMessage, err error) {
	cs.mu.Lock()
	cs.attempts[msg.UUID]++
	attempt := cs.attempts[msg.UUID]
	cs.mu.Unlock()

	details := map[string]interface{}{
		"document_id": payload.Id,
		"collection":  payload.Collection,
		"attempt":     attempt,
		"error":       err.Error(),
	}

	if attempt >= maxIndexAttempts {
		cs.forget(msg.UUID)
		cs.logger.Error("Consumer", reason+", dropping message", details)
		msg.Ack()
		return
	}

	cs.logger.Warn("Consumer", reason+", will retry", details)
	msg.Nack()
}

func (cs *consumerService) forget(messageID string) {
	cs.mu.Lock()
	delete(cs.attempts, messageID)
	cs.mu.Unlock()
}
