package service

import (
	"context"
	"fmt"

	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/mapper"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/internal/repository/contract"
	"cardiac-assistant-be/internal/repository/specification"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Index(ctx context.Context, req *dto.IndexDocumentRequest) (*dto.IndexDocumentResponse, error)
	Delete(ctx context.Context, id string) (*dto.DeleteDocumentResponse, error)
}

type documentService struct {
	publisherService IPublisherService
	documentRepo     contract.ClinicalDocumentRepository
	logger           logger.ILogger
}

func NewDocumentService(publisherService IPublisherService, documentRepo contract.ClinicalDocumentRepository, logger logger.ILogger) IDocumentService {
	return &documentService{
		publisherService: publisherService,
		documentRepo:     documentRepo,
		logger:           logger,
	}
}

// Index queues a single passage for embedding; it is searchable once the
// consumer has stored it.
func (s *documentService) Index(ctx context.Context, req *dto.IndexDocumentRequest) (*dto.IndexDocumentResponse, error) {
	id := uuid.NewString()

	msg := dto.IndexDocumentMessage{
		Id:         id,
		Collection: req.Collection,
		Text:       req.Text,
		Metadata:   mapper.FlattenMetadata(req.Metadata),
	}
	if err := s.publisherService.PublishIndexDocument(ctx, msg); err != nil {
		return nil, fmt.Errorf("queue document: %w", err)
	}

	s.logger.Debug("DocumentService", "Document queued for indexing", map[string]interface{}{
		"document_id": id,
		"collection":  req.Collection,
	})
	return &dto.IndexDocumentResponse{Id: id, Collection: req.Collection}, nil
}

// Delete removes an indexed document so it stops showing up in retrieval.
func (s *documentService) Delete(ctx context.Context, id string) (*dto.DeleteDocumentResponse, error) {
	documentId, err := uuid.Parse(id)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	document, err := s.documentRepo.FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	if err := s.documentRepo.Delete(ctx, documentId); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}

	s.logger.Info("DocumentService", "Document deleted", map[string]interface{}{
		"document_id": id,
		"collection":  document.Collection,
	})
	return &dto.DeleteDocumentResponse{Id: id, Collection: document.Collection}, nil
}
