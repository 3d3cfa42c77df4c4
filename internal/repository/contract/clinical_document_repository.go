package contract

import (
	"context"

	"cardiac-assistant-be/internal/entity"
	"cardiac-assistant-be/internal/repository/specification"
	"cardiac-assistant-be/pkg/rag"

	"github.com/google/uuid"
)

// ClinicalDocumentRepository is the vector store behind every collection.
type ClinicalDocumentRepository interface {
	Create(ctx context.Context, document *entity.ClinicalDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ClinicalDocument, error)
	CountByCollection(ctx context.Context) ([]entity.CollectionCount, error)

	// Query is a cosine-distance search inside one collection, nearest first.
	Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]interface{}) ([]rag.RetrievalResult, error)
	// GetByMetadata is an exact lookup; it returns nil, nil when nothing matches.
	GetByMetadata(ctx context.Context, collection string, field string, value interface{}) (*rag.Record, error)
}
