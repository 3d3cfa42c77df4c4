package implementation

import (
	"context"
	"errors"
	"fmt"

	"cardiac-assistant-be/internal/entity"
	"cardiac-assistant-be/internal/mapper"
	"cardiac-assistant-be/internal/model"
	"cardiac-assistant-be/internal/repository/contract"
	"cardiac-assistant-be/internal/repository/specification"
	"cardiac-assistant-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ClinicalDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClinicalDocumentMapper
}

func NewClinicalDocumentRepository(db *gorm.DB) contract.ClinicalDocumentRepository {
	return &ClinicalDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewClinicalDocumentMapper(),
	}
}

func (r *ClinicalDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ClinicalDocumentRepositoryImpl) Create(ctx context.Context, document *entity.ClinicalDocument) error {
	m, err := r.mapper.ToModel(document)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClinicalDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ClinicalDocument{}, id).Error
}

func (r *ClinicalDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ClinicalDocument, error) {
	var m model.ClinicalDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ClinicalDocumentRepositoryImpl) CountByCollection(ctx context.Context) ([]entity.CollectionCount, error) {
	var rows []entity.CollectionCount
	err := r.db.WithContext(ctx).
		Model(&model.ClinicalDocument{}).
		Select("collection AS name, COUNT(*) AS count").
		Group("collection").
		Order("collection ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Query ranks by pgvector cosine distance (<=>), so 0 means identical.
func (r *ClinicalDocumentRepositoryImpl) Query(
	ctx context.Context,
	collection string,
	vector []float32,
	topK int,
	filter map[string]interface{},
) ([]rag.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}

	type result struct {
		model.ClinicalDocument
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	query := r.db.WithContext(ctx).
		Table("clinical_documents").
		Select("clinical_documents.*, embedding_value <=> ? AS distance", queryVector).
		Where("clinical_documents.deleted_at IS NULL")
	query = r.applySpecifications(query,
		specification.ByCollection{Collection: collection},
		specification.ByMetadataFilter{Filter: filter},
	)

	err := query.
		Order("distance ASC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}

	out := make([]rag.RetrievalResult, len(results))
	for i, res := range results {
		out[i] = rag.RetrievalResult{
			Document: res.Document,
			Metadata: mapper.DecodeMetadata(res.Metadata),
			Distance: res.Distance,
		}
	}
	return out, nil
}

func (r *ClinicalDocumentRepositoryImpl) GetByMetadata(ctx context.Context, collection string, field string, value interface{}) (*rag.Record, error) {
	doc, err := r.FindOne(ctx,
		specification.ByCollection{Collection: collection},
		specification.ByMetadata{Field: field, Value: value},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, fmt.Errorf("lookup %s.%s: %w", collection, field, err)
	}
	if doc == nil {
		return nil, nil
	}
	return &rag.Record{Document: doc.Document, Metadata: doc.Metadata}, nil
}
