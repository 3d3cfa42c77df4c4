package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"cardiac-assistant-be/internal/entity"
	"cardiac-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ClinicalDocumentMapper struct{}

func NewClinicalDocumentMapper() *ClinicalDocumentMapper {
	return &ClinicalDocumentMapper{}
}

func (m *ClinicalDocumentMapper) ToEntity(e *model.ClinicalDocument) *entity.ClinicalDocument {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ClinicalDocument{
		Id:             e.Id,
		Collection:     e.Collection,
		Document:       e.Document,
		Metadata:       DecodeMetadata(e.Metadata),
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *ClinicalDocumentMapper) ToModel(e *entity.ClinicalDocument) (*model.ClinicalDocument, error) {
	if e == nil {
		return nil, nil
	}

	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ClinicalDocument{
		Id:             e.Id,
		Collection:     e.Collection,
		Document:       e.Document,
		Metadata:       datatypes.JSON(raw),
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}, nil
}

// DecodeMetadata never fails; unreadable metadata becomes an empty map.
func DecodeMetadata(raw datatypes.JSON) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// FlattenMetadata keeps scalar values and encodes lists and objects as JSON
// strings, so every metadata value stays filterable by equality.
func FlattenMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch v.(type) {
		case nil, string, bool, float64, float32, int, int32, int64, json.Number:
			out[k] = v
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				out[k] = fmt.Sprint(v)
				continue
			}
			out[k] = string(raw)
		}
	}
	return out
}
