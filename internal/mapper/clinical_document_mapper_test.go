package mapper

import (
	"testing"
	"time"

	"cardiac-assistant-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestFlattenMetadata(t *testing.T) {
	out := FlattenMetadata(map[string]interface{}{
		"patient_id":    "P003",
		"age":           float64(71),
		"smoker":        false,
		"comorbidities": []interface{}{"CKD", "COPD"},
		"imaging":       map[string]interface{}{"neck_mm": 24},
	})

	assert.Equal(t, "P003", out["patient_id"])
	assert.Equal(t, float64(71), out["age"])
	assert.Equal(t, false, out["smoker"])
	assert.Equal(t, `["CKD","COPD"]`, out["comorbidities"])
	assert.Equal(t, `{"neck_mm":24}`, out["imaging"])
}

func TestClinicalDocumentMapper_ModelEntity(t *testing.T) {
	m := NewClinicalDocumentMapper()
	now := time.Now()
	e := &entity.ClinicalDocument{
		Id:             uuid.New(),
		Collection:     "notes",
		Document:       "Post-op day 2, ambulating",
		Metadata:       map[string]interface{}{"patient_id": "P003", "phase": "post-op"},
		EmbeddingValue: []float32{0.1, 0.2},
		CreatedAt:      now,
		UpdatedAt:      &now,
	}

	mod, err := m.ToModel(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"patient_id":"P003","phase":"post-op"}`, string(mod.Metadata))
	assert.False(t, mod.DeletedAt.Valid)

	back := m.ToEntity(mod)
	assert.Equal(t, e.Id, back.Id)
	assert.Equal(t, e.Metadata, back.Metadata)
	assert.Equal(t, e.EmbeddingValue, back.EmbeddingValue)
}

func TestDecodeMetadata_Garbage(t *testing.T) {
	assert.Empty(t, DecodeMetadata(datatypes.JSON(`not json`)))
	assert.Empty(t, DecodeMetadata(nil))
}
