package entity

import (
	"time"

	"github.com/google/uuid"
)

type ClinicalDocument struct {
	Id             uuid.UUID
	Collection     string
	Document       string
	Metadata       map[string]interface{}
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// CollectionCount is the number of live documents in one collection.
type CollectionCount struct {
	Name  string
	Count int64
}
