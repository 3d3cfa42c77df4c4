package specification

import (
	"fmt"

	"gorm.io/gorm"
)

type ByCollection struct {
	Collection string
}

func (s ByCollection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection = ?", s.Collection)
}

// ByMetadata matches a top-level metadata field. Values are compared as text,
// which is how jsonb ->> returns them.
type ByMetadata struct {
	Field string
	Value interface{}
}

func (s ByMetadata) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("metadata ->> ? = ?", s.Field, fmt.Sprint(s.Value))
}

// ByMetadataFilter ANDs one ByMetadata per pair.
type ByMetadataFilter struct {
	Filter map[string]interface{}
}

func (s ByMetadataFilter) Apply(db *gorm.DB) *gorm.DB {
	for field, value := range s.Filter {
		db = ByMetadata{Field: field, Value: value}.Apply(db)
	}
	return db
}
